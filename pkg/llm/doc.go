/*
Package llm provides the HTTP client behind the synthesis pipeline's LLM
ports.

A single Client implements all three ports the core defines:

  - pipeline.Generator, for rule generation from a rendered prompt
  - validators.Completer, for LLM review validators
  - validators.Embedder, for semantic similarity scoring

The client speaks an OpenAI-compatible completions/embeddings API, retries
transient failures (5xx, network errors) with exponential backoff, and
returns typed errors for authentication failures, rate limits, and
malformed responses.
*/
package llm
