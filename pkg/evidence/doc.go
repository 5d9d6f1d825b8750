// Package evidence defines the audit trail for governance synthesis.
// Every synthesis request produces one SynthesisRecord capturing which
// template was selected, how every validator scored the generated rule,
// the consensus verdict, and the reward fed back into the selector.
//
// Records are written asynchronously by the recorder subpackage, persisted
// by a storage backend, and pruned on a schedule by the retention
// subpackage. Principle and rule text is stored as SHA-256 hashes plus
// short excerpts; the audit trail never holds full prompt content.
package evidence
