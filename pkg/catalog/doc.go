// Package catalog manages the prompt template catalog used by governance
// synthesis. Templates are loaded from YAML files at startup, validated,
// and optionally hot-reloaded when the catalog file changes on disk.
//
// The catalog owns template content and rendering; it does not decide which
// template to use for a request. Selection is the job of pkg/selection.
package catalog
