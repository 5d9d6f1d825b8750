// Package recorder builds synthesis evidence records and writes them to
// storage asynchronously. Principle and rule text is hashed and truncated
// before persistence.
package recorder
