// Package metrics exposes Prometheus metrics for template selection and
// consensus validation.
package metrics
