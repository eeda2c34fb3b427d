// Package observability provides structured logging, Prometheus metrics, and
// request-scoped context helpers for the literature aggregation service.
package observability
