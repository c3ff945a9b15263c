// Package errors provides the structured application error used across axin:
// a machine-readable code, an HTTP status mapping, retryable detection and a
// JSON body shape for HTTP responses.
package errors
