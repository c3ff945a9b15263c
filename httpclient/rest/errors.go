package rest

import "github.com/kbukum/axin/httpclient"

// Error helpers re-exported so callers need not import httpclient.

// IsNotFound checks if the error is a 404 Not Found.
func IsNotFound(err error) bool { return httpclient.IsNotFound(err) }

// IsServerError checks if the error is a 5xx server error.
func IsServerError(err error) bool { return httpclient.IsServerError(err) }

// IsTimeout checks if the error is a timeout.
func IsTimeout(err error) bool { return httpclient.IsTimeout(err) }

// IsConnection checks if the backend could not be reached.
func IsConnection(err error) bool { return httpclient.IsConnection(err) }
