// Package router maps URL paths to the pages of the axin web client and
// tracks history-based navigation between them.
package router
