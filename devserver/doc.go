// Package devserver is a local stand-in for the axin AI backend.
//
// It serves the same /api routes the web client calls: a synchronous chat
// endpoint, the plan app's chat streams, the manus agent stream and a health
// report. Every stream ends with a named "close" event. Paths outside /api
// resolve through the router package, the way a single-page app host
// falls back to index.html.
//
// Replies come from a Responder. EchoResponder is used when none is given.
package devserver
