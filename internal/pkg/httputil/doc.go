// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Handlers use these helpers instead of writing raw http.ResponseWriter
// calls, keeping JSON formatting and error envelopes consistent across
// the import endpoints.
package httputil
