// Package httputil provides HTTP handler utilities for consistent error handling,
// JSON encoding/decoding, and request parsing.
//
// # Responses
//
//	httputil.WriteJSON(w, http.StatusOK, CheckResponse{Granted: &granted})
//	httputil.WriteBadRequest(w, "mode must be AND, OR or BULK")
//	httputil.WriteInternalError(w, err)
//
// Every error body has the shape {"error": "..."}.
//
// # Requests
//
//	var req CheckRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // 400 already written
//	}
//
// # Middleware
//
//	api.Use(httputil.Chain(
//		httputil.MaxBytesMiddleware(httputil.DefaultMaxBodyBytes),
//		httputil.ContentTypeMiddleware,
//	))
package httputil
