// Package http exposes the file metadata API over HTTP.
//
// # Routes
//
//	GET  /status                 health check, no authentication
//	GET  /token                  echoes the verified token subject
//	GET  /user-files             lists the caller's files
//	GET  /user-files/{id}/fetch  returns a signed download URL
//	POST /user-files             registers a file and returns a signed upload URL
//
// Every route except /status runs behind AuthInterceptor, which reads the
// bearer token from the Authorization header, verifies it with the configured
// TokenVerifier and stores the token subject in the request context. All
// records are scoped to that subject.
//
// # Interceptors
//
// Request pre-processing is expressed as an ordered list of Interceptor
// functions. Each returns the request to continue with, or an error that ends
// the request with the status HandleError maps it to:
//
//	r.Use(http.Intercept(
//	    http.AuthInterceptor(verifier),
//	))
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Verifier:     filetrail.NewTokenVerifier(oidcCfg, keySet, time.Minute),
//	    MaxBodyBytes: 1 << 20,
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":3000", handler.Router())
//
// # Errors
//
// Errors are written as JSON:
//
//	{"error": "not_found", "message": "File not found"}
//
// Clients should rely on the status code only.
package http
