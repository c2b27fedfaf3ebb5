package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Interceptor inspects a request before it reaches its handler. It returns
// the request to continue with, usually carrying extra context values, or an
// error that ends the request.
type Interceptor func(r *http.Request) (*http.Request, error)

// Intercept runs interceptors in order and calls the next handler only if
// all of them succeed. The first error is written with HandleError.
func Intercept(interceptors ...Interceptor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, intercept := range interceptors {
				var err error
				r, err = intercept(r)
				if err != nil {
					HandleError(w, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthInterceptor verifies the bearer token of the request and stores its
// subject in the request context. A nil verifier fails every request with
// an internal error.
func AuthInterceptor(verifier TokenVerifier) Interceptor {
	return func(r *http.Request) (*http.Request, error) {
		if verifier == nil {
			return nil, fmt.Errorf("auth: %w", errNoVerifier)
		}

		token, err := BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}

		subject, err := verifier.Verify(r.Context(), token)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}

		return r.WithContext(WithSubject(r.Context(), subject)), nil
	}
}

// BearerToken extracts the credential from an Authorization header value.
// The credential is the second space separated field; the scheme in the
// first field is not checked.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredentials
	}

	fields := strings.Split(header, " ")
	if len(fields) < 2 || fields[1] == "" {
		return "", ErrMissingCredentials
	}

	return fields[1], nil
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
