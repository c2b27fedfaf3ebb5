package http

import (
	"errors"
	"fmt"

	"github.com/sagarc03/filetrail"
)

var (
	// ErrMissingCredentials is returned when a request has no usable
	// Authorization header.
	ErrMissingCredentials = fmt.Errorf("missing bearer token: %w", filetrail.ErrUnauthorized)

	errNoVerifier = errors.New("no token verifier configured")
)
