package keybackend

import "errors"

// ErrKeyNotFound is returned when no verification key matches the key id.
var ErrKeyNotFound = errors.New("verification key not found")
