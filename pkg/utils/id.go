package utils

import "github.com/google/uuid"

// NewID returns a client-generated identifier that stays stable across the
// remote and local copies of a row.
func NewID() string { return uuid.NewString() }
