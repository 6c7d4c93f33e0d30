package utils

import "github.com/google/uuid"

// NewID returns a process-unique session identifier. Identifiers are
// never reused for the lifetime of the process.
func NewID() string {
	return uuid.NewString()
}
