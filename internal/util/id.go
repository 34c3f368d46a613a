package util

import "github.com/google/uuid"

// NewID returns a random identifier for entities and request ids.
func NewID() string {
	return uuid.NewString()
}
