package utils

import "github.com/google/uuid"

// GenerateSessionToken returns an opaque, unguessable session token.
func GenerateSessionToken() string {
	return uuid.NewString()
}
