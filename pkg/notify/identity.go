package notify

import "github.com/google/uuid"

// NewID allocates a globally unique notification identifier. UUIDv4 gives
// negligible collision probability under concurrent distributed callers
// without a central sequence authority.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether s is a well-formed notification identifier.
func ValidID(s string) bool {
	return uuid.Validate(s) == nil
}
