package contracts

import "errors"

// Common errors for domain contracts
var (
	// ErrNotFound occurs when a referenced entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict occurs when a write violates a uniqueness constraint, such
	// as materializing the same rule+date instance twice.
	ErrConflict = errors.New("entity already exists")
)
