package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetNotFound is returned when an operation targets a symbol that
	// is not currently held.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrAssetAlreadyHeld is returned when AddAsset is called for a symbol
	// that is already in the portfolio. Quantities are changed through
	// UpdateQuantity, never by re-adding.
	ErrAssetAlreadyHeld = errors.New("asset already held")
)

// ValidationError reports a rejected input together with the field that
// caused the rejection, so the transport layer can render field-level
// messages.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
