package conservation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrExceedsAvailable = errors.New("exceeds_available")
	ErrSourceNotFound   = errors.New("source_not_found")
	ErrInvalidOwner     = errors.New("invalid_owner")
	ErrInvalidSource    = errors.New("invalid_source")
)

// ExceedsAvailableError carries the amounts behind a rejected consumption.
type ExceedsAvailableError struct {
	Source    SourceKind
	Requested float64
	Available float64
}

func (e *ExceedsAvailableError) Error() string {
	return fmt.Sprintf("requested %s kg exceeds available %s kg of %s",
		FormatQuantity(e.Requested), FormatQuantity(e.Available), e.Source)
}

func (e *ExceedsAvailableError) Is(target error) bool {
	return target == ErrExceedsAvailable
}
