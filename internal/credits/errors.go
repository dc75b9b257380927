package credits

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrPlanRestricted      = errors.New("action not available on the current plan")
)

// InsufficientCreditsError reports a failed availability check before any
// work has been done.
type InsufficientCreditsError struct {
	Available int
	Required  int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("Insufficient credits. You have %d credits available. This action requires %d credits.", e.Available, e.Required)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

func (e *InsufficientCreditsError) Shortfall() int {
	return max(0, e.Required-e.Available)
}
