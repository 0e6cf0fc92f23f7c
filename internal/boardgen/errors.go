package boardgen

import (
	"errors"
	"fmt"
)

// ExhaustionError indicates that no valid board set was found within the
// configured attempt budget. Attempts records how many full attempts were
// made before giving up.
type ExhaustionError struct {
	Attempts int
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("failed to generate valid boards after %d attempts", e.Attempts)
}

// IsExhausted checks if an error is an attempt-budget exhaustion error.
func IsExhausted(err error) bool {
	var ee *ExhaustionError
	return errors.As(err, &ee)
}
