package replies

import (
	"errors"
	"fmt"
)

// GenerationError reports an upstream text-generation failure. Status
// carries the upstream HTTP status when one was observed, 0 otherwise.
type GenerationError struct {
	Status int
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("reply generation failed: status=%d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("reply generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
