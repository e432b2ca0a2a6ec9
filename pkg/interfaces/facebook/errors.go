package facebook

import (
	"errors"
	"fmt"
)

// APIError reports a non-success Graph API response. Op distinguishes
// the failed operation ("post_reply", "list_comments", "list_posts").
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("facebook api error: op=%s status=%d body=%s", e.Op, e.Status, e.Body)
}

// IsAPIError reports whether err is (or wraps) an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
