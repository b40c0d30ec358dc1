package llm

import (
	"errors"
	"fmt"
)

// Configuration errors. Any of these means no request can succeed, so callers
// stop the whole run instead of failing per document.
var (
	ErrMissingCredential = errors.New("missing API key")
	ErrMissingEndpoint   = errors.New("missing base URL")
	ErrMissingModel      = errors.New("missing model")
)

// ErrTimeout is returned when the request deadline passes before a response.
var ErrTimeout = errors.New("request timed out")

// ErrInvalidResponseShape is returned for a 2xx answer without completion text.
var ErrInvalidResponseShape = errors.New("invalid response: missing choices[0].message.content")

// maxErrorBody bounds the response body kept in a StatusError.
const maxErrorBody = 500

// StatusError is a non-2xx HTTP answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Body)
}

// IsConfigError reports whether err stems from missing client configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrMissingEndpoint) || errors.Is(err, ErrMissingModel)
}
