package tagger

import (
	"errors"
	"fmt"
)

// ErrTaggerClosed is returned by Pos after Close.
var ErrTaggerClosed = errors.New("tagger is closed")

// HelperError is a failure reported by, or observed from, the komoran helper.
type HelperError struct {
	Message string
	Exited  bool
}

func (e *HelperError) Error() string {
	if e.Exited {
		return fmt.Sprintf("komoran helper exited: %s", e.Message)
	}
	return fmt.Sprintf("komoran: %s", e.Message)
}

// HTTPError is a non-2xx answer from a remote tagging service.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
