package framework

import (
	"errors"
	"fmt"
)

// MaxRawResponse caps how much of an unparseable model response is retained.
const MaxRawResponse = 500

// ErrWorkflowNotFound is returned when a workflow name is not registered.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ParseError reports a model response that could not be decoded. Raw holds at
// most MaxRawResponse characters of the offending text.
type ParseError struct {
	Message string
	Raw     string
	Err     error
}

// NewParseError builds a ParseError, truncating the raw response.
func NewParseError(message, raw string, err error) *ParseError {
	return &ParseError{Message: message, Raw: Truncate(raw, MaxRawResponse), Err: err}
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// DescriptorError flags a workflow registered with incomplete metadata.
type DescriptorError struct {
	Workflow string
	Field    string
}

func (e *DescriptorError) Error() string {
	if e.Workflow == "" {
		return fmt.Sprintf("workflow descriptor missing %s", e.Field)
	}
	return fmt.Sprintf("workflow %s: descriptor missing %s", e.Workflow, e.Field)
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
