package tools

import "fmt"

// Reply markers used when a Result is rendered as text.
const (
	successMarker = "✓"
	failureMarker = "✗"
)

// Result is the outcome of a tool call.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Success builds an OK result.
func Success(format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...)}
}

// Failure builds a failed result.
func Failure(format string, args ...any) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}

// Text renders the result with its success or failure marker.
func (r Result) Text() string {
	marker := successMarker
	if !r.OK {
		marker = failureMarker
	}
	return marker + " " + r.Message
}
