package client

import (
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx HTTP response from the bot service.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// RejectedError is returned when the service answers 2xx with ok=false.
// Message is the server-provided reason and may be empty.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "rejected by service"
	}
	return "rejected by service: " + e.Message
}

// IsRejected returns true if err (or any wrapped error) is a RejectedError.
func IsRejected(err error) bool {
	var rej *RejectedError
	return errors.As(err, &rej)
}

// Message returns the operator-facing text for err: the server-provided
// reason for rejections, fallback for everything else.
func Message(err error, fallback string) string {
	var rej *RejectedError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	return fallback
}
