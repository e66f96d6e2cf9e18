// ABOUTME: Caller-visible domain errors returned by method and tool handlers
// ABOUTME: Anything that is not a DomainError is reported as an internal error

package mcp

import (
	"errors"
)

// ErrorKind classifies a domain error for logging and metrics.
type ErrorKind string

const (
	KindBadRequest    ErrorKind = "bad_request"
	KindNotFound      ErrorKind = "not_found"
	KindUnknownMethod ErrorKind = "unknown_method"
	KindUnknownTool   ErrorKind = "unknown_tool"
)

// DomainError is a failure whose message is safe to return to the caller.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// BadRequest reports missing or malformed parameters.
func BadRequest(msg string) error {
	return &DomainError{Kind: KindBadRequest, Message: msg}
}

// NotFound reports a missing entity.
func NotFound(msg string) error {
	return &DomainError{Kind: KindNotFound, Message: msg}
}

// UnknownMethod reports a method with no registered handler.
func UnknownMethod(method string) error {
	return &DomainError{Kind: KindUnknownMethod, Message: "Unknown method: " + method}
}

// UnknownTool reports a tool with no registered handler.
func UnknownTool(name string) error {
	return &DomainError{Kind: KindUnknownTool, Message: "Unknown tool: " + name}
}

// AsDomainError extracts a DomainError from err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
