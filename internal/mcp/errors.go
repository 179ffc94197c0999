// Package mcp implements the Model Context Protocol (MCP) server for patchbay.
package mcp

import (
	"context"
	"errors"
	"fmt"

	bayerrors "github.com/patchbaylabs/patchbay/internal/errors"
)

// Custom MCP error codes for patchbay.
const (
	// ErrCodeCredential indicates a connector credential is missing or rejected.
	ErrCodeCredential = -32001

	// ErrCodeUpstream indicates an upstream service API call failed.
	ErrCodeUpstream = -32002

	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
// BayErrors map by category so hosts can distinguish caller mistakes
// (invalid params) from credential problems and upstream outages.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var me *MCPError
	if errors.As(err, &me) {
		return me
	}

	var be *bayerrors.BayError
	if errors.As(err, &be) {
		return mapBayError(be)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewMethodNotFoundError creates an error for unknown methods/tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

// NewResourceNotFoundError creates an error for unknown resources.
func NewResourceNotFoundError(uri string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Resource '%s' not found.", uri),
	}
}

// mapBayError converts a BayError to an MCPError.
func mapBayError(be *bayerrors.BayError) *MCPError {
	// Build message with suggestion if available
	message := be.Message
	if be.Suggestion != "" {
		message = fmt.Sprintf("%s %s", be.Message, be.Suggestion)
	}

	switch be.Category {
	case bayerrors.CategoryCredential:
		return &MCPError{
			Code:    ErrCodeCredential,
			Message: message,
		}
	case bayerrors.CategoryUpstream:
		return &MCPError{
			Code:    ErrCodeUpstream,
			Message: message,
		}
	case bayerrors.CategoryValidation:
		switch be.Code {
		case bayerrors.ErrCodeUnknownConnector, bayerrors.ErrCodeUnknownResource:
			return &MCPError{
				Code:    ErrCodeMethodNotFound,
				Message: message,
			}
		default:
			return &MCPError{
				Code:    ErrCodeInvalidParams,
				Message: message,
			}
		}
	case bayerrors.CategoryConfig:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: message,
		}
	default: // CategoryInternal and unknown
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: message,
		}
	}
}
