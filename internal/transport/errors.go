// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNetworkFailure is matched by every error the transport returns for a
// failed exchange.
var ErrNetworkFailure = errors.New("network failure")

// maxErrorBodyLen bounds how much of an error body is kept for display.
const maxErrorBodyLen = 200

// ServerError is returned when the backend answers with a non-2xx status.
type ServerError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("server error: HTTP %d", e.StatusCode)
	}
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen] + "..."
	}
	return fmt.Sprintf("server error: HTTP %d: %s", e.StatusCode, body)
}

// Is reports ErrNetworkFailure as a match.
func (e *ServerError) Is(target error) bool {
	return target == ErrNetworkFailure
}

// TransportError is returned when the request could not be completed or the
// response could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrNetworkFailure as a match.
func (e *TransportError) Is(target error) bool {
	return target == ErrNetworkFailure
}

// RetriesExhaustedError is returned when every attempt failed. Its message
// surfaces the last failure.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

// Error implements the error interface.
func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("max retries exceeded after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap returns the last failure.
func (e *RetriesExhaustedError) Unwrap() error {
	return e.Last
}

// Is reports ErrNetworkFailure as a match.
func (e *RetriesExhaustedError) Is(target error) bool {
	return target == ErrNetworkFailure
}
