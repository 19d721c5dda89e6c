// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"cancelled", &TransportError{Op: "request", Err: context.Canceled}, ""},
		{
			"refused",
			&RetriesExhaustedError{Attempts: 3, Last: &TransportError{Op: "request", Err: errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")}},
			"Is the backend running?",
		},
		{"timeout", &TransportError{Op: "request", Err: context.DeadlineExceeded}, "backend.timeout_secs"},
		{"not found", &ServerError{StatusCode: 404}, "backend.chat_path"},
		{"rate limited", fmt.Errorf("send: %w", &ServerError{StatusCode: 429}), "retry.requests_per_minute"},
		{"server failure", &ServerError{StatusCode: 503, Body: "overloaded"}, "Its own logs"},
		{"bad json", &TransportError{Op: "decode response", Err: errors.New("unexpected EOF")}, "other than JSON"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hint(tt.err)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}
