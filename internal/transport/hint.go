// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// hintPattern maps failure keywords to a suggestion. The first match wins,
// so specific patterns come before general ones.
type hintPattern struct {
	keywords []string
	hint     string
}

var hintPatterns = []hintPattern{
	{
		keywords: []string{"connection refused", "no such host", "dial tcp"},
		hint:     "Is the backend running? Check backend.url or pass --url.",
	},
	{
		keywords: []string{"deadline exceeded", "timeout", "timed out"},
		hint:     "The backend is slow to answer. Raise backend.timeout_secs or try again.",
	},
	{
		keywords: []string{"decode response", "invalid character"},
		hint:     "The backend answered with something other than JSON. Check backend.chat_path.",
	},
}

// Hint returns a one-line suggestion for a failed exchange, or "" when there
// is nothing useful to add.
func Hint(err error) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		switch code := serverErr.StatusCode; {
		case code == http.StatusNotFound || code == http.StatusMethodNotAllowed:
			return "The backend has no chat endpoint there. Check backend.chat_path."
		case code == http.StatusTooManyRequests:
			return "The backend is rate limiting. Set retry.requests_per_minute to pace requests."
		case code == http.StatusUnprocessableEntity || code == http.StatusBadRequest:
			return "The backend rejected the request. Check the provider and temperature settings."
		case code >= 500:
			return "The backend failed while answering. Its own logs have the details."
		}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range hintPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(msg, kw) {
				return p.hint
			}
		}
	}
	return ""
}
