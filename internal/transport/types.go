// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"strings"

	"github.com/jeranaias/lowchat/internal/model"
)

// NoResponsePlaceholder is shown when the backend reply carries no text.
const NoResponsePlaceholder = "(no response)"

// ChatRequest is the JSON body posted to the chat endpoint.
type ChatRequest struct {
	Message     string   `json:"message"`
	Provider    string   `json:"provider"`
	SessionID   string   `json:"session_id,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// ChatResponse is the JSON body returned by the chat endpoint.
type ChatResponse struct {
	Response     string              `json:"response,omitempty"`
	Content      string              `json:"content,omitempty"`
	Role         string              `json:"role,omitempty"`
	Logs         []string            `json:"logs,omitempty"`
	InternalFlow *model.FlowSnapshot `json:"internal_flow,omitempty"`
	ProviderUsed string              `json:"provider_used,omitempty"`
	SessionID    string              `json:"session_id,omitempty"`
}

// Text returns the first non-empty of content and response, or the
// placeholder when neither is set.
func (r *ChatResponse) Text() string {
	if strings.TrimSpace(r.Content) != "" {
		return r.Content
	}
	if strings.TrimSpace(r.Response) != "" {
		return r.Response
	}
	return NoResponsePlaceholder
}

// Reply converts the response into the controller's reply type.
func (r *ChatResponse) Reply() model.Reply {
	return model.Reply{
		Content: r.Text(),
		Logs:    r.Logs,
		Flow:    r.InternalFlow,
	}
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	SessionsActive int    `json:"sessions_active"`
}

// Healthy reports whether the backend considers itself healthy.
func (h *HealthResponse) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy") || strings.EqualFold(h.Status, "ok")
}
