// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry of the conversation. Messages are never mutated
// after they are appended to a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Tool-call log lines reported by the backend (assistant messages only)
	Logs []string `json:"logs,omitempty"`

	// IsStreaming marks the placeholder shown while a reply is pending.
	// Never persisted.
	IsStreaming bool `json:"-"`
}

// NewUserMessage creates a user message stamped with at.
func NewUserMessage(content string, at time.Time) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: at}
}

// NewAssistantMessage creates an assistant message from a backend reply.
func NewAssistantMessage(reply Reply, at time.Time) Message {
	var logs []string
	if len(reply.Logs) > 0 {
		logs = append([]string(nil), reply.Logs...)
	}
	return Message{
		Role:      RoleAssistant,
		Content:   reply.Content,
		Logs:      logs,
		Timestamp: at,
	}
}

// NewErrorMessage creates an error message describing err.
func NewErrorMessage(err error, at time.Time) Message {
	text := "could not reach the server"
	if err != nil && err.Error() != "" {
		text = err.Error()
	}
	return Message{Role: RoleError, Content: "Error: " + text, Timestamp: at}
}

// NewPendingMessage creates the assistant placeholder shown while a reply is
// on its way. It is never appended to a conversation.
func NewPendingMessage() Message {
	return Message{Role: RoleAssistant, IsStreaming: true}
}

// HasLogs reports whether the message carries tool-call logs.
func (m Message) HasLogs() bool {
	return len(m.Logs) > 0
}

// ClockTime formats the timestamp as HH:MM for display.
func (m Message) ClockTime() string {
	if m.Timestamp.IsZero() {
		return ""
	}
	return m.Timestamp.Format("15:04")
}
