// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"time"

	"github.com/jeranaias/lowchat/internal/model"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// InputChanged replaces the input buffer.
type InputChanged struct {
	Text string
}

// Submit sends Text as a new user message.
type Submit struct {
	Text string
	At   time.Time
}

// ReplyReceived delivers the reply for request Seq.
type ReplyReceived struct {
	Seq   uint64
	Reply model.Reply
	At    time.Time
}

// RequestFailed reports that request Seq failed after all attempts.
type RequestFailed struct {
	Seq uint64
	Err error
	At  time.Time
}

// ProviderSelected switches the backend provider.
type ProviderSelected struct {
	Provider model.Provider
}

// ResetRequested starts a new conversation, asking first when confirmation
// is enabled.
type ResetRequested struct{}

// ResetConfirmed answers a pending reset confirmation.
type ResetConfirmed struct {
	Confirmed bool
}

// SessionRotated installs a new session id.
type SessionRotated struct {
	ID string
}

// FlowToggled shows or hides the internal flow panel.
type FlowToggled struct{}

// ConfirmResetChanged turns reset confirmation on or off.
type ConfirmResetChanged struct {
	Enabled bool
}

func (InputChanged) isEvent()        {}
func (Submit) isEvent()              {}
func (ReplyReceived) isEvent()       {}
func (RequestFailed) isEvent()       {}
func (ProviderSelected) isEvent()    {}
func (ResetRequested) isEvent()      {}
func (ResetConfirmed) isEvent()      {}
func (SessionRotated) isEvent()      {}
func (FlowToggled) isEvent()         {}
func (ConfirmResetChanged) isEvent() {}

// =============================================================================
// EFFECTS
// =============================================================================

// Effect is a side effect requested by Reduce.
type Effect interface {
	isEffect()
}

// SendEffect asks the caller to send Message and report the outcome with
// ReplyReceived or RequestFailed carrying Seq.
type SendEffect struct {
	Seq       uint64
	Message   string
	Provider  model.Provider
	SessionID string
}

// ConfirmResetEffect asks the caller to show Prompt and answer with
// ResetConfirmed.
type ConfirmResetEffect struct {
	Prompt string
}

// RotateSessionEffect asks the caller to generate a new session id and
// report it with SessionRotated.
type RotateSessionEffect struct{}

func (SendEffect) isEffect()          {}
func (ConfirmResetEffect) isEffect()  {}
func (RotateSessionEffect) isEffect() {}
