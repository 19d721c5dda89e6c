// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"slices"

	"github.com/jeranaias/lowchat/internal/model"
	"github.com/jeranaias/lowchat/internal/util"
)

// ResetPrompt is shown before a conversation is cleared.
const ResetPrompt = "Start a new conversation? The current history will be lost."

// State is the full conversation state. Values returned by Reduce never share
// backing arrays with their input, so a State can be kept as a snapshot.
type State struct {
	Messages []model.Message
	Input    string
	Provider model.Provider

	// Flow and Logs describe the latest completed exchange.
	Flow *model.FlowSnapshot
	Logs []string

	Status    model.ConnectionStatus
	Pending   bool
	SessionID string

	ShowFlow        bool
	ConfirmReset    bool
	AwaitingConfirm bool

	// RequestSeq identifies the latest request.
	RequestSeq uint64

	// discard drops the outcome of the pending request.
	discard bool
}

// Options seeds a new State.
type Options struct {
	Provider     model.Provider
	SessionID    string
	ConfirmReset bool
	ShowFlow     bool
}

// NewState returns the initial state: no messages, status online.
func NewState(opts Options) State {
	provider := opts.Provider
	if !provider.Valid() {
		provider = model.DefaultProvider
	}
	return State{
		Provider:     provider,
		SessionID:    opts.SessionID,
		Status:       model.StatusOnline,
		ShowFlow:     opts.ShowFlow,
		ConfirmReset: opts.ConfirmReset,
	}
}

// Discarding reports whether the pending request's outcome will be dropped.
func (s State) Discarding() bool {
	return s.Pending && s.discard
}

// LastAssistant returns the most recent assistant message.
func (s State) LastAssistant() (model.Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == model.RoleAssistant {
			return s.Messages[i], true
		}
	}
	return model.Message{}, false
}

// IsEmpty reports whether the conversation has no messages.
func (s State) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Reduce applies ev to s. It never performs I/O.
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case InputChanged:
		s.Input = ev.Text
		return s, nil

	case Submit:
		return submit(s, ev)

	case ReplyReceived:
		if !s.awaiting(ev.Seq) {
			return s, nil
		}
		var discarded bool
		s, discarded = s.settle(model.StatusOnline)
		if discarded {
			return s, nil
		}
		s.Messages = appendMessage(s.Messages, model.NewAssistantMessage(ev.Reply, ev.At))
		s.Flow = ev.Reply.Flow.Clone()
		s.Logs = slices.Clone(ev.Reply.Logs)
		return s, nil

	case RequestFailed:
		if !s.awaiting(ev.Seq) {
			return s, nil
		}
		var discarded bool
		s, discarded = s.settle(model.StatusError)
		if discarded {
			return s, nil
		}
		s.Messages = appendMessage(s.Messages, model.NewErrorMessage(ev.Err, ev.At))
		return s, nil

	case ProviderSelected:
		if ev.Provider == s.Provider || !ev.Provider.Valid() {
			return s, nil
		}
		s = s.cleared()
		s.Provider = ev.Provider
		return s, nil

	case ResetRequested:
		if s.AwaitingConfirm {
			return s, nil
		}
		if s.ConfirmReset {
			s.AwaitingConfirm = true
			return s, []Effect{ConfirmResetEffect{Prompt: ResetPrompt}}
		}
		return s.cleared(), []Effect{RotateSessionEffect{}}

	case ResetConfirmed:
		if !s.AwaitingConfirm {
			return s, nil
		}
		s.AwaitingConfirm = false
		if !ev.Confirmed {
			return s, nil
		}
		return s.cleared(), []Effect{RotateSessionEffect{}}

	case SessionRotated:
		if ev.ID != "" {
			s.SessionID = ev.ID
		}
		return s, nil

	case FlowToggled:
		s.ShowFlow = !s.ShowFlow
		return s, nil

	case ConfirmResetChanged:
		s.ConfirmReset = ev.Enabled
		if !ev.Enabled {
			s.AwaitingConfirm = false
		}
		return s, nil
	}

	return s, nil
}

func submit(s State, ev Submit) (State, []Effect) {
	text := util.NormalizeInput(ev.Text)
	if text == "" || s.Pending {
		return s, nil
	}

	s.Messages = appendMessage(s.Messages, model.NewUserMessage(text, ev.At))
	s.Input = ""
	s.Status = model.StatusConnecting
	s.Pending = true
	s.discard = false
	s.RequestSeq++

	return s, []Effect{SendEffect{
		Seq:       s.RequestSeq,
		Message:   text,
		Provider:  s.Provider,
		SessionID: s.SessionID,
	}}
}

// awaiting reports whether seq is the outstanding request.
func (s State) awaiting(seq uint64) bool {
	return s.Pending && seq == s.RequestSeq
}

// settle ends the pending request and reports whether its outcome must be
// dropped.
func (s State) settle(status model.ConnectionStatus) (State, bool) {
	discarded := s.discard
	s.Pending = false
	s.discard = false
	s.Status = status
	return s, discarded
}

// cleared empties the conversation. The session id and provider are kept.
func (s State) cleared() State {
	s.Messages = nil
	s.Input = ""
	s.Flow = nil
	s.Logs = nil
	if s.Pending {
		s.discard = true
	}
	return s
}

func appendMessage(msgs []model.Message, msg model.Message) []model.Message {
	return append(slices.Clip(msgs), msg)
}
