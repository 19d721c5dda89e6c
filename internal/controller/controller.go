// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/lowchat/internal/model"
)

// Sender performs one chat exchange, including retries.
type Sender interface {
	SendChat(ctx context.Context, message string, provider model.Provider, sessionID string) (model.Reply, error)
}

// Confirmer answers a yes/no question from the user.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// SessionRotator produces a new session id.
type SessionRotator interface {
	Rotate() (string, error)
}

// alwaysConfirm is used when no Confirmer is configured.
var alwaysConfirm = ConfirmFunc(func(string) bool { return true })

// Controller runs Reduce for synchronous callers and performs its effects.
// It is safe for concurrent use; the lock is never held while a request is
// in flight.
type Controller struct {
	sender  Sender
	confirm Confirmer
	rotator SessionRotator
	now     func() time.Time

	mu    sync.Mutex
	state State
}

// Option customizes a Controller.
type Option func(*Controller)

// WithConfirmer sets how reset confirmations are answered.
func WithConfirmer(c Confirmer) Option {
	return func(ctrl *Controller) {
		ctrl.confirm = c
	}
}

// WithSessionRotator sets where new session ids come from.
func WithSessionRotator(r SessionRotator) Option {
	return func(ctrl *Controller) {
		ctrl.rotator = r
	}
}

// WithClock replaces the time source used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(ctrl *Controller) {
		ctrl.now = now
	}
}

// New creates a controller starting from initial.
func New(initial State, sender Sender, opts ...Option) *Controller {
	c := &Controller{
		sender:  sender,
		confirm: alwaysConfirm,
		now:     time.Now,
		state:   initial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies ev and returns the requested effects without performing
// them.
func (c *Controller) Dispatch(ev Event) []Effect {
	c.mu.Lock()
	defer c.mu.Unlock()

	var effects []Effect
	c.state, effects = Reduce(c.state, ev)
	return effects
}

// SetInput replaces the input buffer.
func (c *Controller) SetInput(text string) {
	c.Dispatch(InputChanged{Text: text})
}

// Submit sends text and waits for the outcome. sent is false when the
// submission was skipped because text was blank or a request was pending.
// On success msg is the appended assistant message; on failure it is the
// appended error message and err is the transport error. If the
// conversation was reset while waiting, msg is empty.
func (c *Controller) Submit(ctx context.Context, text string) (msg model.Message, sent bool, err error) {
	var send *SendEffect
	for _, eff := range c.Dispatch(Submit{Text: text, At: c.now()}) {
		if e, ok := eff.(SendEffect); ok {
			send = &e
		}
	}
	if send == nil {
		return model.Message{}, false, nil
	}

	log.Debug().
		Uint64("seq", send.Seq).
		Str("provider", send.Provider.String()).
		Str("session_id", send.SessionID).
		Msg("sending message")

	reply, err := c.sender.SendChat(ctx, send.Message, send.Provider, send.SessionID)

	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.state.Messages)
	if err != nil {
		c.state, _ = Reduce(c.state, RequestFailed{Seq: send.Seq, Err: err, At: c.now()})
	} else {
		c.state, _ = Reduce(c.state, ReplyReceived{Seq: send.Seq, Reply: reply, At: c.now()})
	}
	if len(c.state.Messages) > before {
		msg = c.state.Messages[len(c.state.Messages)-1]
	}
	return msg, true, err
}

// SelectProvider switches provider. A change clears the conversation.
func (c *Controller) SelectProvider(p model.Provider) {
	c.Dispatch(ProviderSelected{Provider: p})
}

// ToggleFlow flips flow panel visibility and returns the new value.
func (c *Controller) ToggleFlow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state, _ = Reduce(c.state, FlowToggled{})
	return c.state.ShowFlow
}

// Reset starts a new conversation. It returns false when the user declined.
func (c *Controller) Reset() (bool, error) {
	return c.run(c.Dispatch(ResetRequested{}))
}

// run performs effects until none remain. Send effects are not expected
// here and are ignored.
func (c *Controller) run(effects []Effect) (bool, error) {
	done := false
	for len(effects) > 0 {
		eff := effects[0]
		effects = effects[1:]

		switch e := eff.(type) {
		case ConfirmResetEffect:
			effects = append(effects, c.Dispatch(ResetConfirmed{Confirmed: c.confirm.Confirm(e.Prompt)})...)
		case RotateSessionEffect:
			done = true
			if c.rotator == nil {
				continue
			}
			id, err := c.rotator.Rotate()
			c.Dispatch(SessionRotated{ID: id})
			if err != nil {
				return true, fmt.Errorf("failed to rotate session: %w", err)
			}
		default:
			log.Warn().Str("effect", fmt.Sprintf("%T", eff)).Msg("unexpected effect ignored")
		}
	}
	return done, nil
}
