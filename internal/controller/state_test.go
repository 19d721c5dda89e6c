// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lowchat/internal/model"
)

var testTime = time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)

func newTestState() State {
	return NewState(Options{Provider: model.ProviderOpenAI, SessionID: "sess_abcd1234"})
}

// submitted returns a state with one pending request for text.
func submitted(t *testing.T, s State, text string) (State, SendEffect) {
	t.Helper()
	s, effects := Reduce(s, Submit{Text: text, At: testTime})
	require.Len(t, effects, 1)
	send, ok := effects[0].(SendEffect)
	require.True(t, ok)
	return s, send
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestNewState(t *testing.T) {
	s := newTestState()
	assert.Equal(t, model.StatusOnline, s.Status)
	assert.True(t, s.IsEmpty())
	assert.False(t, s.Pending)

	s = NewState(Options{Provider: "bogus"})
	assert.Equal(t, model.DefaultProvider, s.Provider)
}

func TestReduce_SubmitAppendsUserMessage(t *testing.T) {
	s := newTestState()
	s, _ = Reduce(s, InputChanged{Text: "  What's the weather?  "})

	s, send := submitted(t, s, s.Input)

	require.Len(t, s.Messages, 1)
	assert.Equal(t, model.RoleUser, s.Messages[0].Role)
	assert.Equal(t, "What's the weather?", s.Messages[0].Content)
	assert.Equal(t, testTime, s.Messages[0].Timestamp)
	assert.Empty(t, s.Input)
	assert.Equal(t, model.StatusConnecting, s.Status)
	assert.True(t, s.Pending)

	assert.Equal(t, SendEffect{
		Seq:       1,
		Message:   "What's the weather?",
		Provider:  model.ProviderOpenAI,
		SessionID: "sess_abcd1234",
	}, send)
}

func TestReduce_SubmitSkipped(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"newlines and tabs", "\n\t \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState()
			next, effects := Reduce(s, Submit{Text: tt.text, At: testTime})
			assert.Nil(t, effects)
			assert.Equal(t, s, next)
		})
	}
}

func TestReduce_SubmitWhilePendingIsNoop(t *testing.T) {
	s, _ := submitted(t, newTestState(), "first")

	next, effects := Reduce(s, Submit{Text: "second", At: testTime})
	assert.Nil(t, effects)
	assert.Len(t, next.Messages, 1)
	assert.Equal(t, uint64(1), next.RequestSeq)
}

// =============================================================================
// OUTCOME TESTS
// =============================================================================

func TestReduce_ReplyReceived(t *testing.T) {
	s, send := submitted(t, newTestState(), "Weather in Madrid?")

	flow := &model.FlowSnapshot{ToolLogs: []string{"get_weather"}}
	s, effects := Reduce(s, ReplyReceived{
		Seq:   send.Seq,
		Reply: model.Reply{Content: "Sunny", Logs: []string{"get_weather"}, Flow: flow},
		At:    testTime,
	})
	assert.Nil(t, effects)

	require.Len(t, s.Messages, 2)
	assert.Equal(t, model.RoleAssistant, s.Messages[1].Role)
	assert.Equal(t, "Sunny", s.Messages[1].Content)
	assert.Equal(t, []string{"get_weather"}, s.Messages[1].Logs)
	assert.Equal(t, []string{"get_weather"}, s.Logs)
	assert.Equal(t, model.StatusOnline, s.Status)
	assert.False(t, s.Pending)
	require.NotNil(t, s.Flow)
	assert.Equal(t, 1, s.Flow.ToolCount())

	// the stored snapshot is a copy
	flow.ToolLogs[0] = "mutated"
	assert.Equal(t, "get_weather", s.Flow.ToolLogs[0])
}

func TestReduce_RequestFailed(t *testing.T) {
	s, send := submitted(t, newTestState(), "hello")

	s, _ = Reduce(s, RequestFailed{Seq: send.Seq, Err: errors.New("server error: HTTP 500"), At: testTime})

	require.Len(t, s.Messages, 2)
	assert.Equal(t, model.RoleError, s.Messages[1].Role)
	assert.Equal(t, "Error: server error: HTTP 500", s.Messages[1].Content)
	assert.Equal(t, model.StatusError, s.Status)
	assert.False(t, s.Pending)
	assert.Nil(t, s.Flow)
}

func TestReduce_FailureKeepsPreviousFlow(t *testing.T) {
	s, send := submitted(t, newTestState(), "one")
	s, _ = Reduce(s, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "1", Flow: &model.FlowSnapshot{}}, At: testTime})
	require.NotNil(t, s.Flow)

	s, send = submitted(t, s, "two")
	s, _ = Reduce(s, RequestFailed{Seq: send.Seq, Err: errors.New("boom"), At: testTime})
	assert.NotNil(t, s.Flow)
	assert.Len(t, s.Messages, 4)
}

func TestReduce_StaleOutcomeIgnored(t *testing.T) {
	s, send := submitted(t, newTestState(), "hello")

	next, _ := Reduce(s, ReplyReceived{Seq: send.Seq + 7, Reply: model.Reply{Content: "late"}, At: testTime})
	assert.Equal(t, s, next)

	// outcome with nothing pending
	s, _ = Reduce(s, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "ok"}, At: testTime})
	next, _ = Reduce(s, RequestFailed{Seq: send.Seq, Err: errors.New("dup"), At: testTime})
	assert.Equal(t, s, next)
}

func TestReduce_StatesDoNotShareMessages(t *testing.T) {
	base, send := submitted(t, newTestState(), "hello")
	a, _ := Reduce(base, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "a"}, At: testTime})
	b, _ := Reduce(base, RequestFailed{Seq: send.Seq, Err: errors.New("b"), At: testTime})

	assert.Equal(t, "a", a.Messages[1].Content)
	assert.Equal(t, "Error: b", b.Messages[1].Content)
	assert.Len(t, base.Messages, 1)
}

// =============================================================================
// PROVIDER TESTS
// =============================================================================

func TestReduce_ProviderSwitchClearsConversation(t *testing.T) {
	s, send := submitted(t, newTestState(), "hello")
	s, _ = Reduce(s, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "hi", Logs: []string{"x"}, Flow: &model.FlowSnapshot{}}, At: testTime})
	s, _ = Reduce(s, InputChanged{Text: "draft"})

	s, effects := Reduce(s, ProviderSelected{Provider: model.ProviderOllama})
	assert.Nil(t, effects)
	assert.Equal(t, model.ProviderOllama, s.Provider)
	assert.Empty(t, s.Messages)
	assert.Nil(t, s.Flow)
	assert.Nil(t, s.Logs)
	assert.Empty(t, s.Input)
	assert.Equal(t, "sess_abcd1234", s.SessionID)
}

func TestReduce_SameProviderIsNoop(t *testing.T) {
	s, _ := submitted(t, newTestState(), "hello")
	next, _ := Reduce(s, ProviderSelected{Provider: model.ProviderOpenAI})
	assert.Equal(t, s, next)

	next, _ = Reduce(s, ProviderSelected{Provider: "bogus"})
	assert.Equal(t, s, next)
}

func TestReduce_ProviderSwitchWhilePendingDiscardsOutcome(t *testing.T) {
	s, send := submitted(t, newTestState(), "hello")
	s, _ = Reduce(s, ProviderSelected{Provider: model.ProviderHuggingFace})
	assert.True(t, s.Discarding())

	s, _ = Reduce(s, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "late"}, At: testTime})
	assert.Empty(t, s.Messages)
	assert.Nil(t, s.Flow)
	assert.False(t, s.Pending)
	assert.Equal(t, model.StatusOnline, s.Status)

	// the next request is not discarded
	s, send = submitted(t, s, "again")
	s, _ = Reduce(s, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "fresh"}, At: testTime})
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "fresh", s.Messages[1].Content)
}

// =============================================================================
// RESET TESTS
// =============================================================================

func TestReduce_ResetWithoutConfirmation(t *testing.T) {
	s, send := submitted(t, newTestState(), "hello")
	s, _ = Reduce(s, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "hi"}, At: testTime})

	s, effects := Reduce(s, ResetRequested{})
	assert.Equal(t, []Effect{RotateSessionEffect{}}, effects)
	assert.Empty(t, s.Messages)

	s, _ = Reduce(s, SessionRotated{ID: "sess_99999999"})
	assert.Equal(t, "sess_99999999", s.SessionID)
}

func TestReduce_ResetWithConfirmation(t *testing.T) {
	s := NewState(Options{Provider: model.ProviderOpenAI, SessionID: "sess_1", ConfirmReset: true})
	s, send := submitted(t, s, "hello")
	s, _ = Reduce(s, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "hi"}, At: testTime})

	s, effects := Reduce(s, ResetRequested{})
	assert.Equal(t, []Effect{ConfirmResetEffect{Prompt: ResetPrompt}}, effects)
	assert.True(t, s.AwaitingConfirm)
	assert.Len(t, s.Messages, 2)

	// a second request while asking is ignored
	_, effects = Reduce(s, ResetRequested{})
	assert.Nil(t, effects)

	declined, effects := Reduce(s, ResetConfirmed{Confirmed: false})
	assert.Nil(t, effects)
	assert.False(t, declined.AwaitingConfirm)
	assert.Len(t, declined.Messages, 2)

	accepted, effects := Reduce(s, ResetConfirmed{Confirmed: true})
	assert.Equal(t, []Effect{RotateSessionEffect{}}, effects)
	assert.Empty(t, accepted.Messages)
}

func TestReduce_ResetWhilePendingDiscardsOutcome(t *testing.T) {
	s, send := submitted(t, newTestState(), "hello")
	s, _ = Reduce(s, ResetRequested{})

	s, _ = Reduce(s, RequestFailed{Seq: send.Seq, Err: errors.New("boom"), At: testTime})
	assert.Empty(t, s.Messages)
	assert.Equal(t, model.StatusError, s.Status)
	assert.False(t, s.Pending)
}

func TestReduce_ConfirmResetChanged(t *testing.T) {
	s := NewState(Options{ConfirmReset: true})
	s, _ = Reduce(s, ResetRequested{})
	require.True(t, s.AwaitingConfirm)

	s, _ = Reduce(s, ConfirmResetChanged{Enabled: false})
	assert.False(t, s.ConfirmReset)
	assert.False(t, s.AwaitingConfirm)
}

// =============================================================================
// MISC TESTS
// =============================================================================

func TestReduce_FlowToggled(t *testing.T) {
	s := newTestState()
	s, _ = Reduce(s, FlowToggled{})
	assert.True(t, s.ShowFlow)
	s, _ = Reduce(s, FlowToggled{})
	assert.False(t, s.ShowFlow)
}

func TestState_LastAssistant(t *testing.T) {
	s, send := submitted(t, newTestState(), "q")
	_, ok := s.LastAssistant()
	assert.False(t, ok)

	s, _ = Reduce(s, ReplyReceived{Seq: send.Seq, Reply: model.Reply{Content: "a"}, At: testTime})
	msg, ok := s.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "a", msg.Content)
}
