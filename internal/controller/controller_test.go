// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lowchat/internal/model"
	"github.com/jeranaias/lowchat/internal/transport"
)

// =============================================================================
// FAKES
// =============================================================================

// blockingSender waits on release before answering.
type blockingSender struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
	reply   model.Reply
}

func newBlockingSender(reply model.Reply) *blockingSender {
	return &blockingSender{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		reply:   reply,
	}
}

func (b *blockingSender) SendChat(ctx context.Context, message string, provider model.Provider, sessionID string) (model.Reply, error) {
	b.calls.Add(1)
	b.started <- struct{}{}
	<-b.release
	return b.reply, nil
}

type funcSender func(ctx context.Context, message string, provider model.Provider, sessionID string) (model.Reply, error)

func (f funcSender) SendChat(ctx context.Context, message string, provider model.Provider, sessionID string) (model.Reply, error) {
	return f(ctx, message, provider, sessionID)
}

type fakeRotator struct {
	next string
	err  error
}

func (f *fakeRotator) Rotate() (string, error) {
	return f.next, f.err
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestController_UserMessageVisibleBeforeReply(t *testing.T) {
	sender := newBlockingSender(model.Reply{Content: "done"})
	c := New(newTestState(), sender, WithClock(fixedClock))

	var wg sync.WaitGroup
	wg.Add(1)
	var msg model.Message
	var sent bool
	go func() {
		defer wg.Done()
		msg, sent, _ = c.Submit(context.Background(), "hello")
	}()

	<-sender.started

	// the lock is free while the request runs
	s := c.State()
	require.Len(t, s.Messages, 1)
	assert.Equal(t, model.RoleUser, s.Messages[0].Role)
	assert.Equal(t, model.StatusConnecting, s.Status)
	assert.True(t, s.Pending)

	// a concurrent submit is skipped
	_, skippedSent, err := c.Submit(context.Background(), "second")
	assert.False(t, skippedSent)
	assert.NoError(t, err)

	close(sender.release)
	wg.Wait()

	assert.True(t, sent)
	assert.Equal(t, "done", msg.Content)
	assert.Equal(t, int32(1), sender.calls.Load())

	s = c.State()
	assert.Len(t, s.Messages, 2)
	assert.Equal(t, model.StatusOnline, s.Status)
}

func TestController_SubmitBlankIsSkipped(t *testing.T) {
	var calls atomic.Int32
	c := New(newTestState(), funcSender(func(context.Context, string, model.Provider, string) (model.Reply, error) {
		calls.Add(1)
		return model.Reply{}, nil
	}))

	_, sent, err := c.Submit(context.Background(), "  \n ")
	assert.False(t, sent)
	assert.NoError(t, err)
	assert.Zero(t, calls.Load())
	assert.True(t, c.State().IsEmpty())
}

func TestController_SubmitFailure(t *testing.T) {
	c := New(newTestState(), funcSender(func(context.Context, string, model.Provider, string) (model.Reply, error) {
		return model.Reply{}, errors.New("connection refused")
	}), WithClock(fixedClock))

	msg, sent, err := c.Submit(context.Background(), "hello")
	assert.True(t, sent)
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, model.RoleError, msg.Role)
	assert.Equal(t, "Error: connection refused", msg.Content)
	assert.Equal(t, model.StatusError, c.State().Status)
}

func TestController_SendsProviderAndSession(t *testing.T) {
	var gotProvider model.Provider
	var gotSession string
	c := New(newTestState(), funcSender(func(_ context.Context, _ string, p model.Provider, sid string) (model.Reply, error) {
		gotProvider, gotSession = p, sid
		return model.Reply{Content: "ok"}, nil
	}))

	c.SelectProvider(model.ProviderOllama)
	_, _, err := c.Submit(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderOllama, gotProvider)
	assert.Equal(t, "sess_abcd1234", gotSession)
}

// =============================================================================
// RETRY INTEGRATION TESTS
// =============================================================================

func newBackend(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= failures {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"content":"recovered","logs":["tool ran"],"internal_flow":{"tool_logs":["tool ran"],"messages":[],"params":{"temperature":0.7}}}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newRecordingClient(url string) (*transport.Client, *[]time.Duration) {
	var delays []time.Duration
	settings := transport.DefaultSettings()
	settings.BaseURL = url
	client := transport.NewClient(settings, transport.WithSleep(func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}))
	return client, &delays
}

func TestController_FailFailSucceed(t *testing.T) {
	server, calls := newBackend(t, 2)
	client, delays := newRecordingClient(server.URL)
	c := New(newTestState(), client)

	msg, sent, err := c.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, "recovered", msg.Content)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2000 * time.Millisecond, 4000 * time.Millisecond}, *delays)

	s := c.State()
	assert.Equal(t, model.StatusOnline, s.Status)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, model.RoleAssistant, s.Messages[1].Role)
	require.NotNil(t, s.Flow)
	assert.Equal(t, 1, s.Flow.ToolCount())
}

func TestController_FailAlways(t *testing.T) {
	server, calls := newBackend(t, 100)
	client, delays := newRecordingClient(server.URL)
	c := New(newTestState(), client)

	msg, sent, err := c.Submit(context.Background(), "hello")
	assert.True(t, sent)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrNetworkFailure)

	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, *delays, 2)
	assert.Equal(t, model.RoleError, msg.Role)

	s := c.State()
	assert.Equal(t, model.StatusError, s.Status)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, model.RoleError, s.Messages[1].Role)
}

// =============================================================================
// RESET TESTS
// =============================================================================

func TestController_ResetConfirmed(t *testing.T) {
	initial := NewState(Options{Provider: model.ProviderOpenAI, SessionID: "sess_old", ConfirmReset: true})
	var prompts []string
	c := New(initial, funcSender(func(context.Context, string, model.Provider, string) (model.Reply, error) {
		return model.Reply{Content: "ok"}, nil
	}),
		WithConfirmer(ConfirmFunc(func(p string) bool {
			prompts = append(prompts, p)
			return true
		})),
		WithSessionRotator(&fakeRotator{next: "sess_new"}),
	)

	_, _, err := c.Submit(context.Background(), "hello")
	require.NoError(t, err)

	done, err := c.Reset()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{ResetPrompt}, prompts)

	s := c.State()
	assert.Empty(t, s.Messages)
	assert.Equal(t, "sess_new", s.SessionID)
	assert.False(t, s.AwaitingConfirm)
}

func TestController_ResetDeclined(t *testing.T) {
	initial := NewState(Options{SessionID: "sess_old", ConfirmReset: true})
	c := New(initial, nil,
		WithConfirmer(ConfirmFunc(func(string) bool { return false })),
		WithSessionRotator(&fakeRotator{next: "sess_new"}),
	)
	c.SetInput("draft")

	done, err := c.Reset()
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "sess_old", c.State().SessionID)
	assert.Equal(t, "draft", c.State().Input)
}

func TestController_ResetRotationError(t *testing.T) {
	c := New(NewState(Options{SessionID: "sess_old"}), nil,
		WithSessionRotator(&fakeRotator{next: "sess_mem", err: errors.New("disk full")}))

	done, err := c.Reset()
	assert.True(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "sess_mem", c.State().SessionID)
}

func TestController_ToggleFlow(t *testing.T) {
	c := New(newTestState(), nil)
	assert.True(t, c.ToggleFlow())
	assert.False(t, c.ToggleFlow())
}
