// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns the conversation state and drives the request
// lifecycle.
//
// Every transition goes through Reduce, a pure function from a State and an
// Event to the next State plus a list of Effects. Effects are requests for
// the caller: send a chat request, ask the user to confirm a reset, rotate
// the session id. The terminal UI turns effects into tea.Cmds; the
// line-oriented commands use Controller, which performs them synchronously.
//
// # Lifecycle
//
//	Submit -> SendEffect -> (ReplyReceived | RequestFailed)
//	ResetRequested -> ConfirmResetEffect -> ResetConfirmed -> RotateSessionEffect -> SessionRotated
//
// Exactly one request is in flight at a time. A reset or provider switch
// while a request is pending discards its outcome when it arrives.
package controller
