// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/lowchat/internal/config"
	"github.com/jeranaias/lowchat/internal/model"
)

// =============================================================================
// TRANSPORT MESSAGES
// =============================================================================

// ReplyMsg carries a successful reply for request Seq.
type ReplyMsg struct {
	Seq   uint64
	Reply model.Reply
	At    time.Time
}

// FailedMsg reports that request Seq failed after all attempts.
type FailedMsg struct {
	Seq uint64
	Err error
	At  time.Time
}

// =============================================================================
// SESSION AND CONFIG MESSAGES
// =============================================================================

// SessionMsg reports the outcome of a session rotation.
type SessionMsg struct {
	ID  string
	Err error
}

// ReloadMsg delivers a config file reload.
type ReloadMsg struct {
	config.Reload
}

// =============================================================================
// ACTION RESULT MESSAGES
// =============================================================================

// ExportedMsg reports where a transcript was written.
type ExportedMsg struct {
	Path string
	Err  error
}

// CopiedMsg reports the outcome of a clipboard copy.
type CopiedMsg struct {
	Err error
}
