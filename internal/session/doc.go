// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session keeps the conversation session id the backend uses to find
// its agent state.
//
// The id is opaque: it is generated here, persisted between runs and sent
// with every chat request, but never interpreted locally. Starting a new
// conversation rotates it.
//
// # File Format
//
// The store writes a small JSON document with 0600 permissions:
//
//	{"session_id": "sess_1a2b3c4d", "created_at": "2025-01-02T15:04:05Z"}
package session
