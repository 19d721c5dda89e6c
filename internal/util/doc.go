// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across lowchat packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth, StringWidth, PadRight: display-width aware helpers
//   - Preview: single-line preview of long content
//   - NormalizeInput: trim + NFC normalization of user input
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	display := util.TruncateWidth(longText, 50)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
