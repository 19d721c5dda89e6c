// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// ConnectionStatus is the connection indicator shown to the user. Exactly one
// value is live at a time.
type ConnectionStatus int

const (
	StatusOnline ConnectionStatus = iota
	StatusConnecting
	StatusError
)

// String returns the machine name of the status.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusConnecting:
		return "connecting"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Label returns the text shown next to the status indicator.
func (s ConnectionStatus) Label() string {
	switch s {
	case StatusOnline:
		return "Online"
	case StatusConnecting:
		return "Connecting..."
	default:
		return "Connection error"
	}
}
