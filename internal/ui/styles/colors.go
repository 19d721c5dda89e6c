// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lowchat/internal/model"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - assistant messages, flow panel
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - brand color, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - online status
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - connecting status
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Sky - weather tool logs
var Sky = lipgloss.AdaptiveColor{Light: "#0284C7", Dark: "#7DD3FC"}

// Indigo - generic tool logs
var Indigo = lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#A5B4FC"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}

var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}

var ErrorBubbleFg = lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#FECACA"}
var ErrorBubbleBorder = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet holds ASCII indicators shown next to colored states.
type StatusIndicatorSet struct {
	Online     string
	Connecting string
	Error      string
	Info       string
}

// StatusIndicators never rely on color alone.
var StatusIndicators = StatusIndicatorSet{
	Online:     "[*]",
	Connecting: "[~]",
	Error:      "[X]",
	Info:       "[i]",
}

// StatusColor returns the color for a connection status.
func StatusColor(s model.ConnectionStatus) lipgloss.AdaptiveColor {
	switch s {
	case model.StatusConnecting:
		return Amber
	case model.StatusError:
		return Rose
	default:
		return Emerald
	}
}

// StatusIndicator returns the ASCII indicator for a connection status.
func StatusIndicator(s model.ConnectionStatus) string {
	switch s {
	case model.StatusConnecting:
		return StatusIndicators.Connecting
	case model.StatusError:
		return StatusIndicators.Error
	default:
		return StatusIndicators.Online
	}
}

// =============================================================================
// TOOL LOG KINDS
// =============================================================================

// ToolKind classifies a tool log line by the tool it mentions.
type ToolKind int

const (
	ToolGeneric ToolKind = iota
	ToolWeather
	ToolSearch
	ToolFile
)

// ClassifyToolLog picks the kind from keywords in the log line.
func ClassifyToolLog(line string) ToolKind {
	l := strings.ToLower(line)
	switch {
	case strings.Contains(l, "weather"):
		return ToolWeather
	case strings.Contains(l, "search"):
		return ToolSearch
	case strings.Contains(l, "file"):
		return ToolFile
	default:
		return ToolGeneric
	}
}

// Tag is the short label shown before a tool log line.
func (k ToolKind) Tag() string {
	switch k {
	case ToolWeather:
		return "[weather]"
	case ToolSearch:
		return "[search]"
	case ToolFile:
		return "[file]"
	default:
		return "[tool]"
	}
}

// Color returns the accent used for the kind.
func (k ToolKind) Color() lipgloss.AdaptiveColor {
	switch k {
	case ToolWeather:
		return Sky
	case ToolSearch:
		return Emerald
	case ToolFile:
		return Amber
	default:
		return Indigo
	}
}

// =============================================================================
// PLAIN OUTPUT HELPERS
// =============================================================================

// RenderError renders an error line with its indicator, for CLI output.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderInfo renders an informational line with its indicator.
func RenderInfo(message string) string {
	return lipgloss.NewStyle().Foreground(Cyan).
		Render(StatusIndicators.Info + " " + message)
}

// RenderStatus renders a connection status with indicator and label.
func RenderStatus(s model.ConnectionStatus) string {
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Bold(true).
		Render(StatusIndicator(s) + " " + s.Label())
}

// RenderToolLog renders one tool log line with its tag.
func RenderToolLog(line string) string {
	kind := ClassifyToolLog(line)
	return lipgloss.NewStyle().Foreground(kind.Color()).
		Render(kind.Tag() + " " + line)
}
