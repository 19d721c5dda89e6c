// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lowchat/internal/config"
	"github.com/jeranaias/lowchat/internal/controller"
	"github.com/jeranaias/lowchat/internal/export"
	"github.com/jeranaias/lowchat/internal/render"
	"github.com/jeranaias/lowchat/internal/ui/styles"
)

// ExamplePrompt is a canned question shown on the empty screen.
type ExamplePrompt struct {
	Label string
	Text  string
}

// ExamplePrompts exercise the backend tools: weather, file creation and web
// search.
var ExamplePrompts = []ExamplePrompt{
	{Label: "weather", Text: "What's the weather like in Madrid?"},
	{Label: "file", Text: "Create a file named demo.txt with the text 'Hello from low-level LLM chat'."},
	{Label: "search", Text: "Search for information about LLMs"},
}

// inputCharLimit caps the input line.
const inputCharLimit = 4096

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps wires the model to the outside world. Only Sender is required.
type Deps struct {
	// Sender performs chat exchanges.
	Sender controller.Sender

	// Rotator issues new session ids after a reset.
	Rotator controller.SessionRotator

	// Renderer turns assistant HTML into terminal output.
	Renderer *render.TerminalRenderer

	// Theme defaults to styles.NewTheme("auto").
	Theme *styles.Theme

	// Reloads delivers config file changes; OnReload applies a valid one.
	Reloads  <-chan config.Reload
	OnReload func(*config.Config)

	// Export configures Ctrl+E.
	Export *export.Options

	// Clipboard defaults to clipboard.WriteAll.
	Clipboard func(string) error

	// Now defaults to time.Now.
	Now func() time.Time

	// Context bounds in-flight requests.
	Context context.Context
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state controller.State
	deps  Deps

	theme *styles.Theme
	keys  KeyMap

	// Dimensions
	width     int
	height    int
	flowWidth int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// notice is a one-line status message shown in the status bar.
	notice string
}

// New creates a chat model starting from initial.
func New(initial controller.State, deps Deps) Model {
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme(styles.ThemeAuto)
	}
	if deps.Renderer == nil {
		deps.Renderer = render.NewTerminalRenderer(render.Options{}, render.StyleAuto, render.DefaultWordWrap)
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Export == nil {
		deps.Export = export.DefaultOptions()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = inputCharLimit
	ti.SetValue(initial.Input)
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.LineSpinner.Frames,
		FPS:    styles.LineSpinner.Duration(),
	}
	sp.Style = deps.Theme.Spinner

	m := Model{
		state:    initial,
		deps:     deps,
		theme:    deps.Theme,
		keys:     DefaultKeyMap(),
		viewport: vp,
		input:    ti,
		spinner:  sp,
	}
	m.refresh()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the config watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForReload(m.deps.Reloads))
}

// State returns the current conversation state.
func (m Model) State() controller.State {
	return m.state
}

// Notice returns the current status bar message.
func (m Model) Notice() string {
	return m.notice
}
