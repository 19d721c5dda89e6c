// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lowchat/internal/controller"
	"github.com/jeranaias/lowchat/internal/export"
	"github.com/jeranaias/lowchat/internal/model"
	"github.com/jeranaias/lowchat/internal/transport"
)

func newChatCommand(root *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a line-oriented chat session",
		Long: `Start a line-oriented chat session with input history.

Commands during chat:
  /provider [name]   show or switch provider (clears the conversation)
  /new               start a new conversation
  /flow              toggle the internal flow after each reply
  /export [md|json]  write the transcript to a file
  /help              show commands
  /quit              exit

Tab completes command names, providers and export formats.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, root, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print plain text even on a terminal")
	return cmd
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of input. *liner.State implements it.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// history wraps liner with a persistent history file.
type history struct {
	*liner.State
	path string
}

func openHistory(path string) *history {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeLine)

	h := &history{State: line, path: path}
	if f, err := os.Open(path); err == nil {
		if _, err := line.ReadHistory(f); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to read history")
		}
		f.Close()
	}
	return h
}

// Close saves history with owner-only permissions and restores the terminal.
func (h *history) Close() error {
	defer h.State.Close()

	if err := os.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = h.WriteHistory(f)
	return err
}

// =============================================================================
// CHAT SESSION
// =============================================================================

func runChat(cmd *cobra.Command, root *rootOptions, plain bool) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	h := openHistory(a.cfg.HistoryPath())
	defer func() {
		if err := h.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to save history")
		}
	}()

	r := newREPL(a, h, out, !plain && isTerminal(out))
	return r.run(cmd.Context())
}

// repl is the line-oriented chat loop.
type repl struct {
	ctrl   *controller.Controller
	input  lineReader
	print  printer
	export *export.Options
}

func newREPL(a *app, input lineReader, out io.Writer, styled bool) *repl {
	r := &repl{
		input: input,
		print: printer{out: out, renderer: a.renderer(terminalWidth(out)), styled: styled},
	}

	r.export = export.DefaultOptions()
	r.export.OutputDir = a.cfg.UI.ExportDir

	r.ctrl = controller.New(
		controller.NewState(controller.Options{
			Provider:     a.cfg.Provider(),
			SessionID:    a.sessionID(),
			ConfirmReset: a.cfg.UI.ConfirmReset,
			ShowFlow:     a.cfg.UI.ShowFlow,
		}),
		a.client,
		controller.WithConfirmer(controller.ConfirmFunc(r.confirm)),
		controller.WithSessionRotator(a.store),
	)
	return r
}

func (r *repl) prompt() string {
	p := r.ctrl.State().Provider.String() + "> "
	if r.print.styled {
		return promptStyle.Render(p)
	}
	return p
}

func (r *repl) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	state := r.ctrl.State()
	if r.print.styled {
		fmt.Fprintln(r.print.out, welcomeStyle.Render("lowchat"))
	}
	r.print.info("Provider %s, session %s. Type /help for commands.", state.Provider.DisplayName(), state.SessionID)

	for {
		line, err := r.input.Prompt(r.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.print.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.input.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			quit, err := r.command(line)
			if err != nil {
				r.print.reply(model.NewErrorMessage(err, time.Now()))
			}
			if quit {
				return nil
			}
			continue
		}

		r.send(ctx, line)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// send runs one exchange. It blocks until the reply or the final failure.
func (r *repl) send(ctx context.Context, line string) {
	msg, sent, err := r.ctrl.Submit(ctx, line)
	if !sent {
		return
	}
	r.print.reply(msg)
	if err != nil {
		log.Warn().Err(err).Msg("chat request failed")
		if hint := transport.Hint(err); hint != "" {
			r.print.info("%s", hint)
		}
	}

	if state := r.ctrl.State(); state.ShowFlow && err == nil {
		r.print.flow(state.Flow, state.Logs)
	}
}

// command handles a slash command and reports whether to quit.
func (r *repl) command(line string) (bool, error) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h":
		r.print.info("/provider [name]  /new  /flow  /export [md|json]  /quit")

	case "/provider":
		if len(args) == 0 {
			current := r.ctrl.State().Provider
			for _, info := range model.Providers() {
				marker := " "
				if info.ID == current {
					marker = "*"
				}
				r.print.info("%s %-7s %s", marker, info.ID, info.Name)
			}
			return false, nil
		}
		p, err := model.ParseProvider(args[0])
		if err != nil {
			return false, err
		}
		r.ctrl.SelectProvider(p)
		r.print.info("Provider: %s", p.DisplayName())

	case "/new":
		done, err := r.ctrl.Reset()
		if err != nil {
			return false, err
		}
		if done {
			r.print.info("Started a new conversation (session %s)", r.ctrl.State().SessionID)
		} else {
			r.print.info("Kept the current conversation")
		}

	case "/flow":
		if r.ctrl.ToggleFlow() {
			state := r.ctrl.State()
			r.print.flow(state.Flow, state.Logs)
		} else {
			r.print.info("Flow hidden")
		}

	case "/export":
		format := ""
		if len(args) > 0 {
			format = args[0]
		}
		path, err := r.exportTranscript(format)
		if err != nil {
			return false, err
		}
		r.print.info("Exported to %s", path)

	default:
		return false, fmt.Errorf("unknown command %s, type /help", name)
	}
	return false, nil
}

func (r *repl) exportTranscript(format string) (string, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", err
	}
	exporter, err := export.ExporterFor(f, r.export)
	if err != nil {
		return "", err
	}
	state := r.ctrl.State()
	return export.ExportToFile(&export.Transcript{
		SessionID: state.SessionID,
		Provider:  state.Provider,
		Messages:  state.Messages,
		Flow:      state.Flow,
	}, exporter, r.export)
}

// confirm asks a yes/no question on the input line.
func (r *repl) confirm(prompt string) bool {
	answer, err := r.input.Prompt(prompt + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
