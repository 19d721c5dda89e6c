// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lowchat/internal/config"
	"github.com/jeranaias/lowchat/internal/logging"
	"github.com/jeranaias/lowchat/internal/model"
	"github.com/jeranaias/lowchat/internal/render"
	"github.com/jeranaias/lowchat/internal/session"
	"github.com/jeranaias/lowchat/internal/transport"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	url        string
	provider   string
	logLevel   string
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path = o.configPath
		err  error
	)

	if path != "" {
		cfg, err = config.LoadFromPath(path)
		if err != nil {
			return nil, path, &ConfigError{Path: path, Err: err}
		}
	} else {
		if path, err = config.ResolvePath(); err != nil {
			return nil, "", &ConfigError{Err: err}
		}
		cfg, err = config.Load()
		if cfg == nil {
			return nil, path, &ConfigError{Path: path, Err: err}
		}
		if err != nil {
			// Defaults are usable; the broken file is reported and ignored.
			fmt.Fprintf(os.Stderr, "warning: %v; using defaults\n", err)
		}
	}

	if o.url != "" {
		cfg.Backend.URL = o.url
	}
	if o.provider != "" {
		p, err := model.ParseProvider(o.provider)
		if err != nil {
			return nil, path, &UsageError{Reason: err.Error()}
		}
		cfg.Backend.Provider = p.String()
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, path, &ConfigError{Path: path, Err: err}
	}
	return cfg, path, nil
}

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app is the wired set of services shared by the commands.
type app struct {
	cfg     *config.Config
	cfgPath string
	store   *session.Store
	client  *transport.Client
	logs    io.Closer
}

// newApp loads config, installs the file logger and builds the services.
func newApp(opts *rootOptions) (*app, error) {
	cfg, path, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	logs, err := logging.Setup(logging.Options{Level: cfg.LogLevel(), File: cfg.LogPath()})
	if err != nil {
		// A missing log file is not worth failing a chat over.
		logging.Disable()
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		logs = nil
	}

	log.Debug().
		Str("config", path).
		Str("url", cfg.Backend.URL).
		Str("provider", cfg.Backend.Provider).
		Msg("lowchat starting")

	return &app{
		cfg:     cfg,
		cfgPath: path,
		store:   session.NewStore(cfg.SessionPath(), cfg.Session.Persist),
		client:  transport.NewClient(transportSettings(cfg)),
		logs:    logs,
	}, nil
}

// Close closes the log file.
func (a *app) Close() error {
	if a.logs == nil {
		return nil
	}
	return a.logs.Close()
}

// sessionID loads the persisted session id. A save failure is logged; the id
// is still usable for this run.
func (a *app) sessionID() string {
	id, err := a.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("session id not persisted")
	}
	return id
}

// renderer builds the assistant reply renderer for the configured
// sanitizer variant.
func (a *app) renderer(width int) *render.TerminalRenderer {
	return render.NewTerminalRenderer(render.Options{
		AllowSpan:  a.cfg.Render.AllowSpan,
		AllowClass: a.cfg.Render.AllowClass,
	}, a.cfg.Render.Style, width)
}

// transportSettings maps the config onto client settings.
func transportSettings(cfg *config.Config) transport.Settings {
	s := transport.DefaultSettings()
	s.BaseURL = cfg.Backend.URL
	s.ChatPath = cfg.Backend.ChatPath
	s.HealthPath = cfg.Backend.HealthPath
	s.Temperature = cfg.Backend.Temperature
	s.Timeout = cfg.Timeout()
	s.Retry = transport.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.BaseDelay(),
	}
	s.RequestsPerMinute = cfg.Retry.RequestsPerMinute
	return s
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
