// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lowchat/internal/model"
)

// clearEnv unsets every LOWCHAT_* override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LOWCHAT_URL", "LOWCHAT_PROVIDER", "LOWCHAT_MAX_ATTEMPTS", "LOWCHAT_LOG_LEVEL", "LOWCHAT_SESSION_FILE"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// =============================================================================
// DEFAULT TESTS
// =============================================================================

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, "/chat", cfg.Backend.ChatPath)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.BaseDelay())
	assert.Equal(t, time.Duration(0), cfg.Timeout())
	assert.Nil(t, cfg.Backend.Temperature)
	assert.Equal(t, model.ProviderOpenAI, cfg.Provider())
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())
	assert.True(t, cfg.Session.Persist)
	assert.NoError(t, cfg.Validate())
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoadFromPath_TOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[backend]
url = "http://chat.internal:9000"
provider = "ollama"
temperature = 0.2

[retry]
max_attempts = 5

[ui]
confirm_reset = false
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "http://chat.internal:9000", cfg.Backend.URL)
	assert.Equal(t, model.ProviderOllama, cfg.Provider())
	require.NotNil(t, cfg.Backend.Temperature)
	assert.Equal(t, 0.2, *cfg.Backend.Temperature)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.UI.ConfirmReset)

	// untouched keys keep their defaults
	assert.Equal(t, "/chat", cfg.Backend.ChatPath)
	assert.Equal(t, 2000, cfg.Retry.BaseDelayMs)
	assert.True(t, cfg.Session.Persist)
}

func TestLoadFromPath_JSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"backend": {"provider": "hf"}, "retry": {"requests_per_minute": 30}}`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderHuggingFace, cfg.Provider())
	assert.Equal(t, 30, cfg.Retry.RequestsPerMinute)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[backend]
url = "ftp://example.com"
provider = "anthropic"

[retry]
max_attempts = 50
`)

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	assert.True(t, fields["backend.url"])
	assert.True(t, fields["backend.provider"])
	assert.True(t, fields["retry.max_attempts"])
}

func TestLoadFromPath_BadSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[backend\nurl = ")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	hot := 3.5
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, "", false},
		{"https url", func(c *Config) { c.Backend.URL = "https://chat.example.com" }, "", false},
		{"missing host", func(c *Config) { c.Backend.URL = "http://" }, "backend.url", true},
		{"chat path without slash", func(c *Config) { c.Backend.ChatPath = "chat" }, "backend.chat_path", true},
		{"temperature too high", func(c *Config) { c.Backend.Temperature = &hot }, "backend.temperature", true},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSecs = -1 }, "backend.timeout_secs", true},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "retry.max_attempts", true},
		{"negative delay", func(c *Config) { c.Retry.BaseDelayMs = -5 }, "retry.base_delay_ms", true},
		{"negative rpm", func(c *Config) { c.Retry.RequestsPerMinute = -1 }, "retry.requests_per_minute", true},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme", true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

// =============================================================================
// ENV OVERRIDE TESTS
// =============================================================================

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("LOWCHAT_URL", "http://10.0.0.5:8000")
	t.Setenv("LOWCHAT_PROVIDER", "OLLAMA")
	t.Setenv("LOWCHAT_MAX_ATTEMPTS", "4")
	t.Setenv("LOWCHAT_LOG_LEVEL", "debug")
	t.Setenv("LOWCHAT_SESSION_FILE", "/tmp/lowchat-session.json")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://10.0.0.5:8000", cfg.Backend.URL)
	assert.Equal(t, model.ProviderOllama, cfg.Provider())
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "/tmp/lowchat-session.json", cfg.SessionPath())
}

func TestConfig_InvalidMaxAttemptsEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOWCHAT_MAX_ATTEMPTS", "many")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	temp := 0.9
	cfg := Default()
	cfg.Backend.Provider = "hf"
	cfg.Backend.Temperature = &temp
	cfg.Render.AllowSpan = true
	require.NoError(t, SaveTOML(cfg, path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Retry.RequestsPerMinute = 12
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.Retry.RequestsPerMinute)
}

// =============================================================================
// GET/SET TESTS
// =============================================================================

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("retry.max_attempts")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	require.NoError(t, cfg.Set("retry.max_attempts", "5"))
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)

	require.NoError(t, cfg.Set("ui.show_flow", "yes"))
	assert.True(t, cfg.UI.ShowFlow)

	require.NoError(t, cfg.Set("backend.temperature", "0.4"))
	require.NotNil(t, cfg.Backend.Temperature)
	assert.Equal(t, 0.4, *cfg.Backend.Temperature)

	v, err = cfg.Get("backend.temperature")
	require.NoError(t, err)
	assert.Equal(t, 0.4, v)

	require.NoError(t, cfg.Set("backend.temperature", "none"))
	assert.Nil(t, cfg.Backend.Temperature)

	_, err = cfg.Get("backend.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("retry.max_attempts", "three"))
	_, err = cfg.Get("backend.url.host")
	assert.Error(t, err)
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestConfig_Clone(t *testing.T) {
	temp := 0.5
	cfg := Default()
	cfg.Backend.Temperature = &temp

	clone := cfg.Clone()
	*clone.Backend.Temperature = 1.5
	clone.Backend.URL = "http://other:1"

	assert.Equal(t, 0.5, *cfg.Backend.Temperature)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
}
