// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// PROVIDER TYPE
// =============================================================================

// Provider identifies the backend LLM provider. The value is passed verbatim
// to the backend and never interpreted locally.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderHuggingFace Provider = "hf"
	ProviderOllama      Provider = "ollama"
)

// DefaultProvider is selected when nothing else is configured.
const DefaultProvider = ProviderOpenAI

// ProviderInfo describes a selectable provider.
type ProviderInfo struct {
	ID          Provider
	Name        string
	Description string
}

// providerCatalog lists the providers in selector order.
var providerCatalog = []ProviderInfo{
	{ID: ProviderOpenAI, Name: "OpenAI GPT", Description: "OpenAI-compatible chat completions"},
	{ID: ProviderHuggingFace, Name: "Hugging Face", Description: "Hugging Face inference API"},
	{ID: ProviderOllama, Name: "Ollama", Description: "Local Ollama server"},
}

// Providers returns the selectable providers in display order.
func Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(providerCatalog))
	copy(out, providerCatalog)
	return out
}

// ParseProvider converts s into a Provider. Matching is case-insensitive.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p, nil
	}
	return "", fmt.Errorf("invalid provider %q, must be one of: openai, hf, ollama", s)
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	for _, info := range providerCatalog {
		if info.ID == p {
			return true
		}
	}
	return false
}

// String returns the wire value of the provider.
func (p Provider) String() string {
	return string(p)
}

// DisplayName returns the human-readable provider name.
func (p Provider) DisplayName() string {
	for _, info := range providerCatalog {
		if info.ID == p {
			return info.Name
		}
	}
	return string(p)
}

// Next returns the provider after p in selector order, wrapping around.
func (p Provider) Next() Provider {
	for i, info := range providerCatalog {
		if info.ID == p {
			return providerCatalog[(i+1)%len(providerCatalog)].ID
		}
	}
	return DefaultProvider
}
