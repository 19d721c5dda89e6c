// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: one conversation entry (user, assistant or error)
//   - FlowSnapshot: the backend's tool logs, model context and parameters
//   - Reply: decoded assistant response handed to the controller
//   - Provider: closed set of backend providers (openai, hf, ollama)
//   - ConnectionStatus: online, connecting or error
//
// # Usage
//
//	p, err := model.ParseProvider("ollama")
//	msg := model.NewUserMessage("Hello!", time.Now())
package model
