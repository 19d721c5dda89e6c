// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport talks to the lowchat backend over HTTP.
//
// A Client wraps one POST to the chat endpoint. Every failure, whether the
// backend answered with a non-2xx status or the request never completed, is
// retried the same way: MaxAttempts attempts in total, waiting BaseDelay*n
// before attempt n+1 (2s then 4s with the defaults). When the budget runs
// out the caller receives a *RetriesExhaustedError wrapping the last failure.
//
// # Usage
//
//	client := transport.NewClient(transport.DefaultSettings())
//	reply, err := client.SendChat(ctx, "Hello", model.ProviderOllama, sessionID)
//	if errors.Is(err, transport.ErrNetworkFailure) {
//	    // show "Error: ..." to the user
//	}
package transport
