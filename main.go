// lowchat - a terminal chat client for a language-model backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/lowchat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
