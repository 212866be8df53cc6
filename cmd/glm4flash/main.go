// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command glm4flash asks the glm-4-flash chat model what it can do and
// prints the reply. It reads API_KEY and the other API_* settings from
// the environment or a .env file.
package main

import (
	"os"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/gogama/apiclient/internal/cli"
)

func main() {
	log.SetHandler(clihandler.Default)
	if err := cli.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
