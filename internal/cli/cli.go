// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the glm4flash command, which asks the
// glm-4-flash model of open.bigmodel.cn a single question and prints
// the reply.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/gogama/apiclient"
	"github.com/gogama/apiclient/chat"
	"github.com/gogama/apiclient/internal/config"
	"github.com/gogama/apiclient/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Model is the chat model the command talks to.
const Model = "glm-4-flash"

// Prefix starts the line printed on success.
const Prefix = "GLM-4-FLASH:"

// Messages is the conversation sent by the command.
var Messages = []chat.Message{
	{Role: chat.RoleSystem, Content: "你是一位温柔的朋友"},
	{Role: chat.RoleUser, Content: "告诉我，你有哪些能力"},
}

// NewCommand returns the root command. opts are passed on to
// config.Load when the command runs.
func NewCommand(opts ...config.Option) *cobra.Command {
	return &cobra.Command{
		Use:           "glm4flash",
		Short:         "Ask glm-4-flash what it can do",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
}

func run(ctx context.Context, out, errOut io.Writer, opts []config.Option) error {
	logger := &log.Logger{Handler: clihandler.New(errOut), Level: log.InfoLevel}

	s, err := config.Load(opts...)
	if err != nil {
		logger.WithError(err).Error("configuration")
		return err
	}
	logger.Level = s.LogLevel
	if s.APIKey == "" {
		err = errors.New("cli: " + config.EnvName("api_key") + " is not set")
		logger.WithError(err).Error("configuration")
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		return err
	}
	handlers := &apiclient.HandlerGroup{}
	collector.Install(handlers)
	metrics.Serve(ctx, s.MetricsAddr, reg)

	cfg := s.ClientConfig()
	cfg.Logger = logger
	cfg.Handlers = handlers
	c, err := apiclient.New(cfg)
	if err != nil {
		logger.WithError(err).Error("configuration")
		return err
	}
	defer c.CloseIdleConnections()

	logger.WithField("model", Model).Debugf("POST %s%s", c.BaseURL(), chat.CompletionsEndpoint)
	msg, err := chat.Complete(ctx, c, chat.Request{Model: Model, Messages: Messages})
	if err != nil {
		logger.WithError(err).Error("chat completion failed")
		return err
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, msg); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, Prefix, buf.String())
	return err
}
