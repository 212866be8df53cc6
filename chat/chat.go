// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package chat calls an OpenAI-compatible chat completion endpoint, such
// as the one served by open.bigmodel.cn, through an apiclient.Poster.
package chat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gogama/apiclient"
)

// CompletionsEndpoint is the chat completion path of the bigmodel.cn
// API, relative to its base URL.
const CompletionsEndpoint = "/api/paas/v4/chat/completions"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNoChoices is returned by Complete when the response has an empty
// choices array.
var ErrNoChoices = errors.New("chat: response has no choices")

// A Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// A Request is the body of a chat completion call.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// A Response is the body returned by a chat completion call. Only the
// fields used here are decoded.
type Response struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

// A Choice is one candidate completion. Message is kept raw so that
// provider-specific fields survive a round trip.
type Choice struct {
	Index        int             `json:"index"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Message      json.RawMessage `json:"message"`
}

// Decode decodes the choice's message into a Message.
func (c Choice) Decode() (Message, error) {
	var m Message
	err := json.Unmarshal(c.Message, &m)
	return m, err
}

// Complete posts req to CompletionsEndpoint and returns the message of
// the first choice, exactly as the server sent it.
func Complete(ctx context.Context, p apiclient.Poster, req Request) (json.RawMessage, error) {
	var resp Response
	if err := p.PostInto(ctx, CompletionsEndpoint, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}
	return resp.Choices[0].Message, nil
}
