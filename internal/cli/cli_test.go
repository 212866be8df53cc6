// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gogama/apiclient"
	"github.com/gogama/apiclient/chat"
	"github.com/gogama/apiclient/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got chat.Request
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, chat.CompletionsEndpoint, r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			b, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(b, &got))
			_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role": "assistant", "content": "Hi"}}]}`))
		}))
		defer server.Close()
		setEnv(t, server.URL, "test-key")

		out, errOut, err := execute()

		require.NoError(t, err)
		assert.Equal(t, "GLM-4-FLASH: {\"role\":\"assistant\",\"content\":\"Hi\"}\n", out)
		assert.Equal(t, chat.Request{Model: Model, Messages: Messages}, got)
		assert.Contains(t, errOut, "Response Status Code: 200")
	})
	t.Run("server error", func(t *testing.T) {
		var n int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&n, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()
		setEnv(t, server.URL, "test-key")
		t.Setenv("API_RETRY_TOTAL", "2")

		out, errOut, err := execute()

		assert.True(t, apiclient.IsStatus(err, http.StatusInternalServerError))
		assert.Equal(t, int32(2), atomic.LoadInt32(&n))
		assert.Empty(t, out)
		assert.Contains(t, errOut, "Response Status Code: 500")
		assert.Contains(t, errOut, "chat completion failed")
	})
	t.Run("missing key", func(t *testing.T) {
		setEnv(t, "http://127.0.0.1:1", "")

		out, errOut, err := execute()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_KEY")
		assert.Empty(t, out)
		assert.Contains(t, errOut, "configuration")
	})
	t.Run("negative backoff", func(t *testing.T) {
		setEnv(t, "http://127.0.0.1:1", "test-key")
		t.Setenv("API_RETRY_BACKOFF_FACTOR", "-1")

		out, errOut, err := execute()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_RETRY_BACKOFF_FACTOR")
		assert.Empty(t, out)
		assert.Contains(t, errOut, "configuration")
	})
	t.Run("bad base url", func(t *testing.T) {
		setEnv(t, "open.bigmodel.cn", "test-key")

		_, _, err := execute()

		assert.Error(t, err)
	})
	t.Run("arguments rejected", func(t *testing.T) {
		cmd := NewCommand(config.WithEnvFile(""))
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"extra"})

		assert.Error(t, cmd.Execute())
	})
}

func setEnv(t *testing.T, baseURL, key string) {
	t.Setenv("API_BASE_URL", baseURL)
	t.Setenv("API_KEY", key)
	t.Setenv("API_CONFIG_FILE", "")
	t.Setenv("API_METRICS_ADDR", "")
	t.Setenv("API_LOG_LEVEL", "")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("API_RETRY_TOTAL", "")
	t.Setenv("API_RETRY_BACKOFF_FACTOR", "0")
	t.Setenv("API_RETRY_STATUS_CODES", "")
}

func execute() (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := NewCommand(config.WithEnvFile(""))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
