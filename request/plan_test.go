// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	type foo struct{}
	ctx := context.WithValue(context.Background(), foo{}, "bar")

	testCases := []struct {
		name    string
		method  string
		url     string
		body    interface{}
		asserts func(*testing.T, *Plan, error)
	}{
		{
			name: "empty method means GET",
			url:  "https://open.bigmodel.cn/api/paas/v4/models",
			asserts: func(t *testing.T, p *Plan, err error) {
				require.NoError(t, err)
				assert.Equal(t, "GET", p.Method)
				assert.Equal(t, "https://open.bigmodel.cn/api/paas/v4/models", p.URL.String())
				assert.NotNil(t, p.Header)
				assert.Nil(t, p.Body)
			},
		},
		{
			name:   "POST with string body",
			method: "POST",
			url:    "http://localhost:8080/chat?x=1",
			body:   `{"model":"glm-4-flash"}`,
			asserts: func(t *testing.T, p *Plan, err error) {
				require.NoError(t, err)
				assert.Equal(t, "POST", p.Method)
				assert.Equal(t, "1", p.URL.Query().Get("x"))
				assert.Equal(t, []byte(`{"model":"glm-4-flash"}`), p.Body)
			},
		},
		{
			name:   "invalid method",
			method: "GET ME",
			url:    "http://localhost",
			asserts: func(t *testing.T, p *Plan, err error) {
				assert.Nil(t, p)
				assert.EqualError(t, err, `apiclient/request: invalid method "GET ME"`)
			},
		},
		{
			name:   "invalid URL",
			method: "GET",
			url:    "http://[::1",
			asserts: func(t *testing.T, p *Plan, err error) {
				assert.Nil(t, p)
				assert.Error(t, err)
			},
		},
		{
			name:   "invalid body",
			method: "PUT",
			url:    "http://localhost",
			body:   42,
			asserts: func(t *testing.T, p *Plan, err error) {
				assert.Nil(t, p)
				assert.EqualError(t, err, badBodyTypeMsg)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			p, err := NewPlan(ctx, testCase.method, testCase.url, testCase.body)
			testCase.asserts(t, p, err)
			if p != nil {
				assert.Same(t, ctx, p.Context())
			}
		})
	}

	t.Run("nil context", func(t *testing.T) {
		p, err := NewPlan(nil, "GET", "http://localhost", nil)
		assert.Nil(t, p)
		assert.EqualError(t, err, nilCtxMsg)
	})
}

func TestPlan_Context(t *testing.T) {
	p := &Plan{}
	assert.Equal(t, context.Background(), p.Context())
}

func TestPlan_WithContext(t *testing.T) {
	p, err := NewPlan(context.Background(), "GET", "http://localhost", nil)
	require.NoError(t, err)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, 1)
	p2 := p.WithContext(ctx)
	assert.NotSame(t, p, p2)
	assert.Same(t, ctx, p2.Context())
	assert.Equal(t, context.Background(), p.Context())
	assert.Same(t, p.URL, p2.URL)

	assert.PanicsWithValue(t, nilCtxMsg, func() {
		p.WithContext(nil)
	})
}

func TestPlan_SetBearerAuth(t *testing.T) {
	p, err := NewPlan(context.Background(), "GET", "http://localhost", nil)
	require.NoError(t, err)
	p.SetBearerAuth("sk-123")
	assert.Equal(t, "Bearer sk-123", p.Header.Get("Authorization"))
}

func TestPlan_Idempotent(t *testing.T) {
	for _, m := range []string{"", "GET", "get", "HEAD", "PUT", "DELETE", "OPTIONS", "TRACE"} {
		assert.True(t, (&Plan{Method: m}).Idempotent(), m)
	}
	for _, m := range []string{"POST", "PATCH", "CONNECT"} {
		assert.False(t, (&Plan{Method: m}).Idempotent(), m)
	}
}

func TestPlan_ToRequest(t *testing.T) {
	t.Run("no body", func(t *testing.T) {
		p, err := NewPlan(context.Background(), "GET", "https://api.example.com/v1/items?page=2", nil)
		require.NoError(t, err)
		p.Header.Set("X-Foo", "bar")

		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "attempt")
		r := p.ToRequest(ctx)

		assert.Same(t, ctx, r.Context())
		assert.Equal(t, "GET", r.Method)
		assert.Same(t, p.URL, r.URL)
		assert.Equal(t, "api.example.com", r.Host)
		assert.Nil(t, r.Body)
		assert.Nil(t, r.GetBody)
		assert.Equal(t, int64(0), r.ContentLength)
		assert.Equal(t, "bar", r.Header.Get("X-Foo"))

		r.Header.Set("X-Foo", "changed")
		assert.Equal(t, "bar", p.Header.Get("X-Foo"), "request header must not alias plan header")
	})
	t.Run("with body", func(t *testing.T) {
		p, err := NewPlan(context.Background(), "POST", "http://localhost/chat", `{"a":1}`)
		require.NoError(t, err)

		r := p.ToRequest(context.Background())
		require.NotNil(t, r.Body)
		assert.Equal(t, int64(7), r.ContentLength)
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(b))

		require.NotNil(t, r.GetBody)
		rc, err := r.GetBody()
		require.NoError(t, err)
		b, err = io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(b))
	})
	t.Run("nil header", func(t *testing.T) {
		u, err := url.Parse("http://localhost")
		require.NoError(t, err)
		p := &Plan{Method: "GET", URL: u}
		r := p.ToRequest(context.Background())
		assert.NotNil(t, r.Header)
	})
}

func TestValidMethod(t *testing.T) {
	assert.True(t, validMethod("GET"))
	assert.True(t, validMethod("M-SEARCH"))
	assert.False(t, validMethod("GET "))
	assert.False(t, validMethod("G\tET"))
	assert.False(t, validMethod(strings.Repeat("é", 2)))
}
