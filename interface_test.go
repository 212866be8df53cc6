// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apiclient

import (
	"net/http"
	"testing"

	"github.com/gogama/apiclient/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestInterfaces(t *testing.T) {
	assert.Implements(t, (*HTTPDoer)(nil), &http.Client{})
	assert.Implements(t, (*IdleCloser)(nil), &http.Client{})
	assert.Implements(t, (*Doer)(nil), &Session{})
	assert.Implements(t, (*IdleCloser)(nil), &Session{})
	assert.Implements(t, (*API)(nil), &Client{})
	assert.Implements(t, (*IdleCloser)(nil), &Client{})
}

type mockDoer struct {
	mock.Mock
}

func newMockDoer(t *testing.T) *mockDoer {
	m := &mockDoer{}
	m.Test(t)
	return m
}

func (m *mockDoer) Do(p *request.Plan) (*request.Execution, error) {
	args := m.Called(p)
	e, _ := args.Get(0).(*request.Execution)
	return e, args.Error(1)
}

type mockDoerWithCloseIdleConnections struct {
	mockDoer
}

func newMockDoerWithCloseIdleConnections(t *testing.T) *mockDoerWithCloseIdleConnections {
	m := &mockDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}
