// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBodyBytes(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		b, err := BodyBytes(nil)
		assert.Nil(t, b)
		assert.NoError(t, err)
		b, err = BodyBytes("foo")
		assert.Equal(t, []byte("foo"), b)
		assert.NoError(t, err)
		b, err = BodyBytes([]byte("bar"))
		assert.Equal(t, []byte("bar"), b)
		assert.NoError(t, err)
		b, err = BodyBytes(strings.NewReader("baz"))
		assert.Equal(t, []byte("baz"), b)
		assert.NoError(t, err)
		b, err = BodyBytes(io.NopCloser(bytes.NewReader([]byte("qux"))))
		assert.Equal(t, []byte("qux"), b)
		assert.NoError(t, err)
	})
	t.Run("bad type", func(t *testing.T) {
		b, err := BodyBytes(10)
		assert.Nil(t, b)
		assert.EqualError(t, err, badBodyTypeMsg)
	})
	t.Run("read error", func(t *testing.T) {
		m := &mockReadCloser{}
		m.On("Read", mock.Anything).Return(0, errors.New("read failed")).Once()
		b, err := BodyBytes(m)
		assert.Nil(t, b)
		assert.EqualError(t, err, "read failed")
		m.AssertExpectations(t)
	})
	t.Run("close error", func(t *testing.T) {
		m := &mockReadCloser{}
		m.On("Read", mock.Anything).Return(0, io.EOF).Once()
		m.On("Close").Return(errors.New("close failed")).Once()
		b, err := BodyBytes(m)
		assert.Nil(t, b)
		assert.EqualError(t, err, "close failed")
		m.AssertExpectations(t)
	})
	t.Run("closes reader", func(t *testing.T) {
		m := &mockReadCloser{}
		m.On("Read", mock.Anything).Return(0, io.EOF).Once()
		m.On("Close").Return(nil).Once()
		b, err := BodyBytes(m)
		assert.Empty(t, b)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
}

type mockReadCloser struct {
	mock.Mock
}

func (m *mockReadCloser) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockReadCloser) Close() error {
	args := m.Called()
	return args.Error(0)
}
