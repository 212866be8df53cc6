// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines how long each individual attempt of an API
// call may take before it is abandoned (and possibly retried).
package timeout
