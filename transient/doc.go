// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient sorts transport errors from an API call into
// transient ones, which a retry has some chance of curing, and
// everything else. The retry package uses it to decide which network
// failures are worth another attempt.
package transient
