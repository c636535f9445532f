// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	errNoServersAreCreated = errors.New("no servers are created")

	// ErrFraming reports a line the bridge cannot interpret: an unknown
	// verb, a malformed CALL, bad base64 or a line over the size limit.
	ErrFraming = errors.New("framing error")

	// ErrTransportLoss reports a connection that failed or timed out while a
	// session was running.
	ErrTransportLoss = errors.New("transport lost")

	// ErrSessionBusy is returned when the session slot stayed taken for the
	// whole wait.
	ErrSessionBusy = errors.New("another session is active")
)
