// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-pim-sync/internal/adapter"
	"github.com/MKhiriev/go-pim-sync/internal/app"
)

var (
	ErrAdminTokenRequired       = errors.New("the device requires an admin token, set PEER_ADMIN_TOKEN")
	ErrAdminTokenRejected       = errors.New("the device rejected the admin token")
	ErrDeviceStorageUnavailable = errors.New("device storage is busy, retry after the running sync")
)

// mapAdminError translates an admin API transport error into a message the
// user can act on.
func mapAdminError(err error) error {
	if err == nil {
		return nil
	}

	msg := extractBody(err)

	switch {
	case errors.Is(err, adapter.ErrUnauthorized):
		switch msg {
		case app.MsgAdminTokenRequired:
			return ErrAdminTokenRequired
		case app.MsgInvalidAdminToken:
			return ErrAdminTokenRejected
		}

	case errors.Is(err, adapter.ErrServiceUnavailable):
		if msg == app.MsgStorageUnavailable {
			return ErrDeviceStorageUnavailable
		}
	}

	return err
}

// extractBody extracts the body from a message of the form "bad request: <body>"
func extractBody(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx != -1 {
		return msg[idx+2:]
	}
	return msg
}
