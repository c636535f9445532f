// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the desktop side client of the device admin HTTP API.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] (e.g. [ErrUnauthorized]
// for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-pim-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// AdminClient talks to the admin API of a running sync daemon.
type AdminClient interface {
	// Version returns the daemon's build metadata and protocol version.
	Version(ctx context.Context) (models.VersionInfo, error)

	// Status returns the session the daemon is serving, if any.
	Status(ctx context.Context) (models.SessionStatus, error)

	// RevokePeers makes the daemon forget every remembered desktop
	// credential. Requires the admin token when the daemon has one.
	RevokePeers(ctx context.Context) error
}
