// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the message strings the device admin API writes into
// error response bodies. The desktop tool matches on them to report a
// precise cause, so the wording is part of the API.
package app

const (
	// MsgAdminTokenRequired is returned when a guarded request carries no
	// usable bearer token.
	MsgAdminTokenRequired = "admin token required"

	// MsgInvalidAdminToken is returned when the bearer token does not match
	// the configured admin token.
	MsgInvalidAdminToken = "invalid admin token"

	// MsgRevokeFailed is returned when the trusted desktop list could not be
	// cleared.
	MsgRevokeFailed = "revoking trusted desktops failed"

	// MsgStorageUnavailable is returned when the device database rejected
	// the operation, e.g. because a sync session holds a write lock.
	MsgStorageUnavailable = "device storage unavailable"

	// MsgInternalServerError is returned for any other failure.
	MsgInternalServerError = "internal server error"
)
