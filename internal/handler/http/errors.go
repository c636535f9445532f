// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the admin token check. Callers can match against them
// with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned when a guarded request carries
	// no "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the header is not of the
	// form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrEmptyToken is returned when the bearer scheme is present but the
	// token is blank.
	ErrEmptyToken = errors.New("empty token in `Authorization` header")

	// ErrWrongToken is returned when the token does not match the admin
	// token.
	ErrWrongToken = errors.New("admin token mismatch")
)
