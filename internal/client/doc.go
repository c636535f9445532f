// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the pimsync desktop tool.
//
// It dispatches the sync, status, revoke and version commands to the
// protocol driver and the admin API client.
package client
