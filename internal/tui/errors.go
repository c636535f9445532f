// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "errors"

var (
	// ErrPromptCancelled is returned when the dialog closes without an answer.
	ErrPromptCancelled = errors.New("prompt closed without an answer")
)
