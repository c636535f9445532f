// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// daemon invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	switch cfg.App.PromptMode {
	case PromptTerminal, PromptAllow, PromptDeny:
	default:
		return fmt.Errorf("%w: unknown prompt mode %q", ErrInvalidAppConfigs, cfg.App.PromptMode)
	}
	if cfg.App.PromptTimeout < 0 {
		return fmt.Errorf("%w: negative prompt timeout", ErrInvalidAppConfigs)
	}

	if cfg.Server.Address == "" && cfg.Server.SerialDevice == "" {
		return fmt.Errorf("%w: no transport configured", ErrInvalidServerConfigs)
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.IdleTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidServerConfigs)
	}
	if cfg.Server.MaxFrameBytes < 64 {
		return fmt.Errorf("%w: max frame bytes too small", ErrInvalidServerConfigs)
	}

	if strings.TrimSpace(cfg.Storage.DB.DSN) == "" {
		return ErrInvalidStorageConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Peer.Address == "" && cfg.Peer.AdminURL == "" {
		return ErrInvalidPeerConfigs
	}

	if cfg.Peer.Address != "" && cfg.Peer.ClientID == "" {
		return fmt.Errorf("%w: client id is required", ErrInvalidPeerConfigs)
	}

	if cfg.Peer.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidPeerConfigs)
	}

	return nil
}
