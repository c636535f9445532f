// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container. It is populated
// by merging a config file, environment variables and command-line flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
//   - json/toml: key names inside a config file.
type StructuredConfig struct {
	// App holds device identity and authentication prompt settings.
	App App `envPrefix:"APP_" json:"app" toml:"app"`

	// Log holds logger settings.
	Log Log `envPrefix:"LOG_" json:"log" toml:"log"`

	// Server holds transport listener, admin API and timeout settings.
	Server Server `envPrefix:"SERVER_" json:"server" toml:"server"`

	// Storage holds the PIM database settings.
	Storage Storage `envPrefix:"STORAGE_" json:"storage" toml:"storage"`

	// Peer holds settings used by the desktop tool when it connects to a
	// device.
	Peer Peer `envPrefix:"PEER_" json:"peer" toml:"peer"`

	// ConfigFilePath is the optional path to a JSON or TOML configuration
	// file. Populated via the CONFIG environment variable or the -c flag.
	ConfigFilePath string `env:"CONFIG" json:"-" toml:"-"`
}

// App holds application-level configuration.
type App struct {
	// DeviceName is sent to peers in clientIdentity.
	// Env: APP_DEVICE_NAME
	DeviceName string `env:"DEVICE_NAME" json:"device_name" toml:"device_name"`

	// PromptMode selects how unknown peers are approved: "terminal" asks on
	// the controlling terminal, "allow" and "deny" answer automatically.
	// Env: APP_PROMPT_MODE
	PromptMode string `env:"PROMPT_MODE" json:"prompt_mode" toml:"prompt_mode"`

	// PromptTimeout bounds how long an approval prompt waits for the user.
	// Env: APP_PROMPT_TIMEOUT
	PromptTimeout time.Duration `env:"PROMPT_TIMEOUT" json:"prompt_timeout" toml:"prompt_timeout"`
}

// Prompt modes accepted by [App.PromptMode].
const (
	PromptTerminal = "terminal"
	PromptAllow    = "allow"
	PromptDeny     = "deny"
)

// Log holds logger settings.
type Log struct {
	// Level is a zerolog level name.
	// Env: LOG_LEVEL
	Level string `env:"LEVEL" json:"level" toml:"level"`

	// File, when set, receives log output instead of stdout.
	// Env: LOG_FILE
	File string `env:"FILE" json:"file" toml:"file"`
}

// Server holds transport settings of the daemon.
type Server struct {
	// Address is the TCP address the sync listener binds ("host:port").
	// Env: SERVER_ADDRESS
	Address string `env:"ADDRESS" json:"address" toml:"address"`

	// SerialDevice is an optional character device (e.g. /dev/ttyGS0)
	// served in addition to TCP.
	// Env: SERVER_SERIAL_DEVICE
	SerialDevice string `env:"SERIAL_DEVICE" json:"serial_device" toml:"serial_device"`

	// AdminAddress enables the admin HTTP API when non-empty.
	// Env: SERVER_ADMIN_ADDRESS
	AdminAddress string `env:"ADMIN_ADDRESS" json:"admin_address" toml:"admin_address"`

	// AdminToken, when set, is required as a bearer token by admin API
	// calls that change state.
	// Env: SERVER_ADMIN_TOKEN
	AdminToken string `env:"ADMIN_TOKEN" json:"admin_token" toml:"admin_token"`

	// ReadTimeout bounds the time a started frame may take to complete and
	// the wait of an unauthenticated connection for its next frame.
	// Env: SERVER_READ_TIMEOUT
	ReadTimeout time.Duration `env:"READ_TIMEOUT" json:"read_timeout" toml:"read_timeout"`

	// IdleTimeout closes authenticated connections that stay silent.
	// Env: SERVER_IDLE_TIMEOUT
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" json:"idle_timeout" toml:"idle_timeout"`

	// MaxFrameBytes caps the length of one protocol line.
	// Env: SERVER_MAX_FRAME_BYTES
	MaxFrameBytes int `env:"MAX_FRAME_BYTES" json:"max_frame_bytes" toml:"max_frame_bytes"`
}

// Storage groups the storage backend settings.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_" json:"db" toml:"db"`
}

// DB holds connection settings for the PIM database.
type DB struct {
	// DSN is a SQLite file path/URI or a "postgres://" URL.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI" json:"dsn" toml:"dsn"`
}

// Peer holds the desktop tool's connection settings.
type Peer struct {
	// Address is the device sync address ("host:port").
	// Env: PEER_ADDRESS
	Address string `env:"ADDRESS" json:"address" toml:"address"`

	// ClientID identifies the desktop to the device.
	// Env: PEER_CLIENT_ID
	ClientID string `env:"CLIENT_ID" json:"client_id" toml:"client_id"`

	// Credential is the secret presented in PASS.
	// Env: PEER_CREDENTIAL
	Credential string `env:"CREDENTIAL" json:"credential" toml:"credential"`

	// AdminURL is the base URL of the device admin API.
	// Env: PEER_ADMIN_URL
	AdminURL string `env:"ADMIN_URL" json:"admin_url" toml:"admin_url"`

	// AdminToken is sent as a bearer token to the device admin API.
	// Env: PEER_ADMIN_TOKEN
	AdminToken string `env:"ADMIN_TOKEN" json:"admin_token" toml:"admin_token"`

	// RequestTimeout bounds admin API calls and protocol waits.
	// Env: PEER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" json:"request_timeout" toml:"request_timeout"`

	// OutputDir receives the records pulled from the device.
	// Env: PEER_OUTPUT_DIR
	OutputDir string `env:"OUTPUT_DIR" json:"output_dir" toml:"output_dir"`
}

// Default values applied by [StructuredConfig.applyDefaults].
const (
	DefaultAddress        = ":4245"
	DefaultDSN            = "pimsync.db"
	DefaultReadTimeout    = 30 * time.Second
	DefaultIdleTimeout    = 10 * time.Minute
	DefaultPromptTimeout  = time.Minute
	DefaultMaxFrameBytes  = 1 << 20
	DefaultRequestTimeout = 15 * time.Second
	DefaultDeviceName     = "pimsync-device"
	DefaultOutputDir      = "pimsync-data"
)

// GetStructuredConfig loads, merges, defaults and validates the daemon
// configuration from the config file, environment and flags.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withFile().
		build()
}

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.App.DeviceName == "" {
		cfg.App.DeviceName = DefaultDeviceName
	}
	if cfg.App.PromptMode == "" {
		cfg.App.PromptMode = PromptDeny
	}
	if cfg.App.PromptTimeout == 0 {
		cfg.App.PromptTimeout = DefaultPromptTimeout
	}
	if cfg.Server.Address == "" && cfg.Server.SerialDevice == "" {
		cfg.Server.Address = DefaultAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.MaxFrameBytes == 0 {
		cfg.Server.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if cfg.Storage.DB.DSN == "" {
		cfg.Storage.DB.DSN = DefaultDSN
	}
	if cfg.Peer.RequestTimeout == 0 {
		cfg.Peer.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Peer.OutputDir == "" {
		cfg.Peer.OutputDir = DefaultOutputDir
	}
}
