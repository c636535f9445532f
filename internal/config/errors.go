package config

import "errors"

// Validation errors returned by validate when required configuration groups
// are incomplete or invalid.
var (
	// ErrInvalidServerConfigs indicates invalid transport settings (no
	// listener configured, non-positive timeouts or frame size).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidStorageConfigs indicates an empty database DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, an unknown prompt mode).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidPeerConfigs indicates the desktop tool has neither a device
	// address nor an admin URL to talk to.
	ErrInvalidPeerConfigs = errors.New("invalid peer configuration")
	// ErrUnsupportedConfigFile is returned for config files that are neither
	// JSON nor TOML.
	ErrUnsupportedConfigFile = errors.New("unsupported config file format")
)
