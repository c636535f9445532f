package config

import (
	"fmt"
)

// ClientConfig is the top-level configuration of the desktop tool assembled
// from [StructuredConfig].
type ClientConfig struct {
	// Peer contains the device address, identity and admin URL.
	Peer Peer
	// Log contains logger settings.
	Log Log
}

// GetClientConfig builds and validates the desktop tool config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the desktop runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	b := newConfigBuilder().
		withEnv().
		withFlags().
		withFile()

	cfg, err := b.merge()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return clientConfigFrom(cfg)
}

func clientConfigFrom(cfg *StructuredConfig) (*ClientConfig, error) {
	cfg.applyDefaults()

	clientCfg := &ClientConfig{
		Peer: cfg.Peer,
		Log:  cfg.Log,
	}

	return clientCfg, clientCfg.validate()
}
