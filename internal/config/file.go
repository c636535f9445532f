package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors [StructuredConfig] with [Duration] fields so durations
// can be written as strings ("30s") in both JSON and TOML.
type fileConfig struct {
	App struct {
		DeviceName    string   `json:"device_name" toml:"device_name"`
		PromptMode    string   `json:"prompt_mode" toml:"prompt_mode"`
		PromptTimeout Duration `json:"prompt_timeout" toml:"prompt_timeout"`
	} `json:"app" toml:"app"`

	Log struct {
		Level string `json:"level" toml:"level"`
		File  string `json:"file" toml:"file"`
	} `json:"log" toml:"log"`

	Server struct {
		Address       string   `json:"address" toml:"address"`
		SerialDevice  string   `json:"serial_device" toml:"serial_device"`
		AdminAddress  string   `json:"admin_address" toml:"admin_address"`
		ReadTimeout   Duration `json:"read_timeout" toml:"read_timeout"`
		IdleTimeout   Duration `json:"idle_timeout" toml:"idle_timeout"`
		MaxFrameBytes int      `json:"max_frame_bytes" toml:"max_frame_bytes"`
	} `json:"server" toml:"server"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" toml:"dsn"`
		} `json:"db" toml:"db"`
	} `json:"storage" toml:"storage"`

	Peer struct {
		Address        string   `json:"address" toml:"address"`
		ClientID       string   `json:"client_id" toml:"client_id"`
		Credential     string   `json:"credential" toml:"credential"`
		AdminURL       string   `json:"admin_url" toml:"admin_url"`
		RequestTimeout Duration `json:"request_timeout" toml:"request_timeout"`
		OutputDir      string   `json:"output_dir" toml:"output_dir"`
	} `json:"peer" toml:"peer"`
}

// parseFile reads a JSON (.json) or TOML (.toml) config file.
func parseFile(path string) (*StructuredConfig, error) {
	var fc fileConfig

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error reading a json file: %w", err)
		}
		defer f.Close()

		if err := json.NewDecoder(f).Decode(&fc); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("error decoding toml configs: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFile, path)
	}

	return &StructuredConfig{
		App: App{
			DeviceName:    fc.App.DeviceName,
			PromptMode:    fc.App.PromptMode,
			PromptTimeout: time.Duration(fc.App.PromptTimeout),
		},
		Log: Log{
			Level: fc.Log.Level,
			File:  fc.Log.File,
		},
		Server: Server{
			Address:       fc.Server.Address,
			SerialDevice:  fc.Server.SerialDevice,
			AdminAddress:  fc.Server.AdminAddress,
			ReadTimeout:   time.Duration(fc.Server.ReadTimeout),
			IdleTimeout:   time.Duration(fc.Server.IdleTimeout),
			MaxFrameBytes: fc.Server.MaxFrameBytes,
		},
		Storage: Storage{
			DB: DB{DSN: fc.Storage.DB.DSN},
		},
		Peer: Peer{
			Address:        fc.Peer.Address,
			ClientID:       fc.Peer.ClientID,
			Credential:     fc.Peer.Credential,
			AdminURL:       fc.Peer.AdminURL,
			RequestTimeout: time.Duration(fc.Peer.RequestTimeout),
			OutputDir:      fc.Peer.OutputDir,
		},
	}, nil
}

// Duration is a wrapper around time.Duration that unmarshals from strings
// like "1h" or "30s" in JSON and TOML, and from nanosecond numbers in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		return d.UnmarshalText([]byte(value))
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder.
func (d *Duration) UnmarshalText(text []byte) error {
	tmp, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
