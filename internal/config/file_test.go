package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_JSON(t *testing.T) {
	path := writeTempConfig(t, "pimsync.json", `{
		"app": {"device_name": "pocket", "prompt_mode": "allow"},
		"server": {"address": ":4300", "read_timeout": "15s", "idle_timeout": 60000000000},
		"storage": {"db": {"dsn": "/data/pim.db"}},
		"peer": {"client_id": "desk"}
	}`)

	cfg, err := parseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "pocket", cfg.App.DeviceName)
	assert.Equal(t, PromptAllow, cfg.App.PromptMode)
	assert.Equal(t, ":4300", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, "/data/pim.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "desk", cfg.Peer.ClientID)
}

func TestParseFile_TOML(t *testing.T) {
	path := writeTempConfig(t, "pimsync.toml", `
[log]
level = "error"

[server]
serial_device = "/dev/ttyGS0"
read_timeout = "3s"

[storage.db]
dsn = "postgres://localhost/pim"

[peer]
request_timeout = "20s"
`)

	cfg, err := parseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/dev/ttyGS0", cfg.Server.SerialDevice)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres://localhost/pim", cfg.Storage.DB.DSN)
	assert.Equal(t, 20*time.Second, cfg.Peer.RequestTimeout)
}

func TestParseFile_Unsupported(t *testing.T) {
	path := writeTempConfig(t, "pimsync.yaml", "server: {}")

	_, err := parseFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedConfigFile)
}

func TestParseFile_BadDuration(t *testing.T) {
	path := writeTempConfig(t, "pimsync.json", `{"server": {"read_timeout": "later"}}`)

	_, err := parseFile(path)
	assert.Error(t, err)
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(90 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}
