package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func builderWithArgs(args ...string) *configBuilder {
	b := newConfigBuilder()
	b.flagSet = flag.NewFlagSet("test", flag.ContinueOnError)
	b.args = args
	return b
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
	assert.Nil(t, b.fileCfg)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilderAppliesDefaults verifies that building with no
// sources yields a valid default configuration.
func TestBuild_EmptyBuilderAppliesDefaults(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)

	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, DefaultDSN, cfg.Storage.DB.DSN)
	assert.Equal(t, PromptDeny, cfg.App.PromptMode)
	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultIdleTimeout, cfg.Server.IdleTimeout)
	assert.Equal(t, DefaultMaxFrameBytes, cfg.Server.MaxFrameBytes)
	assert.Equal(t, DefaultDeviceName, cfg.App.DeviceName)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_LaterSourcesOverride verifies that a later source wins over an
// earlier one and that the file is always the lowest priority.
func TestBuild_LaterSourcesOverride(t *testing.T) {
	b := newConfigBuilder()
	b.fileCfg = &StructuredConfig{
		App:    App{DeviceName: "from-file"},
		Server: Server{Address: ":1000", ReadTimeout: time.Second},
	}
	b.configs = append(b.configs,
		&StructuredConfig{Server: Server{Address: ":2000"}},
		&StructuredConfig{Server: Server{Address: ":3000"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, "from-file", cfg.App.DeviceName)
	assert.Equal(t, time.Second, cfg.Server.ReadTimeout)
}

// TestBuild_SerialOnlyKeepsTCPDisabled verifies that configuring only a
// serial device does not silently enable the TCP listener.
func TestBuild_SerialOnlyKeepsTCPDisabled(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{Server: Server{SerialDevice: "/dev/ttyGS0"}})

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.Address)
	assert.Equal(t, "/dev/ttyGS0", cfg.Server.SerialDevice)
}

func TestBuild_InvalidPromptMode(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{App: App{PromptMode: "sometimes"}})

	_, err := b.build()
	assert.ErrorIs(t, err, ErrInvalidAppConfigs)
}

func TestBuild_FrameTooSmall(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{Server: Server{MaxFrameBytes: 8}})

	_, err := b.build()
	assert.ErrorIs(t, err, ErrInvalidServerConfigs)
}

// ── withFlags / withFile ──────────────────────────────────────────────────────

func TestWithFlags_AddsSource(t *testing.T) {
	b := builderWithArgs("-a", ":5000", "-d", "/tmp/pim.db")
	b.withFlags()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, ":5000", b.configs[0].Server.Address)
	assert.Equal(t, "/tmp/pim.db", b.configs[0].Storage.DB.DSN)
}

func TestWithFlags_InvalidFlagRecordsError(t *testing.T) {
	b := builderWithArgs("-a", "nonsense")
	b.withFlags()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

func TestWithFile_NoPathIsNoop(t *testing.T) {
	b := builderWithArgs()
	b.withFlags().withFile()

	require.NoError(t, b.err)
	assert.Nil(t, b.fileCfg)
}

// TestWithFile_FlagsOverrideFile verifies the full chain: the config file
// named by -c is loaded and flags take precedence over it.
func TestWithFile_FlagsOverrideFile(t *testing.T) {
	path := writeTempConfig(t, "pimsync.toml", `
[server]
address = ":7000"
idle_timeout = "2m"

[app]
device_name = "handheld"
`)

	b := builderWithArgs("-c", path, "-a", ":7001")
	cfg, err := b.withFlags().withFile().build()
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Server.Address)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, "handheld", cfg.App.DeviceName)
}

func TestWithFile_MissingFileRecordsError(t *testing.T) {
	b := builderWithArgs("-c", filepath.Join(t.TempDir(), "absent.json"))
	b.withFlags().withFile()

	assert.Error(t, b.err)
}

// ── clientConfigFrom ──────────────────────────────────────────────────────────

func TestClientConfigFrom_RequiresTarget(t *testing.T) {
	_, err := clientConfigFrom(&StructuredConfig{})
	assert.ErrorIs(t, err, ErrInvalidPeerConfigs)
}

func TestClientConfigFrom_RequiresClientIDForSync(t *testing.T) {
	_, err := clientConfigFrom(&StructuredConfig{Peer: Peer{Address: "127.0.0.1:4245"}})
	assert.ErrorIs(t, err, ErrInvalidPeerConfigs)
}

func TestClientConfigFrom_AdminOnly(t *testing.T) {
	cfg, err := clientConfigFrom(&StructuredConfig{Peer: Peer{AdminURL: "http://127.0.0.1:8080"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultRequestTimeout, cfg.Peer.RequestTimeout)
}
