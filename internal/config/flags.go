package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags defines every configuration flag on fs and parses args.
//
// Flags:
//
//	-a sync listener address in format [host]:port
//	-serial serial character device to serve
//	-admin admin API address in format [host]:port
//	-admin-token bearer token guarding admin API changes
//	-d database DSN
//	-c/-config JSON or TOML config file path
//	-device-name name announced in clientIdentity
//	-prompt unknown peer approval mode (terminal|allow|deny)
//	-prompt-timeout approval prompt timeout (e.g. "1m")
//	-read-timeout frame read timeout (e.g. "30s")
//	-idle-timeout authenticated idle timeout (e.g. "10m")
//	-max-frame maximum protocol line length in bytes
//	-log-level zerolog level name
//	-log-file log file path
//	-peer device address used by the desktop tool
//	-client-id desktop identity presented in USER
//	-credential secret presented in PASS
//	-admin-url device admin API base URL
//	-out directory receiving pulled records
func parseFlags(fs *flag.FlagSet, args []string) (*StructuredConfig, error) {
	var serverAddress, adminAddress, peerAddress NetAddress
	var serialDevice, dsn, configPath, deviceName, promptMode string
	var logLevel, logFile, clientID, credential, adminURL, outputDir, adminToken string
	var promptTimeout, readTimeout, idleTimeout, requestTimeout time.Duration
	var maxFrame int

	fs.Var(&serverAddress, "a", "Sync listener address [host]:port")
	fs.StringVar(&serialDevice, "serial", "", "Serial character device to serve")
	fs.Var(&adminAddress, "admin", "Admin API address [host]:port")
	fs.StringVar(&adminToken, "admin-token", "", "Admin API bearer token")
	fs.StringVar(&dsn, "d", "", "Database DSN")
	fs.StringVar(&configPath, "c", "", "JSON or TOML config file path")
	fs.StringVar(&configPath, "config", "", "JSON or TOML config file path (alias)")
	fs.StringVar(&deviceName, "device-name", "", "Device name announced to peers")
	fs.StringVar(&promptMode, "prompt", "", "Unknown peer approval mode: terminal, allow or deny")
	fs.DurationVar(&promptTimeout, "prompt-timeout", 0, "Approval prompt timeout (e.g., 1m)")
	fs.DurationVar(&readTimeout, "read-timeout", 0, "Frame read timeout (e.g., 30s)")
	fs.DurationVar(&idleTimeout, "idle-timeout", 0, "Authenticated idle timeout (e.g., 10m)")
	fs.IntVar(&maxFrame, "max-frame", 0, "Maximum protocol line length in bytes")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.StringVar(&logFile, "log-file", "", "Log file path")
	fs.Var(&peerAddress, "peer", "Device sync address [host]:port")
	fs.StringVar(&clientID, "client-id", "", "Desktop identity")
	fs.StringVar(&credential, "credential", "", "Desktop credential")
	fs.StringVar(&adminURL, "admin-url", "", "Device admin API base URL")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s)")
	fs.StringVar(&outputDir, "out", "", "Directory receiving pulled records")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			DeviceName:    deviceName,
			PromptMode:    promptMode,
			PromptTimeout: promptTimeout,
		},
		Log: Log{
			Level: logLevel,
			File:  logFile,
		},
		Server: Server{
			Address:       serverAddress.String(),
			SerialDevice:  serialDevice,
			AdminAddress:  adminAddress.String(),
			AdminToken:    adminToken,
			ReadTimeout:   readTimeout,
			IdleTimeout:   idleTimeout,
			MaxFrameBytes: maxFrame,
		},
		Storage: Storage{
			DB: DB{DSN: dsn},
		},
		Peer: Peer{
			Address:        peerAddress.String(),
			ClientID:       clientID,
			Credential:     credential,
			AdminURL:       adminURL,
			AdminToken:     adminToken,
			RequestTimeout: requestTimeout,
			OutputDir:      outputDir,
		},
		ConfigFilePath: configPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress, or the empty
// string when nothing was set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form [host]:port and populates the
// NetAddress. An empty host binds every interface.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in 1..65535")
	}

	if host != "" && host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
