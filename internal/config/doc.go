// Package config provides configuration loading, merging, and validation
// facilities for the sync daemon and the desktop tool.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. JSON or TOML config file (path taken from CONFIG or -c)
//  2. Environment variables
//  3. Command-line flags
//
// Defaults are applied to whatever is still unset after merging. The main
// entry points are [GetStructuredConfig] for the daemon and
// [GetClientConfig] for the desktop tool.
package config
