// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message names exchanged between the desktop peer ("server" role) and the
// device ("client" role).
const (
	MsgServerSyncRequest      = "serverSyncRequest"
	MsgServerIdentity         = "serverIdentity"
	MsgServerVersion          = "serverVersion"
	MsgClientIdentity         = "clientIdentity"
	MsgClientVersion          = "clientVersion"
	MsgServerSyncAnchors      = "serverSyncAnchors"
	MsgClientSyncAnchors      = "clientSyncAnchors"
	MsgRequestTwoWaySync      = "requestTwoWaySync"
	MsgRequestSlowSync        = "requestSlowSync"
	MsgCreateServerRecord     = "createServerRecord"
	MsgReplaceServerRecord    = "replaceServerRecord"
	MsgRemoveServerRecord     = "removeServerRecord"
	MsgCreateClientRecord     = "createClientRecord"
	MsgReplaceClientRecord    = "replaceClientRecord"
	MsgRemoveClientRecord     = "removeClientRecord"
	MsgMappedID               = "mappedId"
	MsgServerChangesCompleted = "serverChangesCompleted"
	MsgClientChangesCompleted = "clientChangesCompleted"
	MsgServerError            = "serverError"
	MsgClientError            = "clientError"
	MsgServerEnd              = "serverEnd"
	MsgClientEnd              = "clientEnd"
)

// MessageArity maps every message name to its fixed argument count.
var MessageArity = map[string]int{
	MsgServerSyncRequest:      1,
	MsgServerIdentity:         1,
	MsgServerVersion:          3,
	MsgClientIdentity:         1,
	MsgClientVersion:          3,
	MsgServerSyncAnchors:      2,
	MsgClientSyncAnchors:      2,
	MsgRequestTwoWaySync:      0,
	MsgRequestSlowSync:        0,
	MsgCreateServerRecord:     1,
	MsgReplaceServerRecord:    1,
	MsgRemoveServerRecord:     1,
	MsgCreateClientRecord:     1,
	MsgReplaceClientRecord:    1,
	MsgRemoveClientRecord:     1,
	MsgMappedID:               2,
	MsgServerChangesCompleted: 0,
	MsgClientChangesCompleted: 0,
	MsgServerError:            0,
	MsgClientError:            0,
	MsgServerEnd:              0,
	MsgClientEnd:              0,
}

// SyncMode is the negotiated kind of exchange for one dataset.
type SyncMode int

const (
	TwoWaySync SyncMode = iota
	SlowSync
)

func (m SyncMode) String() string {
	if m == SlowSync {
		return "slow"
	}
	return "two-way"
}

// SessionState is a state of the sync session state machine.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAuthenticating
	StateIdentityExchange
	StateAnchorExchange
	StateDatasetLoop
	StateEnd
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthenticating:
		return "authenticating"
	case StateIdentityExchange:
		return "identity-exchange"
	case StateAnchorExchange:
		return "anchor-exchange"
	case StateDatasetLoop:
		return "dataset-loop"
	case StateEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Version is a major.minor.patch protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ProtocolVersion is the version spoken by this implementation.
var ProtocolVersion = Version{Major: 1, Minor: 2, Patch: 0}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Args renders the version as the three message arguments.
func (v Version) Args() []string {
	return []string{strconv.Itoa(v.Major), strconv.Itoa(v.Minor), strconv.Itoa(v.Patch)}
}

// ParseVersionArgs parses the three numeric version arguments.
func ParseVersionArgs(args []string) (Version, error) {
	if len(args) != 3 {
		return Version{}, fmt.Errorf("version needs 3 components, got %d", len(args))
	}
	parts := make([]int, 3)
	for i, a := range args {
		n, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("bad version component %q", a)
		}
		parts[i] = n
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// AnchorLayout is the wire format of sync anchors.
const AnchorLayout = time.RFC3339

// FormatAnchor renders an anchor; nil renders as the empty string.
func FormatAnchor(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(AnchorLayout)
}

// ParseAnchor parses an anchor; the empty string means no anchor.
// Fractional seconds are dropped so a parsed anchor compares equal to its
// formatted form.
func ParseAnchor(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(AnchorLayout, s)
	if err != nil {
		return nil, fmt.Errorf("bad anchor %q: %w", s, err)
	}
	t = t.UTC().Truncate(time.Second)
	return &t, nil
}

// SessionStatus is a snapshot of the bridge's current session, reported by
// the admin API.
type SessionStatus struct {
	Active      bool      `json:"active"`
	SessionID   string    `json:"session_id,omitempty"`
	Transport   string    `json:"transport,omitempty"`
	Remote      string    `json:"remote,omitempty"`
	PeerName    string    `json:"peer_name,omitempty"`
	State       string    `json:"state"`
	Dataset     string    `json:"dataset,omitempty"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	Committed   []string  `json:"committed,omitempty"`
	TrustedPeer int       `json:"trusted_peers"`
}
