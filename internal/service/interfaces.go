package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-pim-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// Decision is the outcome of a credential check.
type Decision int

const (
	Deny Decision = iota
	Allow
	PromptUser
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case PromptUser:
		return "prompt"
	default:
		return "deny"
	}
}

// Authenticator decides whether a desktop peer may open a sync session.
type Authenticator interface {
	// Authenticate classifies a credential without side effects on the
	// credential list.
	Authenticate(ctx context.Context, clientID, credential string) (Decision, error)

	// Authorize runs Authenticate and resolves PromptUser through the
	// Prompter. An accepted unknown credential is remembered. The result is
	// never PromptUser.
	Authorize(ctx context.Context, peer models.PeerInfo, credential string) (Decision, error)

	// Revoke forgets every remembered credential.
	Revoke(ctx context.Context) error

	// TrustedPeers returns the number of remembered credentials.
	TrustedPeers(ctx context.Context) (int, error)
}

// Prompter asks the device owner about an unknown peer.
type Prompter interface {
	Confirm(ctx context.Context, peer models.PeerInfo) (bool, error)
	Notify(ctx context.Context, text string)
}

// ChangeSink receives the local changes of one dataset, in the order
// created, removed, replaced.
type ChangeSink interface {
	Created(ctx context.Context, wire []byte) error
	Removed(ctx context.Context, id string) error
	Replaced(ctx context.Context, wire []byte) error
}

// DatasetPlugin applies the peer's changes to one dataset inside a
// transaction and reports the device's own changes.
type DatasetPlugin interface {
	Dataset() models.Dataset

	BeginTransaction(ctx context.Context, txn *models.Transaction) error

	CreateServerRecord(ctx context.Context, wire []byte) error
	ReplaceServerRecord(ctx context.Context, wire []byte) error
	RemoveServerRecord(ctx context.Context, identifier string) error

	// FetchChangesSince reports changes stamped inside (since, txn stamp).
	// A nil since reports every record as created.
	FetchChangesSince(ctx context.Context, since *time.Time, sink ChangeSink) error

	CommitTransaction(ctx context.Context) error
	AbortTransaction(ctx context.Context) error
}

// IDGenerator issues local record identifiers.
type IDGenerator interface {
	Generate() string
}

// AppInfoService reports build metadata of the running binary.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
	ProtocolVersion(ctx context.Context) models.Version
}
