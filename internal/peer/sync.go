package peer

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-pim-sync/internal/channel"
	"github.com/MKhiriev/go-pim-sync/models"
)

// ChangeOp is the kind of change pushed to the device.
type ChangeOp int

const (
	OpCreate ChangeOp = iota
	OpReplace
	OpRemove
)

// Change is one desktop change. Record holds the wire record for create and
// replace, ID the identifier for remove.
type Change struct {
	Op     ChangeOp
	Record string
	ID     string
}

func (c Change) message() channel.Message {
	switch c.Op {
	case OpReplace:
		return channel.ReplaceServerRecord(c.Record)
	case OpRemove:
		return channel.RemoveServerRecord(c.ID)
	default:
		return channel.CreateServerRecord(c.Record)
	}
}

// DatasetRequest describes one dataset sync. LastSync is the anchor stored
// after the previous successful sync, "" for none.
type DatasetRequest struct {
	Dataset  models.Dataset
	LastSync string
	NextSync time.Time
	Changes  []Change
}

// DatasetResult is what the device sent back during one dataset sync.
type DatasetResult struct {
	Dataset  models.Dataset
	SlowSync bool

	// DeviceLast is the device's stored anchor for this desktop.
	DeviceLast string
	NextSync   string

	Created  []string
	Replaced []string
	Removed  []string

	// Mapped maps pushed peer ids to the local ids the device assigned.
	Mapped map[string]string

	// Errors counts clientError replies. A dataset with errors was not
	// committed as a whole and its anchor must not be kept.
	Errors int
}

// Failed reports whether the device reported any error for the dataset.
func (r *DatasetResult) Failed() bool {
	return r.Errors > 0
}

// Identity is what the device announced about itself.
type Identity struct {
	Name    string
	Version models.Version
}

// Handshake announces name and the protocol version and returns the device
// identity. A device on another major version ends the session and
// Handshake returns ErrVersionMismatch.
func (c *Conn) Handshake(ctx context.Context, name string) (Identity, error) {
	var id Identity

	if err := c.call(channel.ServerIdentity(name)); err != nil {
		return id, err
	}
	msg, err := c.expect(ctx, models.MsgClientIdentity)
	if err != nil {
		return id, err
	}
	id.Name = msg.Arg(0)

	if err := c.call(channel.ServerVersion(models.ProtocolVersion)); err != nil {
		return id, err
	}
	msg, err = c.nextCall(ctx)
	if err != nil {
		return id, err
	}
	switch msg.Name {
	case models.MsgClientVersion:
		if id.Version, err = models.ParseVersionArgs(msg.Args); err != nil {
			return id, fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		return id, nil
	case models.MsgClientError:
		return id, ErrVersionMismatch
	default:
		return id, fmt.Errorf("%w: %s during version exchange", ErrProtocol, msg.Name)
	}
}

// SyncDataset runs one dataset through anchor exchange, change exchange and
// commit. Device errors inside the dataset are counted in the result; the
// returned error means the dataset could not be run at all.
func (c *Conn) SyncDataset(ctx context.Context, req DatasetRequest) (*DatasetResult, error) {
	next := req.NextSync.UTC()
	result := &DatasetResult{
		Dataset:  req.Dataset,
		NextSync: models.FormatAnchor(&next),
		Mapped:   make(map[string]string),
	}
	log := c.logger.With().Str("dataset", req.Dataset.String()).Logger()

	if err := c.call(channel.ServerSyncRequest(req.Dataset)); err != nil {
		return nil, err
	}
	if err := c.call(channel.ServerSyncAnchors(req.LastSync, result.NextSync)); err != nil {
		return nil, err
	}

	if err := c.awaitMode(ctx, result); err != nil {
		return nil, err
	}
	log.Debug().Bool("slow", result.SlowSync).Str("device_last", result.DeviceLast).Msg("sync mode chosen")

	for _, change := range req.Changes {
		if err := c.call(change.message()); err != nil {
			return nil, err
		}
	}
	if err := c.call(channel.ServerChangesCompleted()); err != nil {
		return nil, err
	}
	if err := c.collect(ctx, result, models.MsgClientChangesCompleted); err != nil {
		return nil, err
	}

	if err := c.call(channel.ServerEnd()); err != nil {
		return nil, err
	}
	if err := c.collect(ctx, result, models.MsgClientEnd); err != nil {
		return nil, err
	}

	log.Info().
		Int("created", len(result.Created)).
		Int("replaced", len(result.Replaced)).
		Int("removed", len(result.Removed)).
		Int("mapped", len(result.Mapped)).
		Int("errors", result.Errors).
		Msg("dataset synced")
	return result, nil
}

func (c *Conn) awaitMode(ctx context.Context, result *DatasetResult) error {
	for {
		msg, err := c.nextCall(ctx)
		if err != nil {
			return err
		}
		switch msg.Name {
		case models.MsgClientSyncAnchors:
			result.DeviceLast = msg.Arg(0)
		case models.MsgRequestTwoWaySync:
			return nil
		case models.MsgRequestSlowSync:
			result.SlowSync = true
			return nil
		case models.MsgClientError:
			return fmt.Errorf("%w: %s", ErrDatasetRejected, result.Dataset)
		default:
			return fmt.Errorf("%w: %s during anchor exchange", ErrProtocol, msg.Name)
		}
	}
}

// collect gathers device messages until until arrives.
func (c *Conn) collect(ctx context.Context, result *DatasetResult, until string) error {
	for {
		msg, err := c.nextCall(ctx)
		if err != nil {
			return err
		}
		switch msg.Name {
		case until:
			return nil
		case models.MsgCreateClientRecord:
			result.Created = append(result.Created, msg.Arg(0))
		case models.MsgReplaceClientRecord:
			result.Replaced = append(result.Replaced, msg.Arg(0))
		case models.MsgRemoveClientRecord:
			result.Removed = append(result.Removed, msg.Arg(0))
		case models.MsgMappedID:
			result.Mapped[msg.Arg(0)] = msg.Arg(1)
		case models.MsgClientError:
			result.Errors++
		default:
			return fmt.Errorf("%w: %s while waiting for %s", ErrProtocol, msg.Name, until)
		}
	}
}

func (c *Conn) expect(ctx context.Context, name string) (channel.Message, error) {
	msg, err := c.nextCall(ctx)
	if err != nil {
		return msg, err
	}
	if msg.Name != name {
		return msg, fmt.Errorf("%w: got %s, want %s", ErrProtocol, msg.Name, name)
	}
	return msg, nil
}
