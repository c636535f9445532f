package peer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

// Driver runs a whole sync session against one device.
type Driver struct {
	cfg   config.Peer
	store *DirStore
	now   func() time.Time

	logger *logger.Logger
}

func NewDriver(cfg config.Peer, store *DirStore, logger *logger.Logger) *Driver {
	return &Driver{cfg: cfg, store: store, now: time.Now, logger: logger}
}

// Sync connects to the device, syncs every dataset in order and quits. A
// dataset the device rejects or reports errors for keeps its old anchor and
// its outbox; the remaining datasets still run.
func (d *Driver) Sync(ctx context.Context, datasets []models.Dataset) ([]*DatasetResult, error) {
	conn, err := Dial(ctx, d.cfg.Address, d.cfg.RequestTimeout, d.logger)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return d.run(ctx, conn, datasets)
}

func (d *Driver) run(ctx context.Context, conn *Conn, datasets []models.Dataset) ([]*DatasetResult, error) {
	if conn.Version().Major != models.ProtocolVersion.Major {
		return nil, fmt.Errorf("%w: device speaks %s", ErrVersionMismatch, conn.Version())
	}
	if err := conn.Login(ctx, d.cfg.ClientID, d.cfg.Credential); err != nil {
		return nil, err
	}

	device, err := conn.Handshake(ctx, d.cfg.ClientID)
	if err != nil {
		return nil, err
	}
	d.logger.Info().Str("device", device.Name).Str("version", device.Version.String()).Msg("connected to device")

	var (
		results []*DatasetResult
		errs    []error
	)
	for _, dataset := range datasets {
		result, err := d.syncDataset(ctx, conn, dataset)
		if errors.Is(err, ErrDatasetRejected) {
			d.logger.Warn().Err(err).Str("dataset", dataset.String()).Msg("dataset skipped")
			errs = append(errs, err)
			continue
		}
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	if err := conn.Quit(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("quit")
	}
	return results, errors.Join(errs...)
}

func (d *Driver) syncDataset(ctx context.Context, conn *Conn, dataset models.Dataset) (*DatasetResult, error) {
	last, err := d.store.Anchor(dataset)
	if err != nil {
		return nil, err
	}
	pending, err := d.store.Outbox(dataset)
	if err != nil {
		return nil, err
	}

	req := DatasetRequest{
		Dataset:  dataset,
		LastSync: last,
		// anchors have second precision
		NextSync: d.now().UTC().Truncate(time.Second),
	}
	for _, p := range pending {
		req.Changes = append(req.Changes, p.Change)
	}

	result, err := conn.SyncDataset(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		d.logger.Warn().Int("errors", result.Errors).Str("dataset", dataset.String()).
			Msg("device reported errors, dataset not committed")
		return result, nil
	}

	return result, d.apply(dataset, result, pending)
}

// apply stores the pulled and pushed changes. On a slow sync the device
// sends every record it kept, so other records are dropped from the desktop
// copy.
func (d *Driver) apply(dataset models.Dataset, result *DatasetResult, pending []Pending) error {
	seen := make(map[string]bool)
	for _, wire := range append(append([]string(nil), result.Created...), result.Replaced...) {
		id, err := d.store.Put(dataset, wire)
		if err != nil {
			d.logger.Warn().Err(err).Str("dataset", dataset.String()).Msg("skipping unreadable record")
			continue
		}
		seen[id] = true
	}
	for _, id := range result.Removed {
		if err := d.store.Delete(dataset, id); err != nil {
			return err
		}
	}

	// pushed records are not echoed back
	for _, p := range pending {
		switch p.Change.Op {
		case OpCreate:
			if local, ok := result.Mapped[p.Change.ID]; ok {
				if err := d.store.PutAs(dataset, local, p.Change.Record); err != nil {
					return err
				}
				seen[local] = true
			}
		case OpReplace:
			if err := d.store.PutAs(dataset, p.Change.ID, p.Change.Record); err != nil {
				return err
			}
			seen[p.Change.ID] = true
		case OpRemove:
			if err := d.store.Delete(dataset, p.Change.ID); err != nil {
				return err
			}
		}
	}

	if result.SlowSync {
		ids, err := d.store.Records(dataset)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !seen[id] {
				if err := d.store.Delete(dataset, id); err != nil {
					return err
				}
			}
		}
	}

	if err := d.store.Done(pending); err != nil {
		return err
	}
	return d.store.SetAnchor(dataset, result.NextSync)
}
