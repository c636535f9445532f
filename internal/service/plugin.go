package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-pim-sync/internal/codec"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/store"
	"github.com/MKhiriev/go-pim-sync/models"
)

// datasetPlugin serves one dataset out of the relational store. Every PIM
// kind shares the implementation; the dataset selects the rows and the
// record kind.
type datasetPlugin struct {
	dataset  models.Dataset
	storages *store.Storages
	ids      IDGenerator

	mu      sync.Mutex
	txn     *models.Transaction
	tx      *sql.Tx
	records store.RecordRepository
	codec   *codec.Codec

	// applied holds the local ids written from peer changes in the open
	// transaction. A slow sync does not send them back.
	applied map[string]struct{}

	logger *logger.Logger
}

var _ DatasetPlugin = (*datasetPlugin)(nil)

// NewDatasetPlugin returns the plugin of dataset. One plugin serves one
// session at a time.
func NewDatasetPlugin(dataset models.Dataset, storages *store.Storages, ids IDGenerator, logger *logger.Logger) DatasetPlugin {
	return &datasetPlugin{
		dataset:  dataset,
		storages: storages,
		ids:      ids,
		logger:   logger,
	}
}

func (p *datasetPlugin) Dataset() models.Dataset {
	return p.dataset
}

func (p *datasetPlugin) BeginTransaction(ctx context.Context, txn *models.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.txn.Open() {
		return ErrTransactionOpen
	}
	if txn == nil || txn.Dataset != p.dataset {
		return fmt.Errorf("%w: transaction for another dataset", ErrApplyFailure)
	}

	tx, err := p.storages.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrApplyFailure, err)
	}

	p.txn = txn
	p.tx = tx
	p.records = p.storages.Records(tx, p.dataset)
	p.codec = codec.New(store.NewCategoryRepository(p.storages.DB, tx))
	p.applied = make(map[string]struct{})

	logger.FromContext(ctx).Debug().
		Str("dataset", p.dataset.String()).
		Time("stamp", txn.Timestamp).
		Msg("dataset transaction begun")
	return nil
}

func (p *datasetPlugin) CreateServerRecord(ctx context.Context, wire []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.txn.Open() {
		return ErrNoTransaction
	}

	decoded, err := p.decode(ctx, wire)
	if decoded == nil {
		return err
	}

	if decoded.Identifier.Local {
		return p.upsert(ctx, decoded.Identifier.Value, decoded)
	}

	peerID := decoded.Identifier.Value
	if localID, ok := p.txn.IDs.Local(peerID); ok {
		return p.upsert(ctx, localID, decoded)
	}

	localID := p.ids.Generate()
	if err := p.add(ctx, localID, decoded); err != nil {
		return err
	}
	p.txn.IDs.Add(peerID, localID)
	return nil
}

func (p *datasetPlugin) ReplaceServerRecord(ctx context.Context, wire []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.txn.Open() {
		return ErrNoTransaction
	}

	decoded, err := p.decode(ctx, wire)
	if decoded == nil {
		return err
	}

	if decoded.Identifier.Local {
		return p.upsert(ctx, decoded.Identifier.Value, decoded)
	}

	peerID := decoded.Identifier.Value
	if localID, ok := p.txn.IDs.Local(peerID); ok {
		return p.upsert(ctx, localID, decoded)
	}

	// Never mapped: the peer replaces a record the device has not seen.
	localID := p.ids.Generate()
	if err := p.add(ctx, localID, decoded); err != nil {
		return err
	}
	p.txn.IDs.Add(peerID, localID)
	return nil
}

func (p *datasetPlugin) RemoveServerRecord(ctx context.Context, identifier string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.txn.Open() {
		return ErrNoTransaction
	}
	log := logger.FromContext(ctx)

	id := identifier
	if localID, ok := p.txn.IDs.Local(identifier); ok {
		id = localID
	}

	err := p.records.Remove(ctx, id, p.txn.Timestamp)
	if errors.Is(err, store.ErrRecordNotFound) {
		log.Info().Str("dataset", p.dataset.String()).Str("id", identifier).Msg("remove of unknown record ignored")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: removing %s: %w", ErrApplyFailure, id, err)
	}

	p.applied[id] = struct{}{}
	return nil
}

func (p *datasetPlugin) FetchChangesSince(ctx context.Context, since *time.Time, sink ChangeSink) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.txn.Open() {
		return ErrNoTransaction
	}
	until := p.txn.Timestamp

	if since == nil {
		ids, err := p.records.All(ctx)
		if err != nil {
			return fmt.Errorf("%w: listing records: %w", ErrApplyFailure, err)
		}
		for _, id := range ids {
			if _, echo := p.applied[id]; echo {
				continue
			}
			if err := p.emit(ctx, id, sink.Created); err != nil {
				return err
			}
		}
		return nil
	}

	created, err := p.records.Added(ctx, *since, until)
	if err != nil {
		return fmt.Errorf("%w: listing created records: %w", ErrApplyFailure, err)
	}
	removed, err := p.records.Removed(ctx, *since, until)
	if err != nil {
		return fmt.Errorf("%w: listing removed records: %w", ErrApplyFailure, err)
	}
	modified, err := p.records.Modified(ctx, *since, until)
	if err != nil {
		return fmt.Errorf("%w: listing modified records: %w", ErrApplyFailure, err)
	}

	for _, id := range created {
		if err := p.emit(ctx, id, sink.Created); err != nil {
			return err
		}
	}
	for _, id := range removed {
		if err := sink.Removed(ctx, id); err != nil {
			return err
		}
	}
	for _, id := range modified {
		if err := p.emit(ctx, id, sink.Replaced); err != nil {
			return err
		}
	}
	return nil
}

// CommitTransaction commits the record changes, then materializes the
// categories that were unknown while decoding and rewrites the placeholders
// in a second storage transaction. The second step is retried on retryable
// storage errors; its failure leaves the committed records in place and is
// reported as ErrCategoriesFailed.
func (p *datasetPlugin) CommitTransaction(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.txn.Open() {
		return ErrNoTransaction
	}
	log := logger.FromContext(ctx)
	txn := p.txn

	if err := p.tx.Commit(); err != nil {
		txn.State = models.TxAborted
		p.reset()
		return fmt.Errorf("%w: %w: %w", ErrApplyFailure, store.ErrCommitingTransaction, err)
	}
	txn.State = models.TxCommitted
	p.reset()

	log.Info().
		Str("dataset", p.dataset.String()).
		Int("mapped", txn.IDs.Len()).
		Int("unresolved_categories", txn.Unresolved.Len()).
		Msg("dataset transaction committed")

	labels := txn.Unresolved.Labels()
	if len(labels) == 0 {
		return nil
	}

	err := p.storages.DB.WithRetry(ctx, func(ctx context.Context) error {
		return p.storages.DB.InTx(ctx, func(tx *sql.Tx) error {
			categories := store.NewCategoryRepository(p.storages.DB, tx)
			records := p.storages.Records(tx, p.dataset)

			for _, label := range labels {
				id, err := categories.Create(ctx, label)
				if err != nil {
					return err
				}
				if _, err := records.ReplaceCategory(ctx, label, id); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		log.Err(err).Strs("labels", labels).Msg("materializing categories failed")
		return fmt.Errorf("%w: %w", ErrCategoriesFailed, err)
	}
	return nil
}

func (p *datasetPlugin) AbortTransaction(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.txn.Open() {
		return nil
	}
	txn := p.txn
	txn.State = models.TxAborted

	err := p.tx.Rollback()
	p.reset()

	logger.FromContext(ctx).Info().Str("dataset", p.dataset.String()).Msg("dataset transaction aborted")
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rolling back %s: %w", p.dataset, err)
	}
	return nil
}

func (p *datasetPlugin) reset() {
	p.txn = nil
	p.tx = nil
	p.records = nil
	p.codec = nil
	p.applied = nil
}

// decode returns nil and a nil error for a record that is skipped.
func (p *datasetPlugin) decode(ctx context.Context, wire []byte) (*codec.Decoded, error) {
	decoded, err := p.codec.Decode(ctx, p.dataset.Kind(), wire, p.txn.Unresolved)
	switch {
	case err == nil:
		return decoded, nil
	case errors.Is(err, codec.ErrRecordParse):
		logger.FromContext(ctx).Warn().Err(err).Str("dataset", p.dataset.String()).Msg("skipping unparsable record")
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %w", ErrApplyFailure, err)
	}
}

func (p *datasetPlugin) add(ctx context.Context, id string, decoded *codec.Decoded) error {
	record := decoded.Record
	record.ID = id
	record.PeerID = ""

	if err := p.records.Add(ctx, record, p.txn.Timestamp); err != nil {
		return fmt.Errorf("%w: adding %s: %w", ErrApplyFailure, id, err)
	}
	p.applied[id] = struct{}{}
	return nil
}

// upsert replaces the record stored under id, or adds it when the device
// does not hold it.
func (p *datasetPlugin) upsert(ctx context.Context, id string, decoded *codec.Decoded) error {
	existing, err := p.records.Get(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return p.add(ctx, id, decoded)
	}
	if err != nil {
		return fmt.Errorf("%w: loading %s: %w", ErrApplyFailure, id, err)
	}

	decoded.Merge(&existing)
	record := decoded.Record
	record.ID = id
	record.PeerID = ""

	if existing.Appointment.IsRecurring() {
		if err := p.records.RestoreExceptions(ctx, id, p.txn.Timestamp); err != nil {
			return fmt.Errorf("%w: restoring exceptions of %s: %w", ErrApplyFailure, id, err)
		}
	}

	if err := p.records.Update(ctx, record, p.txn.Timestamp); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", ErrApplyFailure, id, err)
	}
	p.applied[id] = struct{}{}
	return nil
}

func (p *datasetPlugin) emit(ctx context.Context, id string, send func(context.Context, []byte) error) error {
	record, err := p.records.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: loading %s: %w", ErrApplyFailure, id, err)
	}
	wire, err := p.codec.Encode(ctx, record)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrApplyFailure, id, err)
	}
	return send(ctx, wire)
}
