package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-pim-sync/internal/channel"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/store"
	"github.com/MKhiriev/go-pim-sync/models"
)

// PluginFactory builds the plugin serving dataset for one session.
type PluginFactory func(dataset models.Dataset) (DatasetPlugin, error)

// Orchestrator creates sync sessions. It holds what sessions share.
type Orchestrator struct {
	anchors    store.AnchorRepository
	plugins    PluginFactory
	deviceName string
	version    models.Version

	logger *logger.Logger
}

// NewOrchestrator returns an Orchestrator announcing deviceName.
func NewOrchestrator(anchors store.AnchorRepository, plugins PluginFactory, deviceName string, logger *logger.Logger) *Orchestrator {
	return &Orchestrator{
		anchors:    anchors,
		plugins:    plugins,
		deviceName: deviceName,
		version:    models.ProtocolVersion,
		logger:     logger,
	}
}

// StoragePlugins returns a PluginFactory serving every dataset in
// models.Datasets out of storages.
func StoragePlugins(storages *store.Storages, ids IDGenerator, log *logger.Logger) PluginFactory {
	return func(dataset models.Dataset) (DatasetPlugin, error) {
		if dataset.Kind() == models.KindUnknown {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, dataset)
		}
		return NewDatasetPlugin(dataset, storages, ids, log), nil
	}
}

// NewSession binds a session to bus: it consumes channel.Device and replies
// on channel.Peer. The caller must Close the session.
func (o *Orchestrator) NewSession(ctx context.Context, id string, bus *channel.Bus) *Session {
	s := &Session{
		id:           id,
		orchestrator: o,
		bus:          bus,
		plugins:      make(map[models.Dataset]DatasetPlugin),
		state:        models.StateIdle,
		startedAt:    time.Now(),
	}
	s.unsubscribe = bus.Subscribe(channel.Device, s.Handle)
	return s
}

// Session is the state machine of one authenticated connection.
type Session struct {
	id           string
	orchestrator *Orchestrator
	bus          *channel.Bus
	unsubscribe  func()

	mu        sync.Mutex
	state     models.SessionState
	peer      models.PeerInfo
	peerName  string
	peerVer   *models.Version
	startedAt time.Time
	committed []string

	plugins map[models.Dataset]DatasetPlugin

	// per dataset
	dataset models.Dataset
	plugin  DatasetPlugin
	txn     *models.Transaction
	since   *time.Time
	failed  bool
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ended reports whether the session refuses further work.
func (s *Session) Ended() bool {
	return s.State() == models.StateEnd
}

// Connected moves an idle session to Authenticating.
func (s *Session) Connected(peer models.PeerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.StateIdle {
		s.state = models.StateAuthenticating
		s.peer = peer
	}
}

// Authenticated finishes authentication. A denied peer returns the session
// to Idle.
func (s *Session) Authenticated(allowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateAuthenticating {
		return
	}
	if allowed {
		s.state = models.StateIdentityExchange
	} else {
		s.state = models.StateIdle
	}
}

// Abort rolls back the open transaction and returns the session to Idle.
// Datasets already committed stay committed.
func (s *Session) Abort(ctx context.Context, reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.FromContext(ctx).Info().Err(reason).Str("state", s.state.String()).Msg("session aborted")
	s.abortTxn(ctx)
	s.clearDataset()
	s.state = models.StateIdle
}

// Close aborts any open transaction and detaches the session from its bus.
func (s *Session) Close(ctx context.Context) {
	s.Abort(ctx, nil)
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Status reports the session for the admin API.
func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionStatus{
		Active:    true,
		SessionID: s.id,
		Transport: s.peer.Transport,
		Remote:    s.peer.Remote,
		PeerName:  s.peerIdentity(),
		State:     s.state.String(),
		Dataset:   s.dataset.String(),
		StartedAt: s.startedAt,
		Committed: append([]string(nil), s.committed...),
	}
}

// Handle processes one message addressed to the device. Protocol errors are
// answered with clientError and are not returned; the returned error means
// the reply could not be delivered.
func (s *Session) Handle(ctx context.Context, msg channel.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Debug().Str("msg", msg.Name).Str("state", s.state.String()).Msg("message received")

	if err := msg.Validate(); err != nil {
		if s.state == models.StateDatasetLoop {
			if s.failed {
				return nil
			}
			return s.fail(ctx, err)
		}
		return s.reject(ctx, err)
	}

	switch s.state {
	case models.StateIdentityExchange:
		return s.handleIdentity(ctx, msg)
	case models.StateAnchorExchange:
		return s.handleAnchors(ctx, msg)
	case models.StateDatasetLoop:
		return s.handleDataset(ctx, msg)
	default:
		return s.reject(ctx, fmt.Errorf("%w: %s in %s", ErrUnexpectedMsg, msg.Name, s.state))
	}
}

func (s *Session) handleIdentity(ctx context.Context, msg channel.Message) error {
	switch msg.Name {
	case models.MsgServerIdentity:
		s.peerName = msg.Arg(0)
		return s.send(ctx, channel.ClientIdentity(s.orchestrator.deviceName))

	case models.MsgServerVersion:
		v, err := models.ParseVersionArgs(msg.Args)
		if err != nil {
			return s.reject(ctx, err)
		}
		s.peerVer = &v
		if v.Major != s.orchestrator.version.Major {
			logger.FromContext(ctx).Warn().
				Err(fmt.Errorf("%w: peer %s, device %s", ErrVersionMismatch, v, s.orchestrator.version)).
				Msg("ending session")
			s.state = models.StateEnd
			return s.send(ctx, channel.ClientError())
		}
		return s.send(ctx, channel.ClientVersion(s.orchestrator.version))

	case models.MsgServerSyncRequest:
		dataset, err := models.ParseDataset(msg.Arg(0))
		if err != nil {
			return s.reject(ctx, err)
		}
		plugin, err := s.pluginFor(dataset)
		if err != nil {
			return s.reject(ctx, err)
		}
		s.dataset = dataset
		s.plugin = plugin
		s.state = models.StateAnchorExchange
		return nil

	case models.MsgServerError:
		return nil

	default:
		return s.reject(ctx, fmt.Errorf("%w: %s in %s", ErrUnexpectedMsg, msg.Name, s.state))
	}
}

func (s *Session) handleAnchors(ctx context.Context, msg channel.Message) error {
	log := logger.FromContext(ctx)

	switch msg.Name {
	case models.MsgServerSyncAnchors:
	case models.MsgServerError:
		s.clearDataset()
		s.state = models.StateIdentityExchange
		return nil
	default:
		s.clearDataset()
		s.state = models.StateIdentityExchange
		return s.reject(ctx, fmt.Errorf("%w: %s in %s", ErrUnexpectedMsg, msg.Name, models.StateAnchorExchange))
	}

	peerLast, err := models.ParseAnchor(msg.Arg(0))
	if err != nil {
		return s.rejectDataset(ctx, err)
	}
	next, err := models.ParseAnchor(msg.Arg(1))
	if err != nil || next == nil {
		return s.rejectDataset(ctx, fmt.Errorf("bad next anchor %q: %w", msg.Arg(1), err))
	}

	stored, err := s.orchestrator.anchors.Get(ctx, s.peerIdentity(), s.dataset)
	if err != nil {
		log.Err(err).Str("dataset", s.dataset.String()).Msg("loading sync anchor failed")
		return s.rejectDataset(ctx, err)
	}

	mode := models.TwoWaySync
	if peerLast == nil || stored == nil || !peerLast.Equal(*stored) {
		mode = models.SlowSync
	}

	if err := s.send(ctx, channel.ClientSyncAnchors(models.FormatAnchor(stored), models.FormatAnchor(next))); err != nil {
		return err
	}
	request := channel.RequestTwoWaySync()
	if mode == models.SlowSync {
		request = channel.RequestSlowSync()
	}
	if err := s.send(ctx, request); err != nil {
		return err
	}

	s.state = models.StateDatasetLoop
	s.failed = false
	s.since = nil
	if mode == models.TwoWaySync {
		s.since = stored
	}

	txn := models.NewTransaction(s.dataset, *next)
	if err := s.plugin.BeginTransaction(ctx, txn); err != nil {
		log.Err(err).Str("dataset", s.dataset.String()).Msg("beginning dataset transaction failed")
		return s.fail(ctx, err)
	}
	s.txn = txn

	log.Info().
		Str("dataset", s.dataset.String()).
		Str("mode", mode.String()).
		Str("next_anchor", models.FormatAnchor(next)).
		Msg("dataset sync started")
	return nil
}

func (s *Session) handleDataset(ctx context.Context, msg channel.Message) error {
	log := logger.FromContext(ctx)

	switch msg.Name {
	case models.MsgCreateServerRecord, models.MsgReplaceServerRecord, models.MsgRemoveServerRecord:
		if s.failed {
			return nil
		}
		var err error
		switch msg.Name {
		case models.MsgCreateServerRecord:
			err = s.plugin.CreateServerRecord(ctx, []byte(msg.Arg(0)))
		case models.MsgReplaceServerRecord:
			err = s.plugin.ReplaceServerRecord(ctx, []byte(msg.Arg(0)))
		default:
			err = s.plugin.RemoveServerRecord(ctx, msg.Arg(0))
		}
		if err != nil {
			log.Err(err).Str("msg", msg.Name).Str("dataset", s.dataset.String()).Msg("applying peer change failed")
			return s.fail(ctx, err)
		}
		return nil

	case models.MsgServerChangesCompleted:
		if s.failed {
			return s.send(ctx, channel.ClientChangesCompleted())
		}
		if err := s.plugin.FetchChangesSince(ctx, s.since, sessionSink{s}); err != nil {
			if errors.Is(err, ErrApplyFailure) || errors.Is(err, ErrNoTransaction) {
				log.Err(err).Str("dataset", s.dataset.String()).Msg("collecting local changes failed")
				return s.fail(ctx, err)
			}
			return err
		}
		for _, m := range s.txn.IDs.Mappings() {
			if err := s.send(ctx, channel.MappedID(m.PeerID, m.LocalID)); err != nil {
				return err
			}
		}
		return s.send(ctx, channel.ClientChangesCompleted())

	case models.MsgServerEnd:
		if !s.failed {
			err := s.plugin.CommitTransaction(ctx)
			switch {
			case err == nil, errors.Is(err, ErrCategoriesFailed):
				if err := s.orchestrator.anchors.Put(ctx, s.peerIdentity(), s.dataset, s.txn.Timestamp); err != nil {
					log.Err(err).Str("dataset", s.dataset.String()).Msg("storing sync anchor failed")
				}
				s.committed = append(s.committed, s.dataset.String())
			default:
				log.Err(err).Str("dataset", s.dataset.String()).Msg("committing dataset failed")
				if err := s.send(ctx, channel.ClientError()); err != nil {
					return err
				}
			}
		}
		s.clearDataset()
		s.state = models.StateIdentityExchange
		return s.send(ctx, channel.ClientEnd())

	case models.MsgServerError:
		log.Info().Str("dataset", s.dataset.String()).Msg("peer reported an error, aborting dataset")
		s.abortTxn(ctx)
		s.clearDataset()
		s.state = models.StateIdentityExchange
		return nil

	default:
		return s.fail(ctx, fmt.Errorf("%w: %s in %s", ErrUnexpectedMsg, msg.Name, s.state))
	}
}

// fail aborts the dataset transaction and ignores record messages until
// serverEnd.
func (s *Session) fail(ctx context.Context, cause error) error {
	s.abortTxn(ctx)
	s.failed = true
	return s.reject(ctx, cause)
}

// rejectDataset drops the selected dataset before any transaction began.
func (s *Session) rejectDataset(ctx context.Context, cause error) error {
	s.clearDataset()
	s.state = models.StateIdentityExchange
	return s.reject(ctx, cause)
}

func (s *Session) reject(ctx context.Context, cause error) error {
	logger.FromContext(ctx).Warn().Err(cause).Str("state", s.state.String()).Msg("answering with clientError")
	return s.send(ctx, channel.ClientError())
}

func (s *Session) abortTxn(ctx context.Context) {
	if s.plugin == nil || !s.txn.Open() {
		return
	}
	if err := s.plugin.AbortTransaction(ctx); err != nil {
		logger.FromContext(ctx).Err(err).Str("dataset", s.dataset.String()).Msg("aborting dataset transaction failed")
	}
}

func (s *Session) clearDataset() {
	s.dataset = ""
	s.plugin = nil
	s.txn = nil
	s.since = nil
	s.failed = false
}

func (s *Session) pluginFor(dataset models.Dataset) (DatasetPlugin, error) {
	if p, ok := s.plugins[dataset]; ok {
		return p, nil
	}
	p, err := s.orchestrator.plugins(dataset)
	if err != nil {
		return nil, err
	}
	s.plugins[dataset] = p
	return p, nil
}

// peerIdentity keys stored anchors: the announced peer name, or the client
// id presented at login when the peer announced none.
func (s *Session) peerIdentity() string {
	if s.peerName != "" {
		return s.peerName
	}
	return s.peer.ClientID
}

func (s *Session) send(ctx context.Context, msg channel.Message) error {
	return s.bus.Send(ctx, msg)
}

// sessionSink forwards local changes to the peer.
type sessionSink struct {
	s *Session
}

func (k sessionSink) Created(ctx context.Context, wire []byte) error {
	return k.s.send(ctx, channel.CreateClientRecord(string(wire)))
}

func (k sessionSink) Removed(ctx context.Context, id string) error {
	return k.s.send(ctx, channel.RemoveClientRecord(id))
}

func (k sessionSink) Replaced(ctx context.Context, wire []byte) error {
	return k.s.send(ctx, channel.ReplaceClientRecord(string(wire)))
}
