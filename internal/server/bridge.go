package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/MKhiriev/go-pim-sync/internal/channel"
	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/service"
	"github.com/MKhiriev/go-pim-sync/internal/validators"
	"github.com/MKhiriev/go-pim-sync/models"
)

// Transport names reported in session status and logs.
const (
	TransportTCP    = "tcp"
	TransportSerial = "serial"
)

// Bridge runs sync sessions over line framed connections. At most one
// session runs at a time.
type Bridge struct {
	auth         service.Authenticator
	orchestrator *service.Orchestrator
	ids          service.IDGenerator
	validator    validators.Validator
	cfg          config.Server
	version      models.Version

	slot *semaphore.Weighted

	mu      sync.Mutex
	current *service.Session

	logger *logger.Logger
}

// NewBridge returns a Bridge. cfg must carry non-zero timeouts and frame
// size, as produced by the config defaults.
func NewBridge(auth service.Authenticator, orchestrator *service.Orchestrator, ids service.IDGenerator, cfg config.Server, logger *logger.Logger) *Bridge {
	return &Bridge{
		auth:         auth,
		orchestrator: orchestrator,
		ids:          ids,
		validator:    validators.NewSyncValidator(cfg.MaxFrameBytes),
		cfg:          cfg,
		version:      models.ProtocolVersion,
		slot:         semaphore.NewWeighted(1),
		logger:       logger,
	}
}

// Status reports the running session, or an idle status when there is none.
func (b *Bridge) Status(ctx context.Context) models.SessionStatus {
	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	status := models.SessionStatus{State: models.StateIdle.String()}
	if current != nil {
		status = current.Status()
	}
	if n, err := b.auth.TrustedPeers(ctx); err == nil {
		status.TrustedPeer = n
	}
	return status
}

// ServeConn runs the line protocol on conn until the peer quits, the
// connection fails or ctx is cancelled. conn is always closed.
//
// The returned error is nil for a clean QUIT or a session that ended by
// protocol; otherwise it wraps ErrFraming, ErrTransportLoss, ErrSessionBusy
// or service.ErrAuthFailure.
func (b *Bridge) ServeConn(ctx context.Context, conn io.ReadWriteCloser, transport, remote string) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	id := b.ids.Generate()
	log := b.logger.ForSession(id, transport)
	ctx = log.WithContext(ctx)

	c := newLineConn(conn, b.cfg)
	if err := c.writeLine(Greeting(b.version)); err != nil {
		return err
	}

	clientID, credential, err := b.login(ctx, c)
	if err != nil {
		return err
	}
	log.Debug().Str("client_id", clientID).Str("remote", remote).Msg("login received")

	if err := b.acquire(ctx); err != nil {
		_ = c.writeLine(ReplyBusy)
		log.Warn().Str("client_id", clientID).Msg("session slot busy, refusing connection")
		return err
	}
	defer b.slot.Release(1)

	bus := channel.NewBus()
	bus.Subscribe(channel.Peer, func(_ context.Context, msg channel.Message) error {
		return c.writeLine(FormatCall(msg))
	})

	session := b.orchestrator.NewSession(ctx, id, bus)
	defer session.Close(ctx)

	peer := models.PeerInfo{ClientID: clientID, Remote: remote, Transport: transport}
	session.Connected(peer)
	b.setCurrent(session)
	defer b.setCurrent(nil)

	decision, err := b.auth.Authorize(ctx, peer, credential)
	if err != nil {
		log.Err(err).Str("client_id", clientID).Msg("authorization failed")
	}
	allowed := err == nil && decision == service.Allow
	session.Authenticated(allowed)
	if !allowed {
		_ = c.writeLine(ReplyNotAuthorized)
		return fmt.Errorf("%w: %s", service.ErrAuthFailure, clientID)
	}
	if err := c.writeLine(ReplyAuthenticated); err != nil {
		return err
	}
	log.Info().Str("client_id", clientID).Str("remote", remote).Msg("session started")

	if err := b.serve(ctx, c, bus, session); err != nil {
		session.Abort(ctx, err)
		return err
	}
	log.Info().Strs("committed", session.Status().Committed).Msg("session finished")
	return nil
}

// login reads USER and PASS. The credential may be empty; the client id
// must be a single printable token.
func (b *Bridge) login(ctx context.Context, c *lineConn) (clientID, credential string, err error) {
	user, err := c.readFrame(b.cfg.ReadTimeout)
	if err != nil {
		return "", "", err
	}
	if user.Verb != VerbUser {
		return "", "", fmt.Errorf("%w: expected USER, got %s", ErrFraming, user.Verb)
	}
	if err := b.validator.Validate(ctx, models.PeerInfo{ClientID: user.Arg}, validators.FieldClientID); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrFraming, err)
	}

	pass, err := c.readFrame(b.cfg.ReadTimeout)
	if err != nil {
		return "", "", err
	}
	if pass.Verb != VerbPass {
		return "", "", fmt.Errorf("%w: expected PASS, got %s", ErrFraming, pass.Verb)
	}
	return user.Arg, pass.Arg, nil
}

func (b *Bridge) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, b.cfg.ReadTimeout)
	defer cancel()

	if err := b.slot.Acquire(waitCtx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionBusy, err)
	}
	return nil
}

func (b *Bridge) serve(ctx context.Context, c *lineConn, bus *channel.Bus, session *service.Session) error {
	for {
		frame, err := c.readFrame(b.cfg.IdleTimeout)
		if err != nil {
			return err
		}

		switch frame.Verb {
		case VerbNoop:
		case VerbQuit:
			_ = c.writeLine(ReplyBye)
			return nil
		case VerbCall:
			if frame.Msg.Channel != channel.Device {
				return fmt.Errorf("%w: CALL on channel %q", ErrFraming, frame.Msg.Channel)
			}
			if err := bus.Send(ctx, frame.Msg); err != nil {
				return err
			}
			if session.Ended() {
				return nil
			}
		default:
			return fmt.Errorf("%w: %s after login", ErrFraming, frame.Verb)
		}
	}
}

func (b *Bridge) setCurrent(s *service.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = s
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// lineConn frames a connection. Reads happen on the session goroutine only;
// writes are serialized.
type lineConn struct {
	conn        io.ReadWriter
	r           *bufio.Reader
	readTimeout time.Duration

	wmu sync.Mutex
}

func newLineConn(conn io.ReadWriter, cfg config.Server) *lineConn {
	return &lineConn{
		conn:        conn,
		r:           bufio.NewReaderSize(conn, cfg.MaxFrameBytes),
		readTimeout: cfg.ReadTimeout,
	}
}

// readFrame waits up to wait for a frame to start, then up to the read
// timeout for it to complete.
func (c *lineConn) readFrame(wait time.Duration) (Frame, error) {
	c.setReadDeadline(wait)
	if _, err := c.r.Peek(1); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrTransportLoss, err)
	}

	c.setReadDeadline(c.readTimeout)
	line, err := ReadLine(c.r)
	if err != nil {
		if errors.Is(err, ErrFraming) {
			return Frame{}, err
		}
		return Frame{}, fmt.Errorf("%w: %w", ErrTransportLoss, err)
	}
	return ParseFrame(line)
}

func (c *lineConn) writeLine(s string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if d, ok := c.conn.(writeDeadliner); ok && c.readTimeout > 0 {
		_ = d.SetWriteDeadline(time.Now().Add(c.readTimeout))
	}
	if err := WriteLine(c.conn, s); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportLoss, err)
	}
	return nil
}

// setReadDeadline is a no-op on connections without deadline support.
func (c *lineConn) setReadDeadline(d time.Duration) {
	dl, ok := c.conn.(readDeadliner)
	if !ok {
		return
	}
	var at time.Time
	if d > 0 {
		at = time.Now().Add(d)
	}
	_ = dl.SetReadDeadline(at)
}
