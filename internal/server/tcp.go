package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/service"
)

var _ Server = (*tcpServer)(nil)

// tcpServer accepts sync connections and hands each one to the bridge on
// its own goroutine. The bridge serializes the sessions.
type tcpServer struct {
	listener net.Listener
	bridge   *Bridge

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

func newTCPServer(bridge *Bridge, address string, logger *logger.Logger) (*tcpServer, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &tcpServer{
		listener: listener,
		bridge:   bridge,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}, nil
}

// Addr returns the bound address, useful with ":0".
func (t *tcpServer) Addr() net.Addr {
	return t.listener.Addr()
}

func (t *tcpServer) RunServer() {
	t.logger.Info().Str("address", t.listener.Addr().String()).Msg("sync listener started")
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if t.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			t.logger.Err(err).Msg("accepting connection failed")
			continue
		}

		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			logSessionEnd(t.logger, TransportTCP, t.bridge.ServeConn(t.ctx, conn, TransportTCP, conn.RemoteAddr().String()))
		}()
	}
}

func (t *tcpServer) Shutdown() {
	t.logger.Info().Msg("sync listener Shutdown")
	t.cancel()
	_ = t.listener.Close()
	t.wg.Wait()
}

// logSessionEnd logs the outcome of one connection at a level matching its
// cause.
func logSessionEnd(log *logger.Logger, transport string, err error) {
	switch {
	case err == nil:
		log.Debug().Str("transport", transport).Msg("connection closed")
	case errors.Is(err, ErrSessionBusy), errors.Is(err, service.ErrAuthFailure):
		log.Info().Err(err).Str("transport", transport).Msg("connection refused")
	case errors.Is(err, ErrFraming):
		log.Warn().Err(err).Str("transport", transport).Msg("connection dropped on framing error")
	default:
		log.Warn().Err(err).Str("transport", transport).Msg("connection lost")
	}
}
