package server

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/handler"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/workers"
)

type server struct {
	tcpServer    *tcpServer
	serialServer *serialServer
	httpServer   *httpServer
	logger       *logger.Logger
}

// NewServer creates the sync listeners named in cfg and, when handlers
// carry an admin handler, the admin HTTP server. The TCP listener is bound
// here so address errors surface at start.
func NewServer(bridge *Bridge, handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := &server{logger: logger}

	if cfg.Address != "" {
		tcp, err := newTCPServer(bridge, cfg.Address, logger)
		if err != nil {
			return nil, err
		}
		servers.tcpServer = tcp
	}
	if cfg.SerialDevice != "" {
		servers.serialServer = newSerialServer(bridge, cfg.SerialDevice, logger)
	}

	if servers.tcpServer == nil && servers.serialServer == nil {
		return nil, errNoServersAreCreated
	}

	if handlers != nil && handlers.HTTP != nil {
		servers.httpServer = newHTTPServer(handlers.HTTP.Init(), cfg.AdminAddress, logger)
	}

	return servers, nil
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		s.logger.Err(err).Msg("error running server")
	}
}

func (s *server) Shutdown() {
	// admin API first, so status reads stop before sessions are torn down
	if s.httpServer != nil {
		s.httpServer.Shutdown()
	}
	if s.tcpServer != nil {
		s.tcpServer.Shutdown()
	}
	if s.serialServer != nil {
		s.serialServer.Shutdown()
	}
}

func (s *server) run() error {
	if s.tcpServer == nil && s.serialServer == nil {
		return errors.New("no servers to run")
	}

	stopped := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	go func() {
		<-ctx.Done()
		s.Shutdown()
		close(stopped)
	}()

	listeners := workers.New()
	if s.tcpServer != nil {
		s.logger.Info().Msg("launching TCP sync listener")
		listeners.Add(workers.Func(s.tcpServer.RunServer))
	}
	if s.serialServer != nil {
		s.logger.Info().Msg("launching serial sync listener")
		listeners.Add(workers.Func(s.serialServer.RunServer))
	}
	if s.httpServer != nil {
		s.logger.Info().Msg("launching admin HTTP server")
		listeners.Add(workers.Func(s.httpServer.RunServer))
	}

	finished := make(chan struct{})
	go func() {
		listeners.Run()
		close(finished)
	}()

	<-stopped
	<-finished
	s.logger.Info().Msg("server shut down gracefully")

	return nil
}
