package server

import (
	"context"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/term"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
)

var _ Server = (*serialServer)(nil)

// serialServer serves the bridge on a character device, e.g. a USB gadget
// serial port. The device is re-opened after every session.
type serialServer struct {
	device string
	bridge *Bridge

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	logger *logger.Logger
}

func newSerialServer(bridge *Bridge, device string, logger *logger.Logger) *serialServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &serialServer{
		device: device,
		bridge: bridge,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (s *serialServer) RunServer() {
	defer close(s.done)
	s.logger.Info().Str("device", s.device).Msg("serial listener started")

	for s.ctx.Err() == nil {
		port, err := s.open()
		if err != nil {
			return
		}
		logSessionEnd(s.logger, TransportSerial, s.bridge.ServeConn(s.ctx, port, TransportSerial, s.device))
	}
}

func (s *serialServer) Shutdown() {
	s.logger.Info().Str("device", s.device).Msg("serial listener Shutdown")
	s.cancel()
	<-s.done
}

// open retries until the device can be opened or the server stops.
func (s *serialServer) open() (*rawPort, error) {
	var port *rawPort
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(s.ctx, backoff, func(ctx context.Context) error {
		p, err := openRawPort(s.device)
		if err != nil {
			s.logger.Debug().Err(err).Str("device", s.device).Msg("opening serial device failed")
			return retry.RetryableError(err)
		}
		port = p
		return nil
	})
	return port, err
}

// rawPort is a character device in raw mode. Close restores the previous
// terminal state.
type rawPort struct {
	*os.File
	state *term.State
	once  sync.Once
}

func openRawPort(device string) (*rawPort, error) {
	f, err := os.OpenFile(device, os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}

	port := &rawPort{File: f}
	if fd := int(f.Fd()); term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		port.state = state
	}
	return port, nil
}

func (p *rawPort) Close() error {
	err := os.ErrClosed
	p.once.Do(func() {
		if p.state != nil {
			_ = term.Restore(int(p.File.Fd()), p.state)
		}
		err = p.File.Close()
	})
	return err
}
