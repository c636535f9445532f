package peer

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-pim-sync/internal/channel"
	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/server"
	"github.com/MKhiriev/go-pim-sync/models"
)

// lineBuffer bounds the device lines read ahead of the caller.
const lineBuffer = 256

// Conn is an open connection to a device. It is not safe for concurrent use.
type Conn struct {
	conn    net.Conn
	timeout time.Duration
	version models.Version

	lines   chan string
	readErr error
	done    chan struct{}
	once    sync.Once

	logger *logger.Logger
}

// Dial connects to address and reads the device greeting.
func Dial(ctx context.Context, address string, timeout time.Duration, logger *logger.Logger) (*Conn, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return NewConn(ctx, conn, timeout, logger)
}

// NewConn wraps an established connection and reads the device greeting.
// conn is closed when the greeting is missing.
func NewConn(ctx context.Context, conn net.Conn, timeout time.Duration, logger *logger.Logger) (*Conn, error) {
	c := &Conn{
		conn:    conn,
		timeout: timeout,
		lines:   make(chan string, lineBuffer),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go c.readLoop(bufio.NewReaderSize(conn, config.DefaultMaxFrameBytes))

	line, err := c.next(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if c.version, err = parseGreeting(line); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func parseGreeting(line string) (models.Version, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "220" || fields[1] != "pimsync" || fields[3] != "ready" {
		return models.Version{}, fmt.Errorf("%w: greeting %q", ErrProtocol, line)
	}
	v, err := models.ParseVersionArgs(strings.Split(fields[2], "."))
	if err != nil {
		return models.Version{}, fmt.Errorf("%w: greeting version: %w", ErrProtocol, err)
	}
	return v, nil
}

// Version returns the protocol version announced in the greeting.
func (c *Conn) Version() models.Version {
	return c.version
}

// Login presents clientID and credential. An empty credential is sent as a
// bare PASS.
func (c *Conn) Login(ctx context.Context, clientID, credential string) error {
	if err := c.writeLine(server.VerbUser + " " + clientID); err != nil {
		return err
	}
	pass := server.VerbPass
	if credential != "" {
		pass += " " + credential
	}
	if err := c.writeLine(pass); err != nil {
		return err
	}

	line, err := c.next(ctx)
	if err != nil {
		return err
	}
	switch line {
	case server.ReplyAuthenticated:
		return nil
	case server.ReplyNotAuthorized:
		return ErrNotAuthorized
	case server.ReplyBusy:
		return ErrBusy
	default:
		return fmt.Errorf("%w: login reply %q", ErrProtocol, line)
	}
}

// Noop keeps an idle connection alive.
func (c *Conn) Noop() error {
	return c.writeLine(server.VerbNoop)
}

// Quit ends the session and closes the connection.
func (c *Conn) Quit(ctx context.Context) error {
	defer c.Close()

	if err := c.writeLine(server.VerbQuit); err != nil {
		return err
	}
	line, err := c.next(ctx)
	if err != nil {
		return err
	}
	if line != server.ReplyBye {
		return fmt.Errorf("%w: quit reply %q", ErrProtocol, line)
	}
	return nil
}

// Close closes the connection without QUIT.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) call(msg channel.Message) error {
	c.logger.Debug().Str("msg", msg.Name).Msg("sending")
	return c.writeLine(server.FormatCall(msg))
}

// nextCall waits for the next CALL from the device.
func (c *Conn) nextCall(ctx context.Context) (channel.Message, error) {
	line, err := c.next(ctx)
	if err != nil {
		return channel.Message{}, err
	}
	frame, err := server.ParseFrame(line)
	if err != nil {
		return channel.Message{}, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if frame.Verb != server.VerbCall || frame.Msg.Channel != channel.Peer {
		return channel.Message{}, fmt.Errorf("%w: %q", ErrProtocol, line)
	}
	c.logger.Debug().Str("msg", frame.Msg.Name).Msg("received")
	return frame.Msg, nil
}

func (c *Conn) next(ctx context.Context) (string, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", fmt.Errorf("%w: %w", ErrConnectionLost, c.readErr)
		}
		return line, nil
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Conn) writeLine(s string) error {
	if c.timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	if err := server.WriteLine(c.conn, s); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	return nil
}

// readLoop feeds device lines to next. readErr is written before lines is
// closed.
func (c *Conn) readLoop(r *bufio.Reader) {
	defer close(c.lines)
	for {
		line, err := server.ReadLine(r)
		if err != nil {
			c.readErr = err
			return
		}
		select {
		case c.lines <- line:
		case <-c.done:
			c.readErr = net.ErrClosed
			return
		}
	}
}
