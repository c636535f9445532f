package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/internal/handler"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

func TestNewServer_NoListeners(t *testing.T) {
	f := newBridgeFixture(t, testServerConfig())

	_, err := NewServer(f.bridge, &handler.Handlers{}, testServerConfig(), logger.Nop())
	require.ErrorIs(t, err, errNoServersAreCreated)
}

func TestNewServer_BadAddress(t *testing.T) {
	f := newBridgeFixture(t, testServerConfig())
	cfg := testServerConfig()
	cfg.Address = "256.0.0.1:bad"

	_, err := NewServer(f.bridge, nil, cfg, logger.Nop())
	require.Error(t, err)
}

func TestNewServer_AllSurfaces(t *testing.T) {
	f := newBridgeFixture(t, testServerConfig())
	cfg := testServerConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.SerialDevice = "/dev/null-serial"
	cfg.AdminAddress = "127.0.0.1:0"
	handlers := handler.NewHandlers(nil, f.bridge, cfg, logger.Nop())

	srv, err := NewServer(f.bridge, handlers, cfg, logger.Nop())
	require.NoError(t, err)

	s := srv.(*server)
	assert.NotNil(t, s.tcpServer)
	assert.NotNil(t, s.serialServer)
	assert.NotNil(t, s.httpServer)
	_ = s.tcpServer.listener.Close()
}

func TestTCPServer_GreetsAndShutsDown(t *testing.T) {
	f := newBridgeFixture(t, testServerConfig())

	tcp, err := newTCPServer(f.bridge, "127.0.0.1:0", logger.Nop())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		tcp.RunServer()
		close(done)
	}()

	conn, err := net.DialTimeout("tcp", tcp.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, Greeting(models.ProtocolVersion)+"\n", line)

	// Shutdown cancels the open connection and waits for it.
	tcp.Shutdown()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("accept loop did not stop")
	}
}

func TestSerialServer_StopsWhileDeviceMissing(t *testing.T) {
	f := newBridgeFixture(t, testServerConfig())
	serial := newSerialServer(f.bridge, t.TempDir()+"/ttyGS0", logger.Nop())

	go serial.RunServer()
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		serial.Shutdown()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("serial server did not stop")
	}
	assert.ErrorIs(t, serial.ctx.Err(), context.Canceled)
}
