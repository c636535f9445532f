package peer

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/internal/channel"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/server"
	"github.com/MKhiriev/go-pim-sync/models"
)

// scriptedDevice plays a device from a fixed script on the far end of a
// net.Pipe.
type scriptedDevice struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
	done chan struct{}
}

func startScript(t *testing.T, script func(d *scriptedDevice)) net.Conn {
	t.Helper()
	deviceSide, desktopSide := net.Pipe()
	d := &scriptedDevice{t: t, conn: deviceSide, r: bufio.NewReader(deviceSide), done: make(chan struct{})}

	go func() {
		defer close(d.done)
		defer deviceSide.Close()
		script(d)
	}()
	t.Cleanup(func() {
		_ = desktopSide.Close()
		<-d.done
	})
	return desktopSide
}

func (d *scriptedDevice) say(lines ...string) {
	for _, line := range lines {
		if err := server.WriteLine(d.conn, line); err != nil {
			d.t.Errorf("device write %q: %v", line, err)
			return
		}
	}
}

func (d *scriptedDevice) call(msgs ...channel.Message) {
	for _, msg := range msgs {
		d.say(server.FormatCall(msg))
	}
}

// hear reads one line and checks it against want.
func (d *scriptedDevice) hear(want string) {
	line, err := d.r.ReadString('\n')
	if err != nil {
		d.t.Errorf("device read, want %q: %v", want, err)
		return
	}
	assert.Equal(d.t, want, strings.TrimSuffix(line, "\n"))
}

func (d *scriptedDevice) hearCall(msgs ...channel.Message) {
	for _, msg := range msgs {
		d.hear(server.FormatCall(msg))
	}
}

func (d *scriptedDevice) greet() {
	d.say(server.Greeting(models.ProtocolVersion))
}

func dialScript(t *testing.T, script func(d *scriptedDevice)) *Conn {
	t.Helper()
	c, err := NewConn(context.Background(), startScript(t, script), time.Second, logger.Nop())
	require.NoError(t, err)
	return c
}

func TestNewConn_Greeting(t *testing.T) {
	c := dialScript(t, func(d *scriptedDevice) { d.say("220 pimsync 1.4.2 ready") })
	assert.Equal(t, models.Version{Major: 1, Minor: 4, Patch: 2}, c.Version())
}

func TestNewConn_BadGreeting(t *testing.T) {
	for _, greeting := range []string{"220 ftp ready", "220 pimsync 1.x ready", "421 busy"} {
		t.Run(greeting, func(t *testing.T) {
			conn := startScript(t, func(d *scriptedDevice) { d.say(greeting) })
			_, err := NewConn(context.Background(), conn, time.Second, logger.Nop())
			require.ErrorIs(t, err, ErrProtocol)
		})
	}
}

func TestNewConn_SilentDevice(t *testing.T) {
	conn := startScript(t, func(d *scriptedDevice) {
		_, _ = d.r.ReadString('\n')
	})
	_, err := NewConn(context.Background(), conn, 50*time.Millisecond, logger.Nop())
	require.ErrorIs(t, err, ErrTimeout)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		reply   string
		wantErr error
	}{
		{reply: server.ReplyAuthenticated},
		{reply: server.ReplyNotAuthorized, wantErr: ErrNotAuthorized},
		{reply: server.ReplyBusy, wantErr: ErrBusy},
		{reply: "500 what", wantErr: ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			c := dialScript(t, func(d *scriptedDevice) {
				d.greet()
				d.hear("USER desk-1")
				d.hear("PASS pimsync1:abc")
				d.say(tt.reply)
			})

			err := c.Login(context.Background(), "desk-1", "pimsync1:abc")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLogin_EmptyCredential(t *testing.T) {
	c := dialScript(t, func(d *scriptedDevice) {
		d.greet()
		d.hear("USER desk-1")
		d.hear("PASS")
		d.say(server.ReplyNotAuthorized)
	})

	require.ErrorIs(t, c.Login(context.Background(), "desk-1", ""), ErrNotAuthorized)
}

func TestLogin_ConnectionLost(t *testing.T) {
	c := dialScript(t, func(d *scriptedDevice) {
		d.greet()
		d.hear("USER desk-1")
		d.hear("PASS x")
	})

	require.ErrorIs(t, c.Login(context.Background(), "desk-1", "x"), ErrConnectionLost)
}

func TestHandshake(t *testing.T) {
	c := dialScript(t, func(d *scriptedDevice) {
		d.greet()
		d.hearCall(channel.ServerIdentity("desk-1"))
		d.call(channel.ClientIdentity("handheld"))
		d.hearCall(channel.ServerVersion(models.ProtocolVersion))
		d.call(channel.ClientVersion(models.Version{Major: 1, Minor: 3}))
	})

	id, err := c.Handshake(context.Background(), "desk-1")
	require.NoError(t, err)
	assert.Equal(t, Identity{Name: "handheld", Version: models.Version{Major: 1, Minor: 3}}, id)
}

func TestHandshake_VersionMismatch(t *testing.T) {
	c := dialScript(t, func(d *scriptedDevice) {
		d.greet()
		d.hearCall(channel.ServerIdentity("desk-1"))
		d.call(channel.ClientIdentity("handheld"))
		d.hearCall(channel.ServerVersion(models.ProtocolVersion))
		d.call(channel.ClientError())
	})

	_, err := c.Handshake(context.Background(), "desk-1")
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestSyncDataset_TwoWay(t *testing.T) {
	next := time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC)
	nextAnchor := models.FormatAnchor(&next)
	pushed := `<Task><Identifier>p-1</Identifier></Task>`

	c := dialScript(t, func(d *scriptedDevice) {
		d.greet()
		d.hearCall(
			channel.ServerSyncRequest(models.Tasks),
			channel.ServerSyncAnchors("2026-05-01T12:00:00Z", nextAnchor),
		)
		d.call(channel.ClientSyncAnchors("2026-05-01T12:00:00Z", nextAnchor), channel.RequestTwoWaySync())

		d.hearCall(channel.CreateServerRecord(pushed))
		d.call(channel.MappedID("p-1", "local-9"))
		d.hearCall(channel.RemoveServerRecord("local-2"), channel.ServerChangesCompleted())

		d.call(
			channel.CreateClientRecord(`<Task><Identifier localIdentifier="true">local-5</Identifier></Task>`),
			channel.RemoveClientRecord("local-3"),
			channel.ReplaceClientRecord(`<Task><Identifier localIdentifier="true">local-4</Identifier></Task>`),
			channel.ClientChangesCompleted(),
		)
		d.hearCall(channel.ServerEnd())
		d.call(channel.ClientEnd())
	})

	result, err := c.SyncDataset(context.Background(), DatasetRequest{
		Dataset:  models.Tasks,
		LastSync: "2026-05-01T12:00:00Z",
		NextSync: next,
		Changes: []Change{
			{Op: OpCreate, Record: pushed, ID: "p-1"},
			{Op: OpRemove, ID: "local-2"},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.SlowSync)
	assert.False(t, result.Failed())
	assert.Equal(t, "2026-05-01T12:00:00Z", result.DeviceLast)
	assert.Equal(t, nextAnchor, result.NextSync)
	assert.Equal(t, map[string]string{"p-1": "local-9"}, result.Mapped)
	assert.Len(t, result.Created, 1)
	assert.Len(t, result.Replaced, 1)
	assert.Equal(t, []string{"local-3"}, result.Removed)
}

func TestSyncDataset_Rejected(t *testing.T) {
	c := dialScript(t, func(d *scriptedDevice) {
		d.greet()
		d.hearCall(channel.ServerSyncRequest(models.Contacts), channel.ServerSyncAnchors("", "2026-05-01T13:00:00Z"))
		d.call(channel.ClientError())
	})

	_, err := c.SyncDataset(context.Background(), DatasetRequest{
		Dataset:  models.Contacts,
		NextSync: time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrDatasetRejected)
}

func TestSyncDataset_CountsDeviceErrors(t *testing.T) {
	c := dialScript(t, func(d *scriptedDevice) {
		d.greet()
		d.hearCall(channel.ServerSyncRequest(models.Contacts), channel.ServerSyncAnchors("", "2026-05-01T13:00:00Z"))
		d.call(channel.ClientSyncAnchors("", "2026-05-01T13:00:00Z"), channel.RequestSlowSync(), channel.ClientError())
		d.hearCall(channel.ServerChangesCompleted())
		d.call(channel.ClientChangesCompleted())
		d.hearCall(channel.ServerEnd())
		d.call(channel.ClientEnd())
	})

	result, err := c.SyncDataset(context.Background(), DatasetRequest{
		Dataset:  models.Contacts,
		NextSync: time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, result.SlowSync)
	assert.True(t, result.Failed())
	assert.Equal(t, 1, result.Errors)
}

func TestQuit(t *testing.T) {
	c := dialScript(t, func(d *scriptedDevice) {
		d.greet()
		d.hear(server.VerbNoop)
		d.hear(server.VerbQuit)
		d.say(server.ReplyBye)
	})

	require.NoError(t, c.Noop())
	require.NoError(t, c.Quit(context.Background()))
}
