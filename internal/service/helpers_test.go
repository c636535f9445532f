package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/internal/channel"
	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/store"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newTestStorages(t *testing.T) *store.Storages {
	t.Helper()

	db, err := store.NewConnectSQLite(testContext(), config.DB{DSN: filepath.Join(t.TempDir(), "pim.db")}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	return store.NewStoragesFromDB(db)
}

func ts(min int) time.Time {
	return time.Date(2026, 5, 1, 12, min, 0, 0, time.UTC)
}

// seqIDs hands out local-1, local-2, ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("local-%d", g.n)
}

// recordingSink captures FetchChangesSince output in call order.
type recordingSink struct {
	calls []string
	wires [][]byte
}

func (s *recordingSink) Created(_ context.Context, wire []byte) error {
	s.calls = append(s.calls, "created")
	s.wires = append(s.wires, wire)
	return nil
}

func (s *recordingSink) Removed(_ context.Context, id string) error {
	s.calls = append(s.calls, "removed:"+id)
	return nil
}

func (s *recordingSink) Replaced(_ context.Context, wire []byte) error {
	s.calls = append(s.calls, "replaced")
	s.wires = append(s.wires, wire)
	return nil
}

// peerRecorder is the desktop side of a bus in tests.
type peerRecorder struct {
	mu   sync.Mutex
	msgs []channel.Message
}

func newPeerRecorder(bus *channel.Bus) *peerRecorder {
	r := &peerRecorder{}
	bus.Subscribe(channel.Peer, func(_ context.Context, msg channel.Message) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.msgs = append(r.msgs, msg)
		return nil
	})
	return r
}

// take returns and forgets the recorded messages.
func (r *peerRecorder) take() []channel.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

func names(msgs []channel.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Name
	}
	return out
}
