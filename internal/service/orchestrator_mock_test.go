package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-pim-sync/internal/channel"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/mock"
	"github.com/MKhiriev/go-pim-sync/internal/service"
	"github.com/MKhiriev/go-pim-sync/models"
)

type mockedSession struct {
	session *service.Session
	bus     *channel.Bus
	anchors *mock.MockAnchorRepository
	plugin  *mock.MockDatasetPlugin
	replies []channel.Message
}

func newMockedSession(t *testing.T) *mockedSession {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &mockedSession{
		bus:     channel.NewBus(),
		anchors: mock.NewMockAnchorRepository(ctrl),
		plugin:  mock.NewMockDatasetPlugin(ctrl),
	}
	m.bus.Subscribe(channel.Peer, func(_ context.Context, msg channel.Message) error {
		m.replies = append(m.replies, msg)
		return nil
	})

	plugins := func(models.Dataset) (service.DatasetPlugin, error) { return m.plugin, nil }
	o := service.NewOrchestrator(m.anchors, plugins, "handheld", logger.Nop())
	m.session = o.NewSession(authContext(), "sess-m", m.bus)
	t.Cleanup(func() { m.session.Close(authContext()) })

	m.session.Connected(models.PeerInfo{ClientID: "desk"})
	m.session.Authenticated(true)
	return m
}

func (m *mockedSession) send(t *testing.T, msgs ...channel.Message) []string {
	t.Helper()
	m.replies = nil
	for _, msg := range msgs {
		require.NoError(t, m.bus.Send(authContext(), msg))
	}
	out := make([]string, len(m.replies))
	for i, r := range m.replies {
		out[i] = r.Name
	}
	return out
}

func anchorAt(min int) (string, time.Time) {
	t := time.Date(2026, 5, 1, 12, min, 0, 0, time.UTC)
	return models.FormatAnchor(&t), t
}

func TestSession_BeginFailureAnswersWithClientError(t *testing.T) {
	m := newMockedSession(t)
	next, _ := anchorAt(10)

	m.anchors.EXPECT().Get(gomock.Any(), "desk", models.Contacts).Return(nil, nil)
	m.plugin.EXPECT().BeginTransaction(gomock.Any(), gomock.Any()).Return(errors.New("database is locked"))

	got := m.send(t, channel.ServerSyncRequest(models.Contacts), channel.ServerSyncAnchors("", next))
	assert.Equal(t, []string{models.MsgClientSyncAnchors, models.MsgRequestSlowSync, models.MsgClientError}, got)

	// Record messages are ignored, no commit and no anchor on serverEnd.
	got = m.send(t,
		channel.CreateServerRecord("<Contact/>"),
		channel.ServerChangesCompleted(),
		channel.ServerEnd(),
	)
	assert.Equal(t, []string{models.MsgClientChangesCompleted, models.MsgClientEnd}, got)
}

func TestSession_CommitFailureSkipsAnchor(t *testing.T) {
	m := newMockedSession(t)
	next, _ := anchorAt(10)

	m.anchors.EXPECT().Get(gomock.Any(), "desk", models.Tasks).Return(nil, nil)
	gomock.InOrder(
		m.plugin.EXPECT().BeginTransaction(gomock.Any(), gomock.Any()).Return(nil),
		m.plugin.EXPECT().FetchChangesSince(gomock.Any(), gomock.Nil(), gomock.Any()).Return(nil),
		m.plugin.EXPECT().CommitTransaction(gomock.Any()).Return(service.ErrApplyFailure),
	)

	m.send(t, channel.ServerSyncRequest(models.Tasks), channel.ServerSyncAnchors("", next))
	got := m.send(t, channel.ServerChangesCompleted(), channel.ServerEnd())
	assert.Equal(t, []string{models.MsgClientChangesCompleted, models.MsgClientError, models.MsgClientEnd}, got)
	assert.Empty(t, m.session.Status().Committed)
}

func TestSession_CategoryFailureStillStoresAnchor(t *testing.T) {
	m := newMockedSession(t)
	last, lastAt := anchorAt(5)
	next, nextAt := anchorAt(10)

	m.anchors.EXPECT().Get(gomock.Any(), "desk", models.Contacts).Return(&lastAt, nil)
	gomock.InOrder(
		m.plugin.EXPECT().BeginTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, txn *models.Transaction) error {
				assert.True(t, nextAt.Equal(txn.Timestamp))
				assert.Equal(t, models.Contacts, txn.Dataset)
				return nil
			}),
		m.plugin.EXPECT().FetchChangesSince(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, since *time.Time, sink service.ChangeSink) error {
				require.NotNil(t, since)
				assert.True(t, lastAt.Equal(*since))
				require.NoError(t, sink.Created(ctx, []byte("<Contact>a</Contact>")))
				require.NoError(t, sink.Removed(ctx, "gone"))
				return sink.Replaced(ctx, []byte("<Contact>b</Contact>"))
			}),
		m.plugin.EXPECT().CommitTransaction(gomock.Any()).Return(service.ErrCategoriesFailed),
		m.anchors.EXPECT().Put(gomock.Any(), "desk", models.Contacts, nextAt).Return(nil),
	)

	got := m.send(t, channel.ServerSyncRequest(models.Contacts), channel.ServerSyncAnchors(last, next))
	assert.Equal(t, []string{models.MsgClientSyncAnchors, models.MsgRequestTwoWaySync}, got)

	got = m.send(t, channel.ServerChangesCompleted(), channel.ServerEnd())
	assert.Equal(t, []string{
		models.MsgCreateClientRecord,
		models.MsgRemoveClientRecord,
		models.MsgReplaceClientRecord,
		models.MsgClientChangesCompleted,
		models.MsgClientEnd,
	}, got)
	assert.Equal(t, []string{"contacts"}, m.session.Status().Committed)
}

func TestSession_AnchorLookupFailure(t *testing.T) {
	m := newMockedSession(t)
	next, _ := anchorAt(10)

	m.anchors.EXPECT().Get(gomock.Any(), "desk", models.Contacts).Return(nil, errors.New("no such table"))

	got := m.send(t, channel.ServerSyncRequest(models.Contacts), channel.ServerSyncAnchors("", next))
	assert.Equal(t, []string{models.MsgClientError}, got)
	assert.Equal(t, models.StateIdentityExchange, m.session.State())
}

func TestSession_AbortRollsBackOpenTransaction(t *testing.T) {
	m := newMockedSession(t)
	next, _ := anchorAt(10)

	m.anchors.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	m.plugin.EXPECT().BeginTransaction(gomock.Any(), gomock.Any()).Return(nil)
	m.plugin.EXPECT().AbortTransaction(gomock.Any()).Return(nil).Times(1)

	m.send(t, channel.ServerSyncRequest(models.Contacts), channel.ServerSyncAnchors("", next))
	m.session.Abort(authContext(), errors.New("read timeout"))
	// Close after Abort finds nothing to roll back.
	m.session.Close(authContext())
}
