package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/models"
)

func TestBus_SendWithoutSubscriber(t *testing.T) {
	b := NewBus()
	err := b.Send(context.Background(), ClientEnd())
	assert.ErrorIs(t, err, ErrNoSubscriber)
}

func TestBus_DeliversInOrder(t *testing.T) {
	b := NewBus()
	var got []string

	unsubscribe := b.Subscribe(Peer, func(_ context.Context, msg Message) error {
		got = append(got, msg.Name)
		return nil
	})
	defer unsubscribe()

	ctx := context.Background()
	require.NoError(t, b.Send(ctx, CreateClientRecord("<Task/>")))
	require.NoError(t, b.Send(ctx, RemoveClientRecord("1")))
	require.NoError(t, b.Send(ctx, ClientChangesCompleted()))

	assert.Equal(t, []string{
		models.MsgCreateClientRecord,
		models.MsgRemoveClientRecord,
		models.MsgClientChangesCompleted,
	}, got)

	err := b.Send(ctx, ServerEnd())
	assert.ErrorIs(t, err, ErrNoSubscriber, "device channel has nobody listening")
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	h := func(context.Context, Message) error { calls++; return nil }

	first := b.Subscribe(Device, h)
	second := b.Subscribe(Device, h)
	assert.Equal(t, 2, b.Subscribers(Device))

	require.NoError(t, b.Send(context.Background(), ServerEnd()))
	assert.Equal(t, 2, calls)

	first()
	first()
	assert.Equal(t, 1, b.Subscribers(Device))

	second()
	assert.Zero(t, b.Subscribers(Device))
	assert.ErrorIs(t, b.Send(context.Background(), ServerEnd()), ErrNoSubscriber)
}

func TestBus_HandlerErrorStopsDelivery(t *testing.T) {
	b := NewBus()
	boom := errors.New("boom")
	reached := false

	b.Subscribe(Device, func(context.Context, Message) error { return boom })
	b.Subscribe(Device, func(context.Context, Message) error { reached = true; return nil })

	err := b.Send(context.Background(), ServerError())
	assert.ErrorIs(t, err, boom)
	assert.False(t, reached)
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{name: "mapped id", msg: MappedID("p", "l")},
		{name: "version", msg: ServerVersion(models.ProtocolVersion)},
		{name: "anchors", msg: ServerSyncAnchors("", "2026-05-01T12:00:00Z")},
		{name: "unknown", msg: Message{Channel: Device, Name: "hello"}, wantErr: ErrUnknownMessage},
		{name: "arity", msg: Message{Channel: Device, Name: models.MsgServerEnd, Args: []string{"x"}}, wantErr: ErrArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMessage_Arg(t *testing.T) {
	m := MappedID("peer", "local")
	assert.Equal(t, "peer", m.Arg(0))
	assert.Equal(t, "local", m.Arg(1))
	assert.Empty(t, m.Arg(2))
	assert.Equal(t, "pim/sync/peer mappedId(peer,local)", m.String())
}
