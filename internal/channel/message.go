package channel

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-pim-sync/models"
)

// Channel names.
const (
	// Device carries messages addressed to the device side.
	Device = "pim/sync/device"
	// Peer carries messages addressed to the desktop side.
	Peer = "pim/sync/peer"
)

// Message is one named call on a channel. Args are UTF-8 text.
type Message struct {
	Channel string
	Name    string
	Args    []string
}

func (m Message) String() string {
	return fmt.Sprintf("%s %s(%s)", m.Channel, m.Name, strings.Join(m.Args, ","))
}

// Arg returns the i-th argument, or "" when absent.
func (m Message) Arg(i int) string {
	if i < 0 || i >= len(m.Args) {
		return ""
	}
	return m.Args[i]
}

// Validate checks that the message is known and carries its fixed number of
// arguments.
func (m Message) Validate() error {
	arity, ok := models.MessageArity[m.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMessage, m.Name)
	}
	if len(m.Args) != arity {
		return fmt.Errorf("%w: %s wants %d args, got %d", ErrArity, m.Name, arity, len(m.Args))
	}
	return nil
}

func toDevice(name string, args ...string) Message {
	return Message{Channel: Device, Name: name, Args: args}
}

func toPeer(name string, args ...string) Message {
	return Message{Channel: Peer, Name: name, Args: args}
}

// Messages sent by the desktop peer.

func ServerSyncRequest(dataset models.Dataset) Message {
	return toDevice(models.MsgServerSyncRequest, dataset.String())
}

func ServerIdentity(name string) Message {
	return toDevice(models.MsgServerIdentity, name)
}

func ServerVersion(v models.Version) Message {
	return toDevice(models.MsgServerVersion, v.Args()...)
}

func ServerSyncAnchors(last, next string) Message {
	return toDevice(models.MsgServerSyncAnchors, last, next)
}

func CreateServerRecord(record string) Message {
	return toDevice(models.MsgCreateServerRecord, record)
}

func ReplaceServerRecord(record string) Message {
	return toDevice(models.MsgReplaceServerRecord, record)
}

func RemoveServerRecord(identifier string) Message {
	return toDevice(models.MsgRemoveServerRecord, identifier)
}

func ServerChangesCompleted() Message {
	return toDevice(models.MsgServerChangesCompleted)
}

func ServerError() Message {
	return toDevice(models.MsgServerError)
}

func ServerEnd() Message {
	return toDevice(models.MsgServerEnd)
}

// Messages sent by the device.

func ClientIdentity(name string) Message {
	return toPeer(models.MsgClientIdentity, name)
}

func ClientVersion(v models.Version) Message {
	return toPeer(models.MsgClientVersion, v.Args()...)
}

func ClientSyncAnchors(last, next string) Message {
	return toPeer(models.MsgClientSyncAnchors, last, next)
}

func RequestTwoWaySync() Message {
	return toPeer(models.MsgRequestTwoWaySync)
}

func RequestSlowSync() Message {
	return toPeer(models.MsgRequestSlowSync)
}

func CreateClientRecord(record string) Message {
	return toPeer(models.MsgCreateClientRecord, record)
}

func ReplaceClientRecord(record string) Message {
	return toPeer(models.MsgReplaceClientRecord, record)
}

func RemoveClientRecord(identifier string) Message {
	return toPeer(models.MsgRemoveClientRecord, identifier)
}

func MappedID(peerID, localID string) Message {
	return toPeer(models.MsgMappedID, peerID, localID)
}

func ClientChangesCompleted() Message {
	return toPeer(models.MsgClientChangesCompleted)
}

func ClientError() Message {
	return toPeer(models.MsgClientError)
}

func ClientEnd() Message {
	return toPeer(models.MsgClientEnd)
}
