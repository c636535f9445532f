package peer

import "errors"

var (
	// ErrNotAuthorized is returned when the device answers the login with
	// 530.
	ErrNotAuthorized = errors.New("device refused the credential")

	// ErrBusy is returned when the device is serving another session.
	ErrBusy = errors.New("device is busy with another session")

	// ErrProtocol reports a line the device should not have sent.
	ErrProtocol = errors.New("unexpected reply from device")

	// ErrTimeout is returned when the device stays silent for the request
	// timeout.
	ErrTimeout = errors.New("device did not answer in time")

	// ErrConnectionLost is returned once the device closed the connection.
	ErrConnectionLost = errors.New("connection to device lost")

	// ErrVersionMismatch is returned when the device rejects the protocol
	// version.
	ErrVersionMismatch = errors.New("device rejected protocol version")

	// ErrDatasetRejected is returned when the device answers a sync request
	// with clientError before choosing a sync mode.
	ErrDatasetRejected = errors.New("device rejected dataset sync")
)
