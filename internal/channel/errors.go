package channel

import "errors"

var (
	ErrNoSubscriber   = errors.New("no subscriber on channel")
	ErrUnknownMessage = errors.New("unknown message")
	ErrArity          = errors.New("wrong number of message arguments")
)
