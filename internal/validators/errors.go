package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyClientID     = errors.New("client id is required")
	ErrClientIDTooLong   = errors.New("client id is too long")
	ErrInvalidClientID   = errors.New("client id contains blank or control characters")
	ErrInvalidDataset    = errors.New("invalid dataset")
	ErrEmptyRecord       = errors.New("record is empty")
	ErrRecordTooLarge    = errors.New("record does not fit in one frame")
	ErrKindMismatch      = errors.New("record kind does not match dataset")
	ErrInvalidIdentifier = errors.New("record identifier is missing or malformed")
)
