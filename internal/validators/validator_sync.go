package validators

import (
	"context"
	"encoding/base64"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/MKhiriev/go-pim-sync/internal/codec"
	"github.com/MKhiriev/go-pim-sync/models"
)

const (
	FieldClientID   = "client_id"
	FieldDataset    = "dataset"
	FieldData       = "data"
	FieldKind       = "kind"
	FieldIdentifier = "identifier"
)

// MaxClientIDLength bounds the USER argument.
const MaxClientIDLength = 128

// callOverhead covers the verb, channel and message name of a CALL line
// carrying a record.
const callOverhead = 64

type SyncValidator struct {
	maxFrameBytes int
}

// NewSyncValidator returns a Validator for [models.PeerInfo] and
// [models.WireRecord]. Records must fit a CALL line of maxFrameBytes once
// base64 encoded.
func NewSyncValidator(maxFrameBytes int) Validator {
	return &SyncValidator{maxFrameBytes: maxFrameBytes}
}

func (v *SyncValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.PeerInfo:
		return v.validatePeer(ctx, value, fields...)
	case *models.PeerInfo:
		return v.validatePeer(ctx, *value, fields...)

	case models.WireRecord:
		return v.validateRecord(ctx, value, fields...)
	case *models.WireRecord:
		return v.validateRecord(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncValidator) validatePeer(_ context.Context, peer models.PeerInfo, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldClientID}
	}

	for _, f := range fields {
		switch f {
		case FieldClientID:
			if peer.ClientID == "" {
				return ErrEmptyClientID
			}
			if len(peer.ClientID) > MaxClientIDLength {
				return ErrClientIDTooLong
			}
			if !utf8.ValidString(peer.ClientID) {
				return ErrInvalidClientID
			}
			for _, r := range peer.ClientID {
				if unicode.IsSpace(r) || !unicode.IsPrint(r) {
					return ErrInvalidClientID
				}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncValidator) validateRecord(_ context.Context, record models.WireRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldDataset, FieldData, FieldKind, FieldIdentifier}
	}

	for _, f := range fields {
		switch f {
		case FieldDataset:
			if _, err := models.ParseDataset(record.Dataset.String()); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
			}
		case FieldData:
			if len(record.Data) == 0 {
				return ErrEmptyRecord
			}
			if v.maxFrameBytes > 0 && base64.StdEncoding.EncodedLen(len(record.Data))+callOverhead > v.maxFrameBytes {
				return ErrRecordTooLarge
			}
		case FieldKind:
			kind, err := codec.Kind(record.Data)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrKindMismatch, err)
			}
			if kind.Dataset() != record.Dataset {
				return fmt.Errorf("%w: %s in %s", ErrKindMismatch, kind, record.Dataset)
			}
		case FieldIdentifier:
			if _, _, err := codec.Identify(record.Data); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
