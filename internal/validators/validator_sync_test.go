// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/models"
)

const contactWire = `<Contact><Identifier>peer-1</Identifier><FirstName>Grace</FirstName></Contact>`

func TestNewSyncValidator(t *testing.T) {
	v := NewSyncValidator(1024)
	require.NotNil(t, v)
}

func TestValidate_Dispatch(t *testing.T) {
	v := NewSyncValidator(1024)
	ctx := context.Background()

	peer := models.PeerInfo{ClientID: "desk"}
	record := models.WireRecord{Dataset: models.Contacts, Data: []byte(contactWire)}

	assert.NoError(t, v.Validate(ctx, peer))
	assert.NoError(t, v.Validate(ctx, &peer))
	assert.NoError(t, v.Validate(ctx, record))
	assert.NoError(t, v.Validate(ctx, &record))
	assert.ErrorIs(t, v.Validate(ctx, "desk"), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(ctx, peer, "remote"), ErrUnknownField)
	assert.ErrorIs(t, v.Validate(ctx, record, FieldClientID), ErrUnknownField)
}

func TestValidate_ClientID(t *testing.T) {
	v := NewSyncValidator(1024)

	tests := []struct {
		name     string
		clientID string
		wantErr  error
	}{
		{name: "plain", clientID: "workstation-1"},
		{name: "unicode", clientID: "büro"},
		{name: "empty", clientID: "", wantErr: ErrEmptyClientID},
		{name: "too long", clientID: strings.Repeat("a", MaxClientIDLength+1), wantErr: ErrClientIDTooLong},
		{name: "space", clientID: "my desk", wantErr: ErrInvalidClientID},
		{name: "control", clientID: "desk\x00", wantErr: ErrInvalidClientID},
		{name: "invalid utf8", clientID: "desk\xff", wantErr: ErrInvalidClientID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), models.PeerInfo{ClientID: tt.clientID}, FieldClientID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_WireRecord(t *testing.T) {
	v := NewSyncValidator(256)

	tests := []struct {
		name    string
		record  models.WireRecord
		fields  []string
		wantErr error
	}{
		{
			name:   "contact",
			record: models.WireRecord{Dataset: models.Contacts, Data: []byte(contactWire)},
		},
		{
			name:   "local task",
			record: models.WireRecord{Dataset: models.Tasks, Data: []byte(`<Task><Identifier localIdentifier="true">t-1</Identifier></Task>`)},
		},
		{
			name:    "unknown dataset",
			record:  models.WireRecord{Dataset: "notes", Data: []byte(contactWire)},
			wantErr: ErrInvalidDataset,
		},
		{
			name:    "empty",
			record:  models.WireRecord{Dataset: models.Contacts},
			wantErr: ErrEmptyRecord,
		},
		{
			name:    "too large",
			record:  models.WireRecord{Dataset: models.Contacts, Data: []byte(strings.Repeat("x", 200))},
			fields:  []string{FieldData},
			wantErr: ErrRecordTooLarge,
		},
		{
			name:    "wrong dataset",
			record:  models.WireRecord{Dataset: models.Tasks, Data: []byte(contactWire)},
			wantErr: ErrKindMismatch,
		},
		{
			name:    "not a record",
			record:  models.WireRecord{Dataset: models.Tasks, Data: []byte(`<Memo/>`)},
			wantErr: ErrKindMismatch,
		},
		{
			name:    "no identifier",
			record:  models.WireRecord{Dataset: models.Contacts, Data: []byte(`<Contact><FirstName>A</FirstName></Contact>`)},
			wantErr: ErrInvalidIdentifier,
		},
		{
			name:   "only kind",
			record: models.WireRecord{Dataset: models.Contacts, Data: []byte(`<Contact/>`)},
			fields: []string{FieldKind},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.record, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_NoFrameLimit(t *testing.T) {
	v := NewSyncValidator(0)
	big := `<Contact><Identifier>p</Identifier><Note>` + strings.Repeat("x", 1<<16) + `</Note></Contact>`

	assert.NoError(t, v.Validate(context.Background(), models.WireRecord{Dataset: models.Contacts, Data: []byte(big)}))
}
