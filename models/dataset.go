// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
)

// ErrUnknownDataset is returned by [ParseDataset] for names outside the
// supported PIM record families.
var ErrUnknownDataset = errors.New("unknown dataset")

// Dataset names one PIM record family. The string value is the name used on
// the wire in serverSyncRequest and in storage tables.
type Dataset string

const (
	Contacts     Dataset = "contacts"
	Tasks        Dataset = "tasks"
	Appointments Dataset = "appointments"
)

// Datasets lists every supported dataset in the order they are synchronized
// when a peer asks for all of them.
var Datasets = []Dataset{Contacts, Tasks, Appointments}

// ParseDataset converts a wire dataset name into a [Dataset].
func ParseDataset(name string) (Dataset, error) {
	switch Dataset(name) {
	case Contacts, Tasks, Appointments:
		return Dataset(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
}

// Kind returns the record kind stored in the dataset.
func (d Dataset) Kind() Kind {
	switch d {
	case Contacts:
		return KindContact
	case Tasks:
		return KindTask
	case Appointments:
		return KindAppointment
	default:
		return KindUnknown
	}
}

func (d Dataset) String() string {
	return string(d)
}
