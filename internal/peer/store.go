package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MKhiriev/go-pim-sync/internal/codec"
	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/validators"
	"github.com/MKhiriev/go-pim-sync/models"
)

const (
	anchorsFile = "anchors.json"
	outboxDir   = "outbox"
	recordExt   = ".xml"
	removeExt   = ".remove"
)

// DirStore keeps the desktop copy of the device data in a directory:
//
//	<root>/anchors.json              last sync anchor per dataset
//	<root>/<dataset>/<id>.xml        records pulled from the device
//	<root>/<dataset>/outbox/*.xml    records to push (create or replace)
//	<root>/<dataset>/outbox/*.remove ids to remove, one per file
//
// Outbox records with a local identifier are pushed as replacements, all
// others as new records.
type DirStore struct {
	root      string
	validator validators.Validator
}

// NewDirStore creates root when missing.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, errors.New("empty output directory")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &DirStore{root: root, validator: validators.NewSyncValidator(config.DefaultMaxFrameBytes)}, nil
}

// Anchor returns the stored anchor of dataset, "" when none.
func (s *DirStore) Anchor(dataset models.Dataset) (string, error) {
	anchors, err := s.anchors()
	if err != nil {
		return "", err
	}
	return anchors[dataset.String()], nil
}

// SetAnchor stores anchor for dataset.
func (s *DirStore) SetAnchor(dataset models.Dataset, anchor string) error {
	anchors, err := s.anchors()
	if err != nil {
		return err
	}
	anchors[dataset.String()] = anchor

	data, err := json.MarshalIndent(anchors, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.root, anchorsFile), data)
}

func (s *DirStore) anchors() (map[string]string, error) {
	anchors := make(map[string]string)

	data, err := os.ReadFile(filepath.Join(s.root, anchorsFile))
	if errors.Is(err, os.ErrNotExist) {
		return anchors, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read anchors: %w", err)
	}
	if err := json.Unmarshal(data, &anchors); err != nil {
		return nil, fmt.Errorf("decode anchors: %w", err)
	}
	return anchors, nil
}

// Put stores a record pulled from the device under its identifier and
// returns that identifier.
func (s *DirStore) Put(dataset models.Dataset, wire string) (string, error) {
	_, id, err := codec.Identify([]byte(wire))
	if err != nil {
		return "", err
	}

	return id.Value, s.PutAs(dataset, id.Value, wire)
}

// PutAs stores wire under id.
func (s *DirStore) PutAs(dataset models.Dataset, id, wire string) error {
	dir := filepath.Join(s.root, dataset.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, fileName(id, recordExt)), []byte(wire))
}

// Delete removes a pulled record. A missing record is not an error.
func (s *DirStore) Delete(dataset models.Dataset, id string) error {
	err := os.Remove(filepath.Join(s.root, dataset.String(), fileName(id, recordExt)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Records returns the ids of the pulled records of dataset, sorted.
func (s *DirStore) Records(dataset models.Dataset) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, dataset.String()))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(e.Name(), recordExt))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Pending is an outbox entry with the change it stands for.
type Pending struct {
	Path   string
	Change Change
}

// Outbox lists the pending pushes of dataset in file name order.
func (s *DirStore) Outbox(dataset models.Dataset) ([]Pending, error) {
	dir := filepath.Join(s.root, dataset.String(), outboxDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pending []Pending
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())

		switch filepath.Ext(e.Name()) {
		case recordExt:
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			if err := s.validator.Validate(context.Background(), models.WireRecord{Dataset: dataset, Data: data}); err != nil {
				return nil, fmt.Errorf("outbox %s: %w", e.Name(), err)
			}
			_, id, err := codec.Identify(data)
			if err != nil {
				return nil, fmt.Errorf("outbox %s: %w", e.Name(), err)
			}
			op := OpCreate
			if id.Local {
				op = OpReplace
			}
			pending = append(pending, Pending{Path: path, Change: Change{Op: op, Record: string(data), ID: id.Value}})
		case removeExt:
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			id := strings.TrimSpace(string(data))
			if id == "" {
				return nil, fmt.Errorf("outbox %s: empty id", e.Name())
			}
			pending = append(pending, Pending{Path: path, Change: Change{Op: OpRemove, ID: id}})
		}
	}
	return pending, nil
}

// Done removes pushed outbox entries.
func (s *DirStore) Done(pending []Pending) error {
	var errs []error
	for _, p := range pending {
		if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func fileName(id, ext string) string {
	return url.PathEscape(id) + ext
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
