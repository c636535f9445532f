package models

import "time"

// StoredCredential is one salted peer credential hash kept by the device.
// The list of stored credentials is ordered most recent first.
type StoredCredential struct {
	Salt      []byte
	Hash      []byte
	CreatedAt time.Time
}

// Category is a named grouping label shared by every dataset.
type Category struct {
	ID    string
	Label string
}

// PeerInfo describes a desktop peer asking to authenticate.
type PeerInfo struct {
	ClientID  string
	Remote    string
	Transport string
}
