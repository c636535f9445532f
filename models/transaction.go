package models

import "time"

// TransactionState is the lifecycle state of a dataset transaction.
type TransactionState int

const (
	TxBegun TransactionState = iota
	TxCommitted
	TxAborted
)

func (s TransactionState) String() string {
	switch s {
	case TxBegun:
		return "begun"
	case TxCommitted:
		return "committed"
	case TxAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Transaction scopes the changes applied to one dataset within one sync
// session. It owns the identifier mappings and the unresolved category labels
// collected while the transaction is open.
type Transaction struct {
	Dataset   Dataset
	Timestamp time.Time
	State     TransactionState

	IDs        *IdentifierMap
	Unresolved *UnresolvedCategorySet
}

// NewTransaction returns a begun transaction for dataset stamped ts.
func NewTransaction(dataset Dataset, ts time.Time) *Transaction {
	return &Transaction{
		Dataset:    dataset,
		Timestamp:  ts,
		State:      TxBegun,
		IDs:        NewIdentifierMap(),
		Unresolved: NewUnresolvedCategorySet(),
	}
}

// Open reports whether the transaction still accepts changes.
func (t *Transaction) Open() bool {
	return t != nil && t.State == TxBegun
}

// IDMapping associates a peer identifier with the local identifier the device
// assigned to the same record.
type IDMapping struct {
	PeerID  string
	LocalID string
}

// IdentifierMap is a bidirectional peer ⇄ local identifier association that
// remembers insertion order.
type IdentifierMap struct {
	toLocal map[string]string
	toPeer  map[string]string
	order   []IDMapping
}

// NewIdentifierMap returns an empty map.
func NewIdentifierMap() *IdentifierMap {
	return &IdentifierMap{
		toLocal: make(map[string]string),
		toPeer:  make(map[string]string),
	}
}

// Add records that peerID now maps to localID. Re-adding a peer id replaces
// its previous association.
func (m *IdentifierMap) Add(peerID, localID string) {
	if old, ok := m.toLocal[peerID]; ok {
		delete(m.toPeer, old)
		for i := range m.order {
			if m.order[i].PeerID == peerID {
				m.order[i].LocalID = localID
			}
		}
	} else {
		m.order = append(m.order, IDMapping{PeerID: peerID, LocalID: localID})
	}
	m.toLocal[peerID] = localID
	m.toPeer[localID] = peerID
}

// Local returns the local identifier mapped to peerID.
func (m *IdentifierMap) Local(peerID string) (string, bool) {
	id, ok := m.toLocal[peerID]
	return id, ok
}

// Peer returns the peer identifier mapped to localID.
func (m *IdentifierMap) Peer(localID string) (string, bool) {
	id, ok := m.toPeer[localID]
	return id, ok
}

// Mappings returns every association in insertion order.
func (m *IdentifierMap) Mappings() []IDMapping {
	out := make([]IDMapping, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of associations.
func (m *IdentifierMap) Len() int {
	return len(m.order)
}

// UnresolvedCategorySet collects category labels that had no local category
// when a record was decoded.
type UnresolvedCategorySet struct {
	seen   map[string]struct{}
	labels []string
}

// NewUnresolvedCategorySet returns an empty set.
func NewUnresolvedCategorySet() *UnresolvedCategorySet {
	return &UnresolvedCategorySet{seen: make(map[string]struct{})}
}

// Add inserts label; duplicates are ignored.
func (s *UnresolvedCategorySet) Add(label string) {
	if _, ok := s.seen[label]; ok {
		return
	}
	s.seen[label] = struct{}{}
	s.labels = append(s.labels, label)
}

// Contains reports whether label was added.
func (s *UnresolvedCategorySet) Contains(label string) bool {
	_, ok := s.seen[label]
	return ok
}

// Labels returns the labels in first-seen order.
func (s *UnresolvedCategorySet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Len returns the number of distinct labels.
func (s *UnresolvedCategorySet) Len() int {
	return len(s.labels)
}
