package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/store"
	"github.com/MKhiriev/go-pim-sync/models"
)

func newTestPlugin(t *testing.T, dataset models.Dataset) (DatasetPlugin, *store.Storages) {
	t.Helper()
	s := newTestStorages(t)
	return NewDatasetPlugin(dataset, s, &seqIDs{}, logger.Nop()), s
}

func seedContact(t *testing.T, s *store.Storages, id, first string, stamp time.Time) {
	t.Helper()
	err := s.Records(s.DB, models.Contacts).Add(testContext(), models.Record{
		Kind:    models.KindContact,
		ID:      id,
		Contact: &models.Contact{FirstName: first},
	}, stamp)
	require.NoError(t, err)
}

func contactWire(id string, local bool, first string) []byte {
	flag := "false"
	if local {
		flag = "true"
	}
	return []byte(`<Contact><Identifier localIdentifier="` + flag + `">` + id + `</Identifier><FirstName>` + first + `</FirstName></Contact>`)
}

func TestDatasetPlugin_TransactionGuards(t *testing.T) {
	p, _ := newTestPlugin(t, models.Contacts)
	ctx := testContext()

	assert.ErrorIs(t, p.CreateServerRecord(ctx, contactWire("p1", false, "A")), ErrNoTransaction)
	assert.ErrorIs(t, p.RemoveServerRecord(ctx, "p1"), ErrNoTransaction)
	assert.ErrorIs(t, p.FetchChangesSince(ctx, nil, &recordingSink{}), ErrNoTransaction)
	assert.ErrorIs(t, p.CommitTransaction(ctx), ErrNoTransaction)
	assert.NoError(t, p.AbortTransaction(ctx))

	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Contacts, ts(10))))
	assert.ErrorIs(t, p.BeginTransaction(ctx, models.NewTransaction(models.Contacts, ts(11))), ErrTransactionOpen)
	require.NoError(t, p.AbortTransaction(ctx))

	err := p.BeginTransaction(ctx, models.NewTransaction(models.Tasks, ts(12)))
	assert.ErrorIs(t, err, ErrApplyFailure)
}

func TestDatasetPlugin_CreateWithPeerIDMaps(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()
	txn := models.NewTransaction(models.Contacts, ts(10))

	require.NoError(t, p.BeginTransaction(ctx, txn))
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("peer-1", false, "Ada")))
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("peer-2", false, "Grace")))
	// Same peer id again in the transaction replaces the mapped record.
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("peer-1", false, "Ada L.")))
	require.NoError(t, p.CommitTransaction(ctx))

	assert.Equal(t, []models.IDMapping{
		{PeerID: "peer-1", LocalID: "local-1"},
		{PeerID: "peer-2", LocalID: "local-2"},
	}, txn.IDs.Mappings())
	assert.Equal(t, models.TxCommitted, txn.State)

	got, err := s.Records(s.DB, models.Contacts).Get(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Contact.FirstName)
	assert.Empty(t, got.PeerID)
}

func TestDatasetPlugin_CreateWithLocalID(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()
	seedContact(t, s, "dev-1", "Old", ts(1))

	txn := models.NewTransaction(models.Contacts, ts(10))
	require.NoError(t, p.BeginTransaction(ctx, txn))
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("dev-1", true, "New")))
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("dev-9", true, "Fresh")))
	require.NoError(t, p.CommitTransaction(ctx))

	assert.Zero(t, txn.IDs.Len())

	repo := s.Records(s.DB, models.Contacts)
	got, err := repo.Get(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Contact.FirstName)

	got, err = repo.Get(ctx, "dev-9")
	require.NoError(t, err)
	assert.Equal(t, "Fresh", got.Contact.FirstName)
}

func TestDatasetPlugin_ReplaceIsIdempotent(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()
	seedContact(t, s, "dev-1", "Old", ts(1))
	repo := s.Records(s.DB, models.Contacts)

	wire := []byte(`<Contact><Identifier localIdentifier="true">dev-1</Identifier>` +
		`<FirstName>Ada</FirstName><Emails><Email>ada@example.org</Email></Emails></Contact>`)

	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Contacts, ts(10))))
	require.NoError(t, p.ReplaceServerRecord(ctx, wire))
	require.NoError(t, p.CommitTransaction(ctx))
	once, err := repo.Get(ctx, "dev-1")
	require.NoError(t, err)

	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Contacts, ts(20))))
	require.NoError(t, p.ReplaceServerRecord(ctx, wire))
	require.NoError(t, p.CommitTransaction(ctx))
	twice, err := repo.Get(ctx, "dev-1")
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"ada@example.org"}, twice.Contact.Emails)
}

func TestDatasetPlugin_ReplaceUnmappedPeerIDCreates(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()
	txn := models.NewTransaction(models.Contacts, ts(10))

	require.NoError(t, p.BeginTransaction(ctx, txn))
	require.NoError(t, p.ReplaceServerRecord(ctx, contactWire("peer-7", false, "Linus")))
	require.NoError(t, p.CommitTransaction(ctx))

	localID, ok := txn.IDs.Local("peer-7")
	require.True(t, ok)
	exists, err := s.Records(s.DB, models.Contacts).Exists(ctx, localID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDatasetPlugin_ReplaceRecurringReplacesExceptionSet(t *testing.T) {
	p, s := newTestPlugin(t, models.Appointments)
	ctx := testContext()
	repo := s.Records(s.DB, models.Appointments)

	day := func(d int) time.Time { return time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.Add(ctx, models.Record{
		Kind: models.KindAppointment,
		ID:   "a-1",
		Appointment: &models.Appointment{
			Description: "standup",
			Start:       time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
			End:         time.Date(2026, 5, 4, 9, 15, 0, 0, time.UTC),
			Repeat:      &models.Repeat{Type: models.RepeatDaily, Frequency: 1},
			Exceptions: []models.Exception{
				{OriginalDate: day(5)},
				{OriginalDate: day(6), Replacement: &models.Record{
					Kind:        models.KindAppointment,
					Appointment: &models.Appointment{Description: "moved", Start: time.Date(2026, 5, 6, 11, 0, 0, 0, time.UTC)},
				}},
			},
		},
	}, ts(1)))

	wire := []byte(`<Appointment><Identifier localIdentifier="true">a-1</Identifier>` +
		`<Description>standup</Description>` +
		`<Start>2026-05-04T09:00:00Z</Start><End>2026-05-04T09:15:00Z</End>` +
		`<Repeat><Type>Daily</Type><Frequency>1</Frequency>` +
		`<Exception><OriginalDate>2026-05-08</OriginalDate></Exception>` +
		`</Repeat></Appointment>`)

	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Appointments, ts(10))))
	require.NoError(t, p.ReplaceServerRecord(ctx, wire))
	require.NoError(t, p.CommitTransaction(ctx))

	got, err := repo.Get(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, got.Appointment.Exceptions, 1)
	assert.Equal(t, day(8), got.Appointment.Exceptions[0].OriginalDate)
	assert.True(t, got.Appointment.Exceptions[0].IsRemoval())
}

func TestDatasetPlugin_AbortLeavesStorageUnchanged(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()
	seedContact(t, s, "dev-1", "Keep", ts(1))
	repo := s.Records(s.DB, models.Contacts)

	txn := models.NewTransaction(models.Contacts, ts(10))
	require.NoError(t, p.BeginTransaction(ctx, txn))
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("peer-1", false, "Ghost")))
	require.NoError(t, p.ReplaceServerRecord(ctx, contactWire("dev-1", true, "Changed")))
	require.NoError(t, p.RemoveServerRecord(ctx, "dev-1"))
	require.NoError(t, p.AbortTransaction(ctx))
	assert.Equal(t, models.TxAborted, txn.State)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev-1"}, all)

	got, err := repo.Get(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.Contact.FirstName)

	// A new transaction can begin after the abort.
	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Contacts, ts(20))))
	require.NoError(t, p.AbortTransaction(ctx))
}

func TestDatasetPlugin_RemoveResolvesPeerIDs(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()
	seedContact(t, s, "dev-1", "Gone", ts(1))

	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Contacts, ts(10))))
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("peer-1", false, "Brief")))
	require.NoError(t, p.RemoveServerRecord(ctx, "peer-1"))
	require.NoError(t, p.RemoveServerRecord(ctx, "dev-1"))
	require.NoError(t, p.RemoveServerRecord(ctx, "never-existed"))
	require.NoError(t, p.CommitTransaction(ctx))

	all, err := s.Records(s.DB, models.Contacts).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDatasetPlugin_ParseErrorsSkipStructuralErrorsFail(t *testing.T) {
	p, s := newTestPlugin(t, models.Tasks)
	ctx := testContext()

	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Tasks, ts(10))))

	err := p.CreateServerRecord(ctx, []byte(`<Task><Identifier>p-1</Identifier><Priority>9</Priority></Task>`))
	require.NoError(t, err)

	err = p.CreateServerRecord(ctx, []byte(`<Contact><Identifier>p-2</Identifier></Contact>`))
	assert.ErrorIs(t, err, ErrApplyFailure)

	require.NoError(t, p.AbortTransaction(ctx))

	all, err := s.Records(s.DB, models.Tasks).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDatasetPlugin_SlowSyncEmitsEveryLiveRecordOnce(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()
	seedContact(t, s, "dev-1", "One", ts(1))
	seedContact(t, s, "dev-2", "Two", ts(2))
	seedContact(t, s, "dev-3", "Three", ts(3))
	require.NoError(t, s.Records(s.DB, models.Contacts).Remove(ctx, "dev-3", ts(4)))

	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Contacts, ts(10))))
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("peer-1", false, "FromPeer")))

	sink := &recordingSink{}
	require.NoError(t, p.FetchChangesSince(ctx, nil, sink))
	require.NoError(t, p.CommitTransaction(ctx))

	assert.Equal(t, []string{"created", "created"}, sink.calls)
	joined := string(sink.wires[0]) + string(sink.wires[1])
	assert.Contains(t, joined, `<Identifier localIdentifier="true">dev-1</Identifier>`)
	assert.Contains(t, joined, `<Identifier localIdentifier="true">dev-2</Identifier>`)
	assert.NotContains(t, joined, "FromPeer")
}

func TestDatasetPlugin_TwoWayDeltaOrder(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()
	repo := s.Records(s.DB, models.Contacts)

	seedContact(t, s, "stale", "Stale", ts(1))
	seedContact(t, s, "gone", "Gone", ts(1))
	seedContact(t, s, "edited", "Edited", ts(1))
	// last sync at ts(5)
	seedContact(t, s, "new", "New", ts(6))
	require.NoError(t, repo.Remove(ctx, "gone", ts(7)))
	require.NoError(t, repo.Update(ctx, models.Record{
		Kind: models.KindContact, ID: "edited", Contact: &models.Contact{FirstName: "Edited2"},
	}, ts(8)))

	since := ts(5)
	require.NoError(t, p.BeginTransaction(ctx, models.NewTransaction(models.Contacts, ts(10))))
	require.NoError(t, p.CreateServerRecord(ctx, contactWire("peer-1", false, "FromPeer")))
	require.NoError(t, p.ReplaceServerRecord(ctx, contactWire("stale", true, "Refreshed")))

	sink := &recordingSink{}
	require.NoError(t, p.FetchChangesSince(ctx, &since, sink))
	require.NoError(t, p.CommitTransaction(ctx))

	assert.Equal(t, []string{"created", "removed:gone", "replaced"}, sink.calls)
	assert.True(t, strings.Contains(string(sink.wires[0]), "<FirstName>New</FirstName>"))
	assert.True(t, strings.Contains(string(sink.wires[1]), "<FirstName>Edited2</FirstName>"))
}

func TestDatasetPlugin_DeferredCategoryMaterializedAfterCommit(t *testing.T) {
	p, s := newTestPlugin(t, models.Contacts)
	ctx := testContext()

	personal, err := s.Categories.Create(ctx, "Personal")
	require.NoError(t, err)

	txn := models.NewTransaction(models.Contacts, ts(10))
	require.NoError(t, p.BeginTransaction(ctx, txn))
	require.NoError(t, p.CreateServerRecord(ctx, []byte(
		`<Contact><Identifier>peer-1</Identifier>`+
			`<Categories><Category>Personal</Category><Category>Business</Category></Categories>`+
			`<FirstName>Grace</FirstName></Contact>`)))
	require.NoError(t, p.CreateServerRecord(ctx, []byte(
		`<Contact><Identifier>peer-2</Identifier>`+
			`<Categories><Category>Business</Category></Categories>`+
			`<FirstName>Alan</FirstName></Contact>`)))
	assert.Equal(t, []string{"Business"}, txn.Unresolved.Labels())

	// Not visible before commit.
	_, found, err := s.Categories.IDForLabel(ctx, "Business")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, p.CommitTransaction(ctx))

	business, found, err := s.Categories.IDForLabel(ctx, "Business")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEqual(t, "Business", business)

	repo := s.Records(s.DB, models.Contacts)
	grace, err := repo.Get(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, []string{personal, business}, grace.Categories)

	alan, err := repo.Get(ctx, "local-2")
	require.NoError(t, err)
	assert.Equal(t, []string{business}, alan.Categories)
}

func TestStoragePlugins_UnknownDataset(t *testing.T) {
	factory := StoragePlugins(newTestStorages(t), &seqIDs{}, logger.Nop())

	_, err := factory(models.Dataset("notes"))
	assert.ErrorIs(t, err, ErrUnknownDataset)

	p, err := factory(models.Tasks)
	require.NoError(t, err)
	assert.Equal(t, models.Tasks, p.Dataset())
}

var _ ChangeSink = (*recordingSink)(nil)
