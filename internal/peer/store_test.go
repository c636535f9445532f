package peer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/internal/validators"
	"github.com/MKhiriev/go-pim-sync/models"
)

func TestDirStore_Anchors(t *testing.T) {
	st, err := NewDirStore(filepath.Join(t.TempDir(), "pim"))
	require.NoError(t, err)

	got, err := st.Anchor(models.Tasks)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, st.SetAnchor(models.Tasks, "2026-05-01T12:00:00Z"))
	require.NoError(t, st.SetAnchor(models.Contacts, "2026-05-01T12:05:00Z"))

	got, err = st.Anchor(models.Tasks)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01T12:00:00Z", got)
}

func TestDirStore_Records(t *testing.T) {
	st, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	id, err := st.Put(models.Tasks, `<Task><Identifier localIdentifier="true">a/b</Identifier></Task>`)
	require.NoError(t, err)
	assert.Equal(t, "a/b", id)
	require.NoError(t, st.PutAs(models.Tasks, "c", `<Task/>`))

	ids, err := st.Records(models.Tasks)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "c"}, ids)

	require.NoError(t, st.Delete(models.Tasks, "a/b"))
	require.NoError(t, st.Delete(models.Tasks, "missing"))

	ids, err = st.Records(models.Tasks)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)

	_, err = st.Put(models.Tasks, `<Task/>`)
	require.Error(t, err)
}

func TestDirStore_Outbox(t *testing.T) {
	root := t.TempDir()
	st, err := NewDirStore(root)
	require.NoError(t, err)

	dir := filepath.Join(root, "appointments", "outbox")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("1.xml", `<Appointment><Identifier>p-1</Identifier></Appointment>`)
	write("2.xml", `<Appointment><Identifier localIdentifier="true">local-4</Identifier></Appointment>`)
	write("3.remove", "local-7\n")
	write("notes.txt", "ignored")

	pending, err := st.Outbox(models.Appointments)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, OpCreate, pending[0].Change.Op)
	assert.Equal(t, "p-1", pending[0].Change.ID)
	assert.Equal(t, OpReplace, pending[1].Change.Op)
	assert.Equal(t, Change{Op: OpRemove, ID: "local-7"}, pending[2].Change)

	require.NoError(t, st.Done(pending))
	pending, err = st.Outbox(models.Appointments)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDirStore_OutboxRejectsForeignRecord(t *testing.T) {
	root := t.TempDir()
	st, err := NewDirStore(root)
	require.NoError(t, err)

	dir := filepath.Join(root, "tasks", "outbox")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.xml"),
		[]byte(`<Contact><Identifier>p-1</Identifier></Contact>`), 0o644))

	_, err = st.Outbox(models.Tasks)
	require.ErrorIs(t, err, validators.ErrKindMismatch)
}

func TestNewDirStore_EmptyRoot(t *testing.T) {
	_, err := NewDirStore("")
	require.Error(t, err)
}
