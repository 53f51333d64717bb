package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "runs.db")
	store, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	store, _ := openTestStore(t)

	run := &Run{
		Description: "block facebook every time",
		Source:      "local",
		OutputDir:   "generated_extension",
		Files:       []string{"background.js"},
	}
	require.NoError(t, store.Record(run))

	_, err := uuid.Parse(run.ID)
	assert.NoError(t, err, "assigned ID must be a UUID")
	assert.WithinDuration(t, time.Now().UTC(), run.CreatedAt, 5*time.Second)
}

func TestRecordListRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)

	run := &Run{
		Description:     "pomodoro timer with notifications",
		NeedsPopup:      true,
		NeedsBackground: true,
		NeedsCSS:        true,
		Permissions:     []string{"alarms"},
		Features:        []string{"popup_ui", "background_logic"},
		Source:          "local",
		OutputDir:       "out/pomodoro",
		Files:           []string{"popup.html", "popup.js", "background.js", "styles.css"},
	}
	require.NoError(t, store.Record(run))

	runs, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Description, got.Description)
	assert.True(t, got.NeedsPopup)
	assert.False(t, got.NeedsContentScript)
	assert.True(t, got.NeedsBackground)
	assert.True(t, got.NeedsCSS)
	assert.Equal(t, run.Permissions, got.Permissions)
	assert.Equal(t, run.Features, got.Features)
	assert.Equal(t, run.Files, got.Files)
	assert.Equal(t, "local", got.Source)
	assert.Equal(t, "out/pomodoro", got.OutputDir)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Second)
}

func TestListNewestFirst(t *testing.T) {
	store, _ := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, desc := range []string{"first", "second", "third"} {
		run := &Run{
			Description: desc,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			Source:      "local",
			OutputDir:   "out",
		}
		require.NoError(t, store.Record(run))
	}

	runs, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].Description)
	assert.Equal(t, "second", runs[1].Description)
}

func TestListDefaultLimit(t *testing.T) {
	store, _ := openTestStore(t)

	for i := 0; i < 25; i++ {
		run := &Run{
			Description: "run",
			CreatedAt:   time.Date(2025, 6, 1, 0, i, 0, 0, time.UTC),
			Source:      "local",
			OutputDir:   "out",
		}
		require.NoError(t, store.Record(run))
	}

	runs, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, runs, 20)
}

func TestCount(t *testing.T) {
	store, _ := openTestStore(t)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, store.Record(&Run{Description: "a", Source: "local", OutputDir: "out"}))
	require.NoError(t, store.Record(&Run{Description: "b", Source: "remote", OutputDir: "out"}))

	n, err = store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Record(&Run{Description: "persisted", Source: "local", OutputDir: "out"}))
	require.NoError(t, store.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	runs, err := reopened.List(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "persisted", runs[0].Description)
}

func TestEmptyListsStayNil(t *testing.T) {
	store, _ := openTestStore(t)

	require.NoError(t, store.Record(&Run{Description: "no extras", Source: "local", OutputDir: "out"}))

	runs, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Permissions)
	assert.Nil(t, runs[0].Features)
	assert.Nil(t, runs[0].Files)
}
