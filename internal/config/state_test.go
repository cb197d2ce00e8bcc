package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crewdeck/internal/account"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	st, err := OpenStateStore(path)
	require.NoError(t, err)

	tc, err := st.LoadTeamContext()
	require.NoError(t, err)
	assert.Nil(t, tc)
	assert.Empty(t, st.SelectedThreads())
}

func TestStateCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenStateStore(path)
	assert.Error(t, err)

	// The degraded path: a fresh store over the same file still works.
	st := NewStateStore(path)
	tc, err := st.LoadTeamContext()
	require.NoError(t, err)
	assert.Nil(t, tc)
}

func TestStateTeamContextRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := NewStateStore(path)

	want := &account.TeamContext{
		AccountID: "acc-t1",
		Name:      "Platform Team",
		Slug:      "platform",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.SaveTeamContext(want))

	// Re-open from disk.
	reopened, err := OpenStateStore(path)
	require.NoError(t, err)

	got, err := reopened.LoadTeamContext()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.AccountID, got.AccountID)
	assert.Equal(t, want.Slug, got.Slug)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
}

func TestStateSaveNilClearsContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := NewStateStore(path)

	require.NoError(t, st.SaveTeamContext(&account.TeamContext{AccountID: "acc-t1"}))
	require.NoError(t, st.SaveTeamContext(nil))

	reopened, err := OpenStateStore(path)
	require.NoError(t, err)
	tc, err := reopened.LoadTeamContext()
	require.NoError(t, err)
	assert.Nil(t, tc)
}

func TestStateSelectedThreadsCopied(t *testing.T) {
	st := NewStateStore(filepath.Join(t.TempDir(), "state.json"))

	ids := []string{"th-1", "th-2"}
	st.SetSelectedThreads(ids)
	ids[0] = "mutated"

	got := st.SelectedThreads()
	assert.Equal(t, []string{"th-1", "th-2"}, got)

	got[1] = "mutated"
	assert.Equal(t, []string{"th-1", "th-2"}, st.SelectedThreads())
}

func TestStateReloadPicksUpExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := NewStateStore(path)
	require.NoError(t, st.Save())

	other := NewStateStore(path)
	require.NoError(t, other.SaveTeamContext(&account.TeamContext{
		AccountID: "acc-t9",
		Timestamp: time.Now(),
	}))

	require.NoError(t, st.Reload())
	tc, err := st.LoadTeamContext()
	require.NoError(t, err)
	require.NotNil(t, tc)
	assert.Equal(t, "acc-t9", tc.AccountID)
}

func TestStateLastAccount(t *testing.T) {
	st := NewStateStore(filepath.Join(t.TempDir(), "state.json"))

	assert.Empty(t, st.LastAccount())
	st.SetLastAccount("acc-p")
	assert.Equal(t, "acc-p", st.LastAccount())
}
