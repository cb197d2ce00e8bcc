package threads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAggregatePreservesThreadOrder(t *testing.T) {
	ts := []Thread{
		{ID: "th-3", ProjectID: "p-1"},
		{ID: "th-1", ProjectID: "p-2"},
		{ID: "th-2", ProjectID: "p-1"},
	}
	ps := []Project{
		{ID: "p-2", Name: "api"},
		{ID: "p-1", Name: "web", SandboxID: strPtr("sb-1")},
	}

	got := Aggregate(ts, ps)
	require.Len(t, got, 3)
	assert.Equal(t, "th-3", got[0].ID)
	assert.Equal(t, "th-1", got[1].ID)
	assert.Equal(t, "th-2", got[2].ID)
	assert.Equal(t, "web", got[0].ProjectName)
	assert.Equal(t, "api", got[1].ProjectName)
	require.NotNil(t, got[0].SandboxID)
	assert.Equal(t, "sb-1", *got[0].SandboxID)
	assert.Nil(t, got[1].SandboxID)
}

func TestAggregateOrphanThreadGetsPlaceholder(t *testing.T) {
	ts := []Thread{{ID: "th-1", ProjectID: "p-gone"}}

	got := Aggregate(ts, nil)
	require.Len(t, got, 1)
	assert.Equal(t, PlaceholderProjectName, got[0].ProjectName)
	assert.Nil(t, got[0].SandboxID)
}

func TestAggregateEmptyInputs(t *testing.T) {
	got := Aggregate(nil, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Aggregate(nil, []Project{{ID: "p-1", Name: "web"}})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSandboxMap(t *testing.T) {
	list := []ThreadWithProject{
		{Thread: Thread{ID: "th-1"}, SandboxID: strPtr("sb-1")},
		{Thread: Thread{ID: "th-2"}},
		{Thread: Thread{ID: "th-3"}, SandboxID: strPtr("sb-3")},
		{Thread: Thread{ID: "th-4"}, SandboxID: strPtr("")},
	}

	m := SandboxMap(list, []string{"th-1", "th-2", "th-4"})
	assert.Equal(t, map[string]string{"th-1": "sb-1"}, m)

	// IDs outside the requested set are never included.
	_, ok := m["th-3"]
	assert.False(t, ok)
}
