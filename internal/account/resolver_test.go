package account

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ContextStore for resolver tests.
type memStore struct {
	tc      *TeamContext
	loadErr error
	saves   int
}

func (m *memStore) LoadTeamContext() (*TeamContext, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.tc, nil
}

func (m *memStore) SaveTeamContext(tc *TeamContext) error {
	m.tc = tc
	m.saves++
	return nil
}

// recordingNav records navigation calls in order.
type recordingNav struct {
	pushes  []string
	reloads int
}

func (n *recordingNav) Push(route string) { n.pushes = append(n.pushes, route) }
func (n *recordingNav) Reload()           { n.reloads++ }

func testAccounts() []Account {
	return []Account{
		{ID: "acc-p", Name: "Alice", Personal: true, UserID: "u1"},
		{ID: "acc-t1", Name: "Platform Team", Slug: "platform", UserID: "u1"},
		{ID: "acc-t2", Name: "Research", Slug: "research", UserID: "u1"},
	}
}

func newTestResolver(store ContextStore) *Resolver {
	r := NewResolver(store, 5*time.Minute, nil)
	r.SetClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	return r
}

func TestResolveSlugWins(t *testing.T) {
	store := &memStore{tc: &TeamContext{
		AccountID: "acc-t2",
		Timestamp: time.Date(2025, 6, 1, 11, 59, 0, 0, time.UTC),
	}}
	r := newTestResolver(store)

	// A slug in the path beats a fresh persisted context for another team.
	acc, err := r.Resolve("/platform/threads/42", testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "acc-t1", acc.ID)
}

func TestResolveDashboardNotASlug(t *testing.T) {
	store := &memStore{tc: &TeamContext{
		AccountID: "acc-t2",
		Timestamp: time.Date(2025, 6, 1, 11, 58, 0, 0, time.UTC),
	}}
	r := newTestResolver(store)

	acc, err := r.Resolve("/dashboard", testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "acc-t2", acc.ID)
}

func TestResolveExpiredContextFallsToPersonal(t *testing.T) {
	store := &memStore{tc: &TeamContext{
		AccountID: "acc-t2",
		Timestamp: time.Date(2025, 6, 1, 11, 55, 0, 0, time.UTC), // exactly TTL old
	}}
	r := newTestResolver(store)

	acc, err := r.Resolve("/dashboard", testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "acc-p", acc.ID)
}

func TestResolveUnknownSlugFallsThrough(t *testing.T) {
	r := newTestResolver(&memStore{})

	acc, err := r.Resolve("/settings/profile", testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "acc-p", acc.ID)
}

func TestResolveCorruptStoreDegradesToPersonal(t *testing.T) {
	store := &memStore{loadErr: errors.New("unexpected end of JSON input")}
	r := newTestResolver(store)

	acc, err := r.Resolve("/dashboard", testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "acc-p", acc.ID)
}

func TestResolveEmptyAccounts(t *testing.T) {
	r := newTestResolver(&memStore{})

	_, err := r.Resolve("/platform", nil)
	assert.ErrorIs(t, err, ErrNoAccount)
}

func TestResolveContextForMissingTeamFallsToPersonal(t *testing.T) {
	// A context pointing at an account the user no longer belongs to.
	store := &memStore{tc: &TeamContext{
		AccountID: "acc-gone",
		Timestamp: time.Date(2025, 6, 1, 11, 59, 0, 0, time.UTC),
	}}
	r := newTestResolver(store)

	acc, err := r.Resolve("/dashboard", testAccounts())
	require.NoError(t, err)
	assert.Equal(t, "acc-p", acc.ID)
}

func TestResolveDeterministic(t *testing.T) {
	store := &memStore{tc: &TeamContext{
		AccountID: "acc-t1",
		Timestamp: time.Date(2025, 6, 1, 11, 59, 0, 0, time.UTC),
	}}
	r := newTestResolver(store)

	first, err := r.Resolve("/research/threads", testAccounts())
	require.NoError(t, err)
	second, err := r.Resolve("/research/threads", testAccounts())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolvePersistsContextForSlugMatch(t *testing.T) {
	store := &memStore{}
	r := newTestResolver(store)

	_, err := r.Resolve("/platform", testAccounts())
	require.NoError(t, err)

	require.NotNil(t, store.tc)
	assert.Equal(t, "acc-t1", store.tc.AccountID)
	assert.Equal(t, "platform", store.tc.Slug)
}

func TestResolveKeepsExistingContextTimestamp(t *testing.T) {
	orig := &TeamContext{
		AccountID: "acc-t1",
		Slug:      "platform",
		Timestamp: time.Date(2025, 6, 1, 11, 59, 0, 0, time.UTC),
	}
	store := &memStore{tc: orig}
	r := newTestResolver(store)

	_, err := r.Resolve("/platform", testAccounts())
	require.NoError(t, err)

	assert.Equal(t, 0, store.saves)
	assert.Equal(t, orig.Timestamp, store.tc.Timestamp)
}

func TestSwitchTeamPersistsAndNavigates(t *testing.T) {
	store := &memStore{}
	nav := &recordingNav{}
	r := newTestResolver(store)

	accounts := testAccounts()
	require.NoError(t, r.Switch(&accounts[2], nav))

	require.NotNil(t, store.tc)
	assert.Equal(t, "acc-t2", store.tc.AccountID)
	assert.Equal(t, []string{DashboardRoute}, nav.pushes)
	assert.Equal(t, 1, nav.reloads)
}

func TestSwitchPersonalClearsContext(t *testing.T) {
	store := &memStore{tc: &TeamContext{AccountID: "acc-t1"}}
	nav := &recordingNav{}
	r := newTestResolver(store)

	accounts := testAccounts()
	require.NoError(t, r.Switch(&accounts[0], nav))

	assert.Nil(t, store.tc)
	assert.Equal(t, []string{DashboardRoute}, nav.pushes)
}

func TestFirstSegment(t *testing.T) {
	assert.Equal(t, "platform", firstSegment("/platform/threads/42"))
	assert.Equal(t, "platform", firstSegment("platform"))
	assert.Equal(t, "", firstSegment("/"))
	assert.Equal(t, "", firstSegment(""))
}
