package account

import (
	"fmt"
	"strings"
	"time"
)

// Logger is the subset of the logging package the resolver needs. Kept as a
// local interface so the package stays free of wiring dependencies.
type Logger interface {
	Warn(msg string, args ...any)
}

// Navigator moves the UI to a route. Switching accounts navigates to the
// dashboard route and forces a reload so every consumer of account-scoped
// data re-initializes instead of mixing stale per-account caches.
type Navigator interface {
	Push(route string)
	Reload()
}

// DashboardRoute is the neutral route account switches land on. Its first
// path segment is never interpreted as a team slug.
const DashboardRoute = "/dashboard"

// Resolver determines which account is current for the logged-in user from
// the URL path, the account list, and the persisted TeamContext.
type Resolver struct {
	store ContextStore
	ttl   time.Duration
	log   Logger
	now   func() time.Time
}

// NewResolver creates a Resolver backed by store. ttl bounds how long a
// persisted TeamContext stays valid. log may be nil.
func NewResolver(store ContextStore, ttl time.Duration, log Logger) *Resolver {
	return &Resolver{
		store: store,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// SetClock overrides the resolver's time source. Tests only.
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }

// Resolve produces the single current account, in priority order:
//
//  1. The first path segment, when it is not "dashboard" and matches a team
//     account's slug.
//  2. A persisted TeamContext younger than the TTL that matches a team
//     account by ID.
//  3. The personal account.
//
// When nothing matches (including an empty or not-yet-loaded account list)
// it returns ErrNoAccount so callers defer resolution instead of guessing.
// Resolving twice with identical inputs yields the same account.
//
// Side effect: when a team account becomes current and no context is
// persisted, the resolver writes one so the choice survives navigation.
func (r *Resolver) Resolve(path string, accounts []Account) (*Account, error) {
	if len(accounts) == 0 {
		return nil, ErrNoAccount
	}

	if slug := firstSegment(path); slug != "" && slug != "dashboard" {
		if team := teamBySlug(accounts, slug); team != nil {
			r.ensureContext(team)
			return team, nil
		}
	}

	if tc := r.loadContext(); tc != nil && !tc.Expired(r.now(), r.ttl) {
		if team := teamByID(accounts, tc.AccountID); team != nil {
			return team, nil
		}
	}

	if personal := personalAccount(accounts); personal != nil {
		return personal, nil
	}

	return nil, ErrNoAccount
}

// Switch makes acc the current account explicitly. Team accounts overwrite
// the persisted context; the personal account clears it. In both cases the
// navigator is pushed to the dashboard route and reloaded so account-scoped
// caches start clean.
func (r *Resolver) Switch(acc *Account, nav Navigator) error {
	if acc == nil {
		return fmt.Errorf("account: switch: nil account")
	}

	var tc *TeamContext
	if !acc.Personal {
		tc = &TeamContext{
			AccountID: acc.ID,
			Name:      acc.Name,
			Slug:      acc.Slug,
			Timestamp: r.now(),
		}
	}
	if err := r.store.SaveTeamContext(tc); err != nil {
		return fmt.Errorf("account: switch: save context: %w", err)
	}

	if nav != nil {
		nav.Push(DashboardRoute)
		nav.Reload()
	}
	return nil
}

// loadContext reads the persisted TeamContext. Corruption or an unavailable
// store degrades to "no context"; the failure is logged, never propagated.
func (r *Resolver) loadContext() *TeamContext {
	tc, err := r.store.LoadTeamContext()
	if err != nil {
		if r.log != nil {
			r.log.Warn("account: persisted team context unreadable, ignoring: %s", err.Error())
		}
		return nil
	}
	return tc
}

// ensureContext persists a context for team when none is currently stored.
// An existing context is left alone so its timestamp keeps its meaning.
func (r *Resolver) ensureContext(team *Account) {
	if tc := r.loadContext(); tc != nil {
		return
	}
	tc := &TeamContext{
		AccountID: team.ID,
		Name:      team.Name,
		Slug:      team.Slug,
		Timestamp: r.now(),
	}
	if err := r.store.SaveTeamContext(tc); err != nil && r.log != nil {
		r.log.Warn("account: persist team context: %s", err.Error())
	}
}

// firstSegment returns the first path segment of p, without slashes.
func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
