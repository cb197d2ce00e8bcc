package account

import "time"

// TeamContext remembers which team account the user last operated in. It is
// persisted in the session state store and honored only while younger than
// the configured TTL; absence means "use the personal account".
type TeamContext struct {
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Timestamp time.Time `json:"timestamp"`
}

// Expired reports whether the context is older than ttl at time now.
func (tc *TeamContext) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(tc.Timestamp) >= ttl
}

// ContextStore is the session-scoped key-value store the resolver persists
// the TeamContext in. Implementations must degrade gracefully: a Load failure
// is reported as an error that the resolver treats as "no context", and a
// Save failure never aborts resolution.
type ContextStore interface {
	// LoadTeamContext returns the persisted context, or nil if none is set.
	LoadTeamContext() (*TeamContext, error)

	// SaveTeamContext persists tc. A nil tc clears the stored context.
	SaveTeamContext(tc *TeamContext) error
}
