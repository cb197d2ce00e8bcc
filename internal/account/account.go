package account

import "errors"

// ErrNoAccount is returned when resolution cannot produce a current account,
// typically because the account list has not loaded yet. Callers should defer
// account-scoped work rather than treat this as fatal.
var ErrNoAccount = errors.New("no current account")

// Account is a billing/ownership entity on the platform. Exactly one account
// per user has Personal set; every other account is a shared team account.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Personal bool   `json:"personal"`
	UserID   string `json:"user_id"`
}

// personalAccount returns the personal account from accounts, or nil.
func personalAccount(accounts []Account) *Account {
	for i := range accounts {
		if accounts[i].Personal {
			return &accounts[i]
		}
	}
	return nil
}

// teamBySlug returns the non-personal account matching slug, or nil.
func teamBySlug(accounts []Account, slug string) *Account {
	if slug == "" {
		return nil
	}
	for i := range accounts {
		if !accounts[i].Personal && accounts[i].Slug == slug {
			return &accounts[i]
		}
	}
	return nil
}

// teamByID returns the non-personal account matching id, or nil.
func teamByID(accounts []Account, id string) *Account {
	if id == "" {
		return nil
	}
	for i := range accounts {
		if !accounts[i].Personal && accounts[i].ID == id {
			return &accounts[i]
		}
	}
	return nil
}
