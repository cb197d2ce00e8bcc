package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crewdeck/internal/account"
	"crewdeck/internal/threads"
)

// now returns the current time formatted as RFC3339 for storage.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// nullString converts a Go string to sql.NullString (empty string -> NULL).
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableToPtr converts sql.NullString to *string.
func nullableToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// ptrToNullString converts *string to sql.NullString.
func ptrToNullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// ReplaceAccounts swaps the cached account list inside a transaction.
func (s *Store) ReplaceAccounts(ctx context.Context, accounts []account.Account) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace accounts: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("replace accounts: clear: %w", err)
	}

	ts := now()
	for i, a := range accounts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, name, slug, personal, user_id, position, synced_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Slug, boolToInt(a.Personal), a.UserID, i, ts,
		)
		if err != nil {
			return fmt.Errorf("replace accounts: insert %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace accounts: commit: %w", err)
	}
	return nil
}

// ListAccounts returns the cached accounts in backend order.
func (s *Store) ListAccounts(ctx context.Context) ([]account.Account, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, slug, personal, user_id FROM accounts ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []account.Account
	for rows.Next() {
		var a account.Account
		var personal int
		if err := rows.Scan(&a.ID, &a.Name, &a.Slug, &personal, &a.UserID); err != nil {
			return nil, fmt.Errorf("list accounts: scan: %w", err)
		}
		a.Personal = personal != 0
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: rows: %w", err)
	}
	return out, nil
}

// GetAccount returns a single cached account by ID.
func (s *Store) GetAccount(ctx context.Context, id string) (*account.Account, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, slug, personal, user_id FROM accounts WHERE id = ?`, id,
	)
	var a account.Account
	var personal int
	if err := row.Scan(&a.ID, &a.Name, &a.Slug, &personal, &a.UserID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	a.Personal = personal != 0
	return &a, nil
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

// ReplaceProjects swaps the cached projects for accountID inside a transaction.
func (s *Store) ReplaceProjects(ctx context.Context, accountID string, projects []threads.Project) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace projects: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("replace projects: clear: %w", err)
	}

	ts := now()
	for i, p := range projects {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, account_id, name, sandbox_id, position, synced_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, accountID, p.Name, ptrToNullString(p.SandboxID), i, ts,
		)
		if err != nil {
			return fmt.Errorf("replace projects: insert %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace projects: commit: %w", err)
	}
	return nil
}

// ListProjects returns the cached projects for accountID in backend order.
func (s *Store) ListProjects(ctx context.Context, accountID string) ([]threads.Project, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, sandbox_id FROM projects WHERE account_id = ? ORDER BY position`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []threads.Project
	for rows.Next() {
		var p threads.Project
		var sandbox sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &sandbox); err != nil {
			return nil, fmt.Errorf("list projects: scan: %w", err)
		}
		p.SandboxID = nullableToPtr(sandbox)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: rows: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Threads
// ---------------------------------------------------------------------------

// ReplaceThreads swaps the cached threads for accountID inside a transaction.
// The insert preserves input order via the position column so the sidebar
// renders the backend's display order without resorting.
func (s *Store) ReplaceThreads(ctx context.Context, accountID string, ts []threads.Thread) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace threads: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("replace threads: clear: %w", err)
	}

	stamp := now()
	for i, t := range ts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO threads (id, account_id, project_id, url, position, synced_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, accountID, t.ProjectID, t.URL, i, stamp,
		)
		if err != nil {
			return fmt.Errorf("replace threads: insert %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace threads: commit: %w", err)
	}
	return nil
}

// ListThreads returns the cached threads for accountID in backend order.
func (s *Store) ListThreads(ctx context.Context, accountID string) ([]threads.Thread, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, project_id, url FROM threads WHERE account_id = ? ORDER BY position`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var out []threads.Thread
	for rows.Next() {
		var t threads.Thread
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.URL); err != nil {
			return nil, fmt.Errorf("list threads: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list threads: rows: %w", err)
	}
	return out, nil
}

// DeleteThreads removes cached rows for the given thread IDs, used to keep
// the cache consistent after a successful deletion without a full re-fetch.
func (s *Store) DeleteThreads(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete threads: begin: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete threads: %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete threads: commit: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
