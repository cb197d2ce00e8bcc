package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crewdeck/internal/account"
	"crewdeck/internal/client"
	"crewdeck/internal/config"
	"crewdeck/internal/logging"
	"crewdeck/internal/status"
	"crewdeck/internal/store"
	"crewdeck/internal/threads"
)

// Open initialises every subsystem under homeDir (an empty string means
// DefaultHomeDir). It loads config and session state, opens the cache and
// logs, builds the API client, resolver and delete controller, and starts
// the status sweeper and the state-file watcher.
func (a *App) Open(homeDir string) error {
	if homeDir == "" {
		homeDir = DefaultHomeDir()
	}
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return fmt.Errorf("app: create home directory: %w", err)
	}
	a.homeDir = homeDir

	cfgPath := filepath.Join(homeDir, "config.json")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("app: load config: %w", err)
	}
	a.config = cfg

	logs, err := logging.NewManager(homeDir, cfg.Logging.Level, cfg.Logging.RotationMB, cfg.Logging.ToConsole)
	if err != nil {
		return fmt.Errorf("app: init logging: %w", err)
	}
	a.logs = logs

	cache, err := store.Open(filepath.Join(homeDir, "cache.db"))
	if err != nil {
		logs.Close()
		return fmt.Errorf("app: open cache: %w", err)
	}
	a.cache = cache

	// A corrupt state file degrades to an empty session: the persisted team
	// context and selection are conveniences, never worth failing startup.
	statePath := filepath.Join(homeDir, "state.json")
	state, err := config.OpenStateStore(statePath)
	if err != nil {
		logs.System.Warn("app: state file unreadable, starting fresh: %s", err.Error())
		state = config.NewStateStore(statePath)
	}
	a.state = state

	a.api = client.New(cfg.API.BaseURL, cfg.API.Token, cfg.Delete.MaxConcurrent, logs.Api)
	a.api.SetOpLogFactory(func(opID string) client.Logger {
		l, err := logs.OpLogger(opID)
		if err != nil {
			logs.System.Warn("app: op logger %s: %s", opID, err.Error())
			return nil
		}
		return l
	})

	a.registry = status.NewRegistry(time.Duration(cfg.Status.CompletedRetentionHours) * time.Hour)
	a.registry.StartSweeper(time.Duration(cfg.Status.SweepIntervalMinutes) * time.Minute)

	ttl := time.Duration(cfg.Context.TeamContextTTLMinutes) * time.Minute
	a.resolver = account.NewResolver(state, ttl, logs.System)

	a.selection = threads.NewSelection()
	for _, id := range state.SelectedThreads() {
		// Restored IDs are pruned against the thread list once it loads.
		a.selection.Toggle(id)
	}
	deleter := cachingDeleter{api: a.api, cache: cache, log: logs.System}
	a.controller = threads.NewDeleteController(deleter, nil, a.selection)

	watcher, err := config.WatchState(state, nil)
	if err != nil {
		// Watching is best-effort; without it a second process's context
		// changes are picked up on next start.
		logs.System.Warn("app: state watch unavailable: %s", err.Error())
	} else {
		a.watcher = watcher
	}

	logs.System.Info("app: opened home %s", homeDir)
	return nil
}

// SetPath records the UI's current route, the input to account resolution.
func (a *App) SetPath(p string) { a.path = p }

// Path returns the UI's current route.
func (a *App) Path() string { return a.path }

// SetActiveThread records which thread is open in the UI and forwards it to
// the delete controller for the navigate-before-delete ordering.
func (a *App) SetActiveThread(id string) {
	a.activeID = id
	a.controller.SetActive(id)
	if id != "" {
		a.registry.MarkViewed(id)
	}
}

// ActiveThread returns the open thread's ID, or "".
func (a *App) ActiveThread() string { return a.activeID }

// Accounts returns the last fetched (or cached) account list.
func (a *App) Accounts() []account.Account { return a.accounts }

// CurrentAccount returns the resolved current account, or nil while the
// account list has not loaded.
func (a *App) CurrentAccount() *account.Account { return a.current }

// Threads returns the last aggregated thread list.
func (a *App) Threads() []threads.ThreadWithProject { return a.aggregated }

// LoadCached populates accounts and the thread list from the local cache so
// the UI renders before the first fetch completes (or offline).
func (a *App) LoadCached(ctx context.Context) error {
	accounts, err := a.cache.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("app: cached accounts: %w", err)
	}
	a.accounts = accounts

	if err := a.resolveCurrent(); err != nil {
		return nil // nothing cached yet; not an error
	}

	return a.loadAccountData(ctx, a.current.ID, true)
}

// Refresh re-fetches accounts, projects and threads from the platform,
// replaces the cache, and rebuilds the aggregated list. The fetched data is
// authoritative: a delete interrupted mid-flight on a previous run is
// reconciled here simply by reflecting whatever the backend returns.
func (a *App) Refresh(ctx context.Context) error {
	accounts, err := a.api.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("app: fetch accounts: %w", err)
	}
	a.accounts = accounts
	if err := a.cache.ReplaceAccounts(ctx, accounts); err != nil {
		a.logs.System.Warn("app: cache accounts: %s", err.Error())
	}

	if err := a.resolveCurrent(); err != nil {
		return err
	}

	return a.loadAccountData(ctx, a.current.ID, false)
}

// SwitchAccount makes acc current, persisting or clearing the team context
// and clearing account-scoped UI state.
func (a *App) SwitchAccount(acc *account.Account, nav account.Navigator) error {
	if err := a.resolver.Switch(acc, nav); err != nil {
		return err
	}
	a.current = acc
	a.state.SetLastAccount(acc.ID)
	a.selection.DeselectAll()
	a.aggregated = nil
	a.controller.SetList(nil)
	a.SetActiveThread("")
	a.path = account.DashboardRoute
	return nil
}

// StreamStatuses consumes the platform status feed for the current account,
// applying updates to the registry, reconnecting with a flat backoff until
// ctx is cancelled.
func (a *App) StreamStatuses(ctx context.Context) {
	for {
		if a.current != nil {
			err := a.api.StreamStatuses(ctx, a.current.ID, func(upd client.StatusUpdate) {
				a.registry.UpdateStatus(upd.ThreadID, upd.Status)
			})
			if err != nil {
				a.logs.Api.Warn("app: status stream: %s", err.Error())
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// resolveCurrent runs account resolution against the current path. A
// deferred resolution (account list not loaded) keeps current nil.
func (a *App) resolveCurrent() error {
	current, err := a.resolver.Resolve(a.path, a.accounts)
	if err != nil {
		if err == account.ErrNoAccount {
			a.current = nil
			return err
		}
		return fmt.Errorf("app: resolve account: %w", err)
	}
	a.current = current
	a.state.SetLastAccount(current.ID)
	return nil
}

// loadAccountData builds the aggregated thread list for accountID, from the
// cache when cached is true, otherwise from the API (updating the cache).
func (a *App) loadAccountData(ctx context.Context, accountID string, cached bool) error {
	var (
		projects []threads.Project
		list     []threads.Thread
		err      error
	)

	if cached {
		projects, err = a.cache.ListProjects(ctx, accountID)
		if err != nil {
			return fmt.Errorf("app: cached projects: %w", err)
		}
		list, err = a.cache.ListThreads(ctx, accountID)
		if err != nil {
			return fmt.Errorf("app: cached threads: %w", err)
		}
	} else {
		projects, err = a.api.ListProjects(ctx, accountID)
		if err != nil {
			return fmt.Errorf("app: fetch projects: %w", err)
		}
		list, err = a.api.ListThreads(ctx, accountID)
		if err != nil {
			return fmt.Errorf("app: fetch threads: %w", err)
		}
		if err := a.cache.ReplaceProjects(ctx, accountID, projects); err != nil {
			a.logs.System.Warn("app: cache projects: %s", err.Error())
		}
		if err := a.cache.ReplaceThreads(ctx, accountID, list); err != nil {
			a.logs.System.Warn("app: cache threads: %s", err.Error())
		}
	}

	a.aggregated = threads.Aggregate(list, projects)
	a.selection.Prune(a.aggregated)
	a.controller.SetList(a.aggregated)
	return nil
}
