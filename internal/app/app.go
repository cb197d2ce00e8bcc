// Package app wires crewdeck's subsystems together and owns their lifecycle.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"crewdeck/internal/account"
	"crewdeck/internal/client"
	"crewdeck/internal/config"
	"crewdeck/internal/logging"
	"crewdeck/internal/status"
	"crewdeck/internal/store"
	"crewdeck/internal/threads"
)

// App holds all application-wide state for crewdeck.
// It is created once and shared with the TUI and web layers.
type App struct {
	config     *config.Config
	state      *config.StateStore
	watcher    *config.Watcher
	cache      *store.Store
	api        *client.Client
	logs       *logging.Manager
	registry   *status.Registry
	resolver   *account.Resolver
	selection  *threads.Selection
	controller *threads.DeleteController

	homeDir string

	accounts   []account.Account
	current    *account.Account
	path       string
	aggregated []threads.ThreadWithProject
	activeID   string
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.config }

// State returns the persisted session state store.
func (a *App) State() *config.StateStore { return a.state }

// Cache returns the local SQLite cache.
func (a *App) Cache() *store.Store { return a.cache }

// API returns the platform API client.
func (a *App) API() *client.Client { return a.api }

// Logs returns the logging manager.
func (a *App) Logs() *logging.Manager { return a.logs }

// Registry returns the agent status registry.
func (a *App) Registry() *status.Registry { return a.registry }

// Resolver returns the account context resolver.
func (a *App) Resolver() *account.Resolver { return a.resolver }

// Selection returns the shared thread selection.
func (a *App) Selection() *threads.Selection { return a.selection }

// Deletes returns the delete controller.
func (a *App) Deletes() *threads.DeleteController { return a.controller }

// HomeDir returns the crewdeck home directory.
func (a *App) HomeDir() string { return a.homeDir }

// New creates a new App instance. Call Open before using it.
func New() *App {
	return &App{path: account.DashboardRoute}
}

// DefaultHomeDir returns ~/.crewdeck.
func DefaultHomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".crewdeck")
}

// Close cleanly shuts down all resources. Session state is persisted first
// so the team context and selection survive the next start.
func (a *App) Close() error {
	var errs []error

	if a.selection != nil && a.state != nil {
		a.state.SetSelectedThreads(a.selection.IDs(a.aggregated))
	}
	if a.state != nil {
		if err := a.state.Save(); err != nil {
			errs = append(errs, fmt.Errorf("app: save state: %w", err))
		}
	}

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: stop state watcher: %w", err))
		}
	}

	if a.registry != nil {
		a.registry.StopSweeper()
	}

	if a.logs != nil {
		if err := a.logs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close logs: %w", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close cache: %w", err))
		}
	}

	return errors.Join(errs...)
}
