package tui

import (
	"crewdeck/internal/account"
	"crewdeck/internal/threads"
)

// Screen identifies which screen the TUI is currently showing.
type Screen int

const (
	ScreenAccounts Screen = iota
	ScreenThreads
)

// ---------------------------------------------------------------------------
// Navigation
// ---------------------------------------------------------------------------

// NavigateMsg tells the main model to switch to a different screen.
// Data carries optional context for the target screen.
type NavigateMsg struct {
	Screen Screen
	Data   any
}

// NavigateBackMsg tells the main model to go back to the previous screen.
type NavigateBackMsg struct{}

// ---------------------------------------------------------------------------
// Status and errors
// ---------------------------------------------------------------------------

// ErrorMsg carries an error to be displayed in the status bar.
type ErrorMsg struct{ Err error }

// StatusMsg carries a status string to be displayed in the status bar.
type StatusMsg string

// ---------------------------------------------------------------------------
// Data refresh
// ---------------------------------------------------------------------------

// ThreadsRefreshedMsg carries a freshly aggregated thread list.
type ThreadsRefreshedMsg struct {
	Threads []threads.ThreadWithProject
}

// CacheLoadedMsg is sent after the local cache has been read at startup,
// before the first network refresh completes.
type CacheLoadedMsg struct {
	Threads []threads.ThreadWithProject
}

// AccountSwitchedMsg is sent after an explicit account switch completed.
type AccountSwitchedMsg struct {
	Account *account.Account
}

// ---------------------------------------------------------------------------
// Agent statuses
// ---------------------------------------------------------------------------

// StatusChangedMsg is sent whenever the status registry mutates, so the
// thread list re-renders its badges.
type StatusChangedMsg struct {
	ThreadID string
	Status   string
}

// ---------------------------------------------------------------------------
// Deletion flow
// ---------------------------------------------------------------------------

// DeleteProgressMsg reports bulk-delete progress after each item settles.
type DeleteProgressMsg struct {
	Progress threads.Progress
}

// DeleteDoneMsg is sent when a confirmed deletion finishes.
type DeleteDoneMsg struct {
	Result threads.Result
	Err    error
}
