package tui

import (
	"context"
	"fmt"

	"crewdeck/internal/app"
	"crewdeck/internal/status"
	"crewdeck/internal/theme"
	"crewdeck/internal/threads"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the central Bubble Tea model that dispatches to screen models.
type Model struct {
	app    *app.App
	styles theme.Styles
	keys   KeyMap
	help   HelpModel

	screen      Screen
	screenStack []Screen
	width       int
	height      int
	err         error
	status      string

	accounts   AccountsScreen
	threadList ThreadsScreen

	statusCh   chan status.Entry
	progressCh chan threads.Progress
}

// ---------------------------------------------------------------------------
// Model constructor
// ---------------------------------------------------------------------------

// NewModel creates the top-level TUI model, wires the registry and delete
// controller callbacks into channels the update loop listens on, and hands
// the app a navigator so account switches and deletes can move the route.
func NewModel(a *app.App) Model {
	styles := theme.DefaultStyles()
	keys := DefaultKeyMap()

	statusCh := make(chan status.Entry, 64)
	a.Registry().OnChange(func(e status.Entry) {
		// Never block the registry; a dropped event only delays a badge
		// repaint until the next change.
		select {
		case statusCh <- e:
		default:
		}
	})

	progressCh := make(chan threads.Progress, 16)
	a.Deletes().OnProgress(func(p threads.Progress) {
		select {
		case progressCh <- p:
		default:
		}
	})

	a.Deletes().SetNavigator(routeNavigator{a: a})

	return Model{
		app:    a,
		styles: styles,
		keys:   keys,
		help:   NewHelpModel(keys, styles),
		screen: ScreenThreads,

		accounts:   NewAccountsScreen(a, styles),
		threadList: NewThreadsScreen(a, styles),

		statusCh:   statusCh,
		progressCh: progressCh,
	}
}

// ---------------------------------------------------------------------------
// tea.Model interface
// ---------------------------------------------------------------------------

// Init enters the alt screen, renders from the local cache immediately, and
// kicks off the first network refresh plus the channel listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		loadCachedCmd(m.app),
		refreshCmd(m.app),
		m.threadList.Tick(),
		waitForStatus(m.statusCh),
		waitForProgress(m.progressCh),
	)
}

// Update handles all incoming messages by routing to the active screen
// and processing global keys and navigation messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cmd := m.updateActiveScreen(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		// Help overlay intercepts ? regardless of screen.
		if msg.String() == "?" {
			m.help.Toggle()
			return m, nil
		}

		// If help is visible, consume all other keys to dismiss.
		if m.help.Visible() {
			m.help.Toggle()
			return m, nil
		}

		// Global quit: ctrl+c always quits.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// q quits only from the thread list, and never while a delete
		// confirmation is open.
		if msg.String() == "q" && m.screen == ScreenThreads && !m.threadList.Confirming() {
			return m, tea.Quit
		}

	case NavigateMsg:
		m.screenStack = append(m.screenStack, m.screen)
		m.screen = msg.Screen
		m.err = nil
		m.status = ""
		return m, m.initScreen(msg.Screen, msg.Data)

	case NavigateBackMsg:
		m.err = nil
		m.status = ""
		if len(m.screenStack) > 0 {
			prev := m.screenStack[len(m.screenStack)-1]
			m.screenStack = m.screenStack[:len(m.screenStack)-1]
			m.screen = prev
			cmds = append(cmds, m.initScreen(prev, nil))
		} else {
			m.screen = ScreenThreads
		}
		return m, tea.Batch(cmds...)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case CacheLoadedMsg:
		// Cached data renders immediately; the refresh in flight replaces it.
		cmd := m.updateActiveScreen(msg)
		return m, cmd

	case ThreadsRefreshedMsg:
		m.status = ""
		cmd := m.updateActiveScreen(msg)
		return m, cmd

	case AccountSwitchedMsg:
		m.screen = ScreenThreads
		m.screenStack = nil
		if msg.Account != nil {
			m.status = fmt.Sprintf("Switched to %s", msg.Account.Name)
		}
		return m, refreshCmd(m.app)

	case spinner.TickMsg:
		// The spinner belongs to the thread list but must keep ticking while
		// other screens are up, or it never resumes.
		return m, m.threadList.Update(msg)

	case StatusChangedMsg:
		// Re-arm the listener and let the thread list repaint its badges.
		cmds = append(cmds, waitForStatus(m.statusCh))
		if cmd := m.updateActiveScreen(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case DeleteProgressMsg:
		cmds = append(cmds, waitForProgress(m.progressCh))
		if cmd := m.updateActiveScreen(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case DeleteDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err
		} else if msg.Result.Warning != "" {
			m.status = msg.Result.Warning
		} else {
			m.status = fmt.Sprintf("Deleted %d thread(s)", msg.Result.Succeeded)
		}
		cmds = append(cmds, refreshCmd(m.app))
		if cmd := m.updateActiveScreen(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	// Delegate to the active screen.
	cmd := m.updateActiveScreen(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the active screen with an optional help overlay and status bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	contentHeight := m.height - 1
	content := m.viewActiveScreen(m.width, contentHeight)
	statusBar := m.renderStatusBar()
	view := lipgloss.JoinVertical(lipgloss.Left, content, statusBar)

	if m.help.Visible() {
		return m.help.View(m.width, m.height)
	}

	return view
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// initScreen sends the appropriate initialization command when navigating
// to a new screen.
func (m *Model) initScreen(screen Screen, data any) tea.Cmd {
	switch screen {
	case ScreenAccounts:
		m.accounts.reset()
		return nil
	case ScreenThreads:
		return nil
	default:
		return nil
	}
}

// updateActiveScreen delegates Update to whichever screen is active.
func (m *Model) updateActiveScreen(msg tea.Msg) tea.Cmd {
	switch m.screen {
	case ScreenAccounts:
		return m.accounts.Update(msg)
	case ScreenThreads:
		return m.threadList.Update(msg)
	default:
		return nil
	}
}

// viewActiveScreen delegates View to whichever screen is active.
func (m *Model) viewActiveScreen(width, height int) string {
	switch m.screen {
	case ScreenAccounts:
		return m.accounts.View(width, height)
	case ScreenThreads:
		return m.threadList.View(width, height)
	default:
		return ""
	}
}

// renderStatusBar builds the single-line bar at the bottom of the viewport.
func (m *Model) renderStatusBar() string {
	var left string
	if m.err != nil {
		left = lipgloss.NewStyle().
			Foreground(theme.ColorAccent).
			Bold(true).
			Render(fmt.Sprintf(" Error: %s", m.err.Error()))
	} else if m.status != "" {
		left = lipgloss.NewStyle().
			Foreground(theme.ColorSuccess).
			Render(fmt.Sprintf(" %s", m.status))
	} else if acc := m.app.CurrentAccount(); acc != nil {
		kind := "team"
		if acc.Personal {
			kind = "personal"
		}
		left = lipgloss.NewStyle().
			Foreground(theme.ColorTextSecondary).
			Render(fmt.Sprintf(" %s (%s)", acc.Name, kind))
	}

	right := lipgloss.NewStyle().
		Foreground(theme.ColorTextSecondary).
		Render("? help ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	bar := lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, right)

	return m.styles.StatusBar.Width(m.width).Render(bar)
}

// ---------------------------------------------------------------------------
// Commands and adapters
// ---------------------------------------------------------------------------

// routeNavigator lets non-UI packages move the route. Push only records the
// path; the data that backs the new route arrives with the refresh that
// every switch and delete schedules afterwards.
type routeNavigator struct {
	a *app.App
}

func (n routeNavigator) Push(route string) {
	n.a.SetPath(route)
	n.a.SetActiveThread("")
}

func (n routeNavigator) Reload() {}

func loadCachedCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		if err := a.LoadCached(context.Background()); err != nil {
			// Cache misses are normal on first run; render empty.
			return CacheLoadedMsg{}
		}
		return CacheLoadedMsg{Threads: a.Threads()}
	}
}

func refreshCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		if err := a.Refresh(context.Background()); err != nil {
			return ErrorMsg{Err: err}
		}
		return ThreadsRefreshedMsg{Threads: a.Threads()}
	}
}

func waitForStatus(ch <-chan status.Entry) tea.Cmd {
	return func() tea.Msg {
		e := <-ch
		return StatusChangedMsg{ThreadID: e.ThreadID, Status: e.Status}
	}
}

func waitForProgress(ch <-chan threads.Progress) tea.Cmd {
	return func() tea.Msg {
		return DeleteProgressMsg{Progress: <-ch}
	}
}
