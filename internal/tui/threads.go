package tui

import (
	"context"
	"fmt"
	"strings"

	"crewdeck/internal/app"
	"crewdeck/internal/status"
	"crewdeck/internal/theme"
	"crewdeck/internal/threads"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// ThreadsScreen is the main screen: the aggregated thread list with status
// badges, multi-select markers, and the delete confirmation overlay.
type ThreadsScreen struct {
	app    *app.App
	styles theme.Styles
	keys   KeyMap

	cursor  int
	width   int
	height  int
	spinner spinner.Model

	confirming   bool
	confirmCount int
	deleting     bool
	progress     *threads.Progress
}

// NewThreadsScreen creates the thread list screen.
func NewThreadsScreen(a *app.App, styles theme.Styles) ThreadsScreen {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Warning
	return ThreadsScreen{
		app:     a,
		styles:  styles,
		keys:    DefaultKeyMap(),
		spinner: sp,
	}
}

// Tick returns the command that drives the activity spinner.
func (s *ThreadsScreen) Tick() tea.Cmd { return s.spinner.Tick }

// Confirming reports whether the delete confirmation overlay is open.
func (s *ThreadsScreen) Confirming() bool { return s.confirming }

// Update handles messages while the thread list is active.
func (s *ThreadsScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return nil

	case CacheLoadedMsg, ThreadsRefreshedMsg:
		s.clampCursor()
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case StatusChangedMsg:
		// Badges read straight from the registry at render time; nothing to
		// store here.
		return nil

	case DeleteProgressMsg:
		p := msg.Progress
		s.progress = &p
		return nil

	case DeleteDoneMsg:
		s.confirming = false
		s.deleting = false
		s.progress = nil
		s.clampCursor()
		return nil

	case tea.KeyMsg:
		if s.confirming {
			return s.updateConfirm(msg)
		}
		return s.updateList(msg)
	}

	return nil
}

// updateList handles keys while the plain list is showing.
func (s *ThreadsScreen) updateList(msg tea.KeyMsg) tea.Cmd {
	list := s.app.Threads()

	switch {
	case key.Matches(msg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}

	case key.Matches(msg, s.keys.Down):
		if s.cursor < len(list)-1 {
			s.cursor++
		}

	case key.Matches(msg, s.keys.Toggle):
		if t := s.current(list); t != nil {
			s.app.Selection().Toggle(t.ID)
		}

	case key.Matches(msg, s.keys.SelectAll):
		ids := make([]string, len(list))
		for i, t := range list {
			ids[i] = t.ID
		}
		s.app.Selection().SelectAll(ids)

	case key.Matches(msg, s.keys.DeselectAll):
		s.app.Selection().DeselectAll()

	case key.Matches(msg, s.keys.Enter):
		if t := s.current(list); t != nil {
			s.app.SetActiveThread(t.ID)
			return func() tea.Msg {
				return StatusMsg(fmt.Sprintf("Viewing %s", t.ProjectName))
			}
		}

	case key.Matches(msg, s.keys.Delete):
		return s.requestDelete(list)

	case key.Matches(msg, s.keys.Refresh):
		return tea.Batch(
			func() tea.Msg { return StatusMsg("Refreshing...") },
			refreshCmd(s.app),
		)

	case key.Matches(msg, s.keys.Accounts):
		return func() tea.Msg { return NavigateMsg{Screen: ScreenAccounts} }

	case key.Matches(msg, s.keys.Back):
		s.app.SetActiveThread("")
	}

	return nil
}

// requestDelete stages a deletion: the current selection when non-empty,
// otherwise the thread under the cursor.
func (s *ThreadsScreen) requestDelete(list []threads.ThreadWithProject) tea.Cmd {
	ctl := s.app.Deletes()
	if ctl.InFlight() {
		return func() tea.Msg {
			return ErrorMsg{Err: threads.ErrDeleteInFlight}
		}
	}

	var err error
	if s.app.Selection().Len() > 0 {
		err = ctl.RequestBulkDelete()
	} else if t := s.current(list); t != nil {
		err = ctl.RequestDelete(t.ID)
	} else {
		return nil
	}
	if err != nil {
		return func() tea.Msg { return ErrorMsg{Err: err} }
	}

	_, count := ctl.Pending()
	s.confirming = true
	s.confirmCount = count
	return nil
}

// updateConfirm handles keys while the confirmation overlay is open.
func (s *ThreadsScreen) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	if s.deleting {
		// The in-flight guard: nothing to press until the delete settles.
		return nil
	}

	switch msg.String() {
	case "y", "enter":
		s.deleting = true
		return confirmDeleteCmd(s.app)
	case "n", "esc":
		s.confirming = false
		s.app.Deletes().Cancel()
	}
	return nil
}

func (s *ThreadsScreen) current(list []threads.ThreadWithProject) *threads.ThreadWithProject {
	if s.cursor < 0 || s.cursor >= len(list) {
		return nil
	}
	return &list[s.cursor]
}

func (s *ThreadsScreen) clampCursor() {
	n := len(s.app.Threads())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// View renders the thread list panel, or the confirmation overlay on top.
func (s *ThreadsScreen) View(width, height int) string {
	list := s.app.Threads()

	header := s.styles.Header.Width(width).Render("Threads")

	var rows []string
	if len(list) == 0 {
		rows = append(rows, s.styles.Muted.Render("  No threads. Press r to refresh."))
	}
	for i, t := range list {
		rows = append(rows, s.renderRow(i, t))
	}

	if s.confirming {
		return s.confirmView(width, height)
	}

	body := strings.Join(rows, "\n")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

// renderRow builds one list line: selection marker, status badge, project
// name, unread indicator, and the relative time of the last status change.
func (s *ThreadsScreen) renderRow(i int, t threads.ThreadWithProject) string {
	reg := s.app.Registry()

	marker := "[ ]"
	if s.app.Selection().Contains(t.ID) {
		marker = "[x]"
	}

	entry, tracked := reg.Get(t.ID)
	st := status.StatusIdle
	when := ""
	if tracked {
		st = entry.Status
		when = humanize.Time(entry.UpdatedAt)
	}
	badge := s.renderBadge(st)
	if st == status.StatusRunning || st == status.StatusConnecting {
		badge = s.spinner.View() + " " + badge
	}

	unread := "  "
	if reg.HasUnreadCompletion(t.ID) {
		unread = s.styles.Unread.Render("● ")
	}

	name := t.ProjectName
	if t.ID == s.app.ActiveThread() {
		name += " (open)"
	}

	line := fmt.Sprintf("%s %s %s%s  %s", marker, badge, unread, name, s.styles.Muted.Render(when))

	switch {
	case i == s.cursor:
		return s.styles.ListItemSelected.Render(line)
	case s.app.Selection().Contains(t.ID):
		return s.styles.ListItemMarked.Render(line)
	default:
		return s.styles.ListItem.Render(line)
	}
}

func (s *ThreadsScreen) renderBadge(st string) string {
	label := strings.ToUpper(st)
	switch st {
	case status.StatusConnecting:
		return s.styles.BadgeConnecting.Render(label)
	case status.StatusRunning:
		return s.styles.BadgeRunning.Render(label)
	case status.StatusCompleted:
		return s.styles.BadgeCompleted.Render(label)
	case status.StatusError:
		return s.styles.BadgeError.Render(label)
	default:
		return s.styles.BadgeIdle.Render(label)
	}
}

// confirmView renders the centered delete confirmation box.
func (s *ThreadsScreen) confirmView(width, height int) string {
	var lines []string
	lines = append(lines, s.styles.Warning.Render(fmt.Sprintf("Delete %d thread(s)?", s.confirmCount)))
	lines = append(lines, "")

	if s.deleting {
		pct := 0
		if s.progress != nil {
			pct = s.progress.Percent
		}
		lines = append(lines, fmt.Sprintf("Deleting... %d%%", pct))
	} else {
		lines = append(lines, s.styles.Muted.Render("y/enter confirm, n/esc cancel"))
	}

	box := s.styles.HelpOverlay.Render(strings.Join(lines, "\n"))

	padLeft := 0
	if w := lipgloss.Width(box); width > w {
		padLeft = (width - w) / 2
	}
	padTop := 0
	if h := lipgloss.Height(box); height > h {
		padTop = (height - h) / 2
	}

	return lipgloss.NewStyle().
		MarginLeft(padLeft).
		MarginTop(padTop).
		Render(box)
}

// confirmDeleteCmd executes the staged deletion off the update loop.
func confirmDeleteCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		res, err := a.Deletes().Confirm(context.Background())
		if err != nil {
			return DeleteDoneMsg{Err: err}
		}
		return DeleteDoneMsg{Result: *res}
	}
}
