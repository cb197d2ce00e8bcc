package tui

import (
	"fmt"
	"strings"

	"crewdeck/internal/account"
	"crewdeck/internal/app"
	"crewdeck/internal/theme"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AccountsScreen lists the user's accounts (personal plus any teams) and
// switches the current account on enter.
type AccountsScreen struct {
	app    *app.App
	styles theme.Styles
	keys   KeyMap

	cursor int
	width  int
	height int
}

// NewAccountsScreen creates the account switcher screen.
func NewAccountsScreen(a *app.App, styles theme.Styles) AccountsScreen {
	return AccountsScreen{
		app:    a,
		styles: styles,
		keys:   DefaultKeyMap(),
	}
}

// reset moves the cursor to the current account when the screen opens.
func (s *AccountsScreen) reset() {
	s.cursor = 0
	if cur := s.app.CurrentAccount(); cur != nil {
		for i, acc := range s.app.Accounts() {
			if acc.ID == cur.ID {
				s.cursor = i
				break
			}
		}
	}
}

// Update handles messages while the account switcher is active.
func (s *AccountsScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return nil

	case tea.KeyMsg:
		accounts := s.app.Accounts()

		switch {
		case key.Matches(msg, s.keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}

		case key.Matches(msg, s.keys.Down):
			if s.cursor < len(accounts)-1 {
				s.cursor++
			}

		case key.Matches(msg, s.keys.Enter):
			if s.cursor >= 0 && s.cursor < len(accounts) {
				acc := accounts[s.cursor]
				return switchAccountCmd(s.app, &acc)
			}

		case key.Matches(msg, s.keys.Back):
			return func() tea.Msg { return NavigateBackMsg{} }
		}
	}

	return nil
}

// View renders the account list.
func (s *AccountsScreen) View(width, height int) string {
	accounts := s.app.Accounts()
	current := s.app.CurrentAccount()

	header := s.styles.Header.Width(width).Render("Switch account")

	var rows []string
	if len(accounts) == 0 {
		rows = append(rows, s.styles.Muted.Render("  No accounts loaded yet."))
	}
	for i, acc := range accounts {
		kind := "team"
		if acc.Personal {
			kind = "personal"
		}
		line := fmt.Sprintf("%s  %s", acc.Name, s.styles.Muted.Render(kind))
		if current != nil && acc.ID == current.ID {
			line += "  " + s.styles.Unread.Render("current")
		}
		if i == s.cursor {
			rows = append(rows, s.styles.ListItemSelected.Render(line))
		} else {
			rows = append(rows, s.styles.ListItem.Render(line))
		}
	}

	hint := s.styles.Muted.Render("  enter switch, esc back")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(rows, "\n"), "", hint)
}

// switchAccountCmd performs the switch off the update loop. The switch
// persists or clears the team context and resets account-scoped UI state;
// the follow-up refresh is scheduled by the main model.
func switchAccountCmd(a *app.App, acc *account.Account) tea.Cmd {
	return func() tea.Msg {
		if err := a.SwitchAccount(acc, routeNavigator{a: a}); err != nil {
			return ErrorMsg{Err: err}
		}
		return AccountSwitchedMsg{Account: acc}
	}
}
