package commands

import (
	"context"
	"fmt"
	"os"

	"crewdeck/internal/app"
	"crewdeck/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var homeDir string

// NewRootCommand creates the root command. Running crewdeck with no
// subcommand opens the TUI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crewdeck",
		Short: "Terminal client for the crewdeck agent platform",
		Long: `crewdeck browses your accounts, projects and agent threads from the
terminal, tracks live agent statuses, and bulk-manages threads.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "data directory (default ~/.crewdeck)")
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewThreadsCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openApp builds and opens the shared application state for any command.
func openApp() (*app.App, error) {
	a := app.New()
	if err := a.Open(homeDir); err != nil {
		return nil, err
	}
	return a, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go a.StreamStatuses(ctx)

	model := tui.NewModel(a)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("crewdeck: %w", err)
	}

	return nil
}
