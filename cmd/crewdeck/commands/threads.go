package commands

import (
	"fmt"

	"crewdeck/internal/status"

	"github.com/spf13/cobra"
)

var cachedOnly bool

// NewThreadsCommand creates the threads command, a non-interactive listing
// for scripts and quick checks.
func NewThreadsCommand() *cobra.Command {
	threadsCmd := &cobra.Command{
		Use:   "threads",
		Short: "List threads for the current account without the TUI",
		RunE:  runThreads,
	}

	threadsCmd.Flags().BoolVar(&cachedOnly, "cached", false, "list from the local cache without contacting the platform")

	return threadsCmd
}

func runThreads(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if cachedOnly {
		err = a.LoadCached(ctx)
	} else {
		err = a.Refresh(ctx)
	}
	if err != nil {
		return fmt.Errorf("crewdeck: load threads: %w", err)
	}

	acc := a.CurrentAccount()
	if acc == nil {
		fmt.Println("No account resolved yet. Run crewdeck once to sign in.")
		return nil
	}

	list := a.Threads()
	if len(list) == 0 {
		fmt.Printf("No threads in %s\n", acc.Name)
		return nil
	}

	fmt.Printf("Threads in %s:\n", acc.Name)
	for i, t := range list {
		st := status.StatusIdle
		if entry, ok := a.Registry().Get(t.ID); ok {
			st = entry.Status
		}
		fmt.Printf("%d. %s  [%s]  %s\n", i+1, t.ProjectName, st, t.URL)
	}

	return nil
}
