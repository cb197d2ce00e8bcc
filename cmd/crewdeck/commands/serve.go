package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crewdeck/internal/web"

	"github.com/spf13/cobra"
)

var noBrowse bool

// NewServeCommand creates the serve command, which runs the local web mirror
// instead of the TUI.
func NewServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web mirror",
		Long: `serve starts a local HTTP server exposing the thread list, account
info and a live agent-status event stream, and opens it in the browser.`,
		RunE: runServe,
	}

	serveCmd.Flags().BoolVar(&noBrowse, "no-browse", false, "do not open the browser")

	return serveCmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Refresh(ctx); err != nil {
		// Serve whatever the cache holds; the status endpoint reports staleness.
		fmt.Fprintf(os.Stderr, "warning: initial refresh failed: %v\n", err)
		if err := a.LoadCached(ctx); err != nil {
			return fmt.Errorf("crewdeck: no data to serve: %w", err)
		}
	}

	go a.StreamStatuses(ctx)

	srv := web.New(a)
	url, err := srv.Start(ctx, !noBrowse)
	if err != nil {
		return fmt.Errorf("crewdeck: start server: %w", err)
	}
	fmt.Printf("Serving on %s\n", url)

	<-ctx.Done()
	return srv.Stop(cmd.Context())
}
