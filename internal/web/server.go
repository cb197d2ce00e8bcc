// Package web provides crewdeck's local web mirror: a read-mostly REST API
// over the aggregated thread list and agent statuses, plus an SSE feed.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"crewdeck/internal/app"
)

const defaultPort = 8417

// Server is the crewdeck local HTTP server.
type Server struct {
	a    *app.App
	srv  *http.Server
	port int
	hub  *sseHub
}

// New creates a new Server bound to the given App. Registry changes are
// rebroadcast to SSE clients.
func New(a *app.App) *Server {
	s := &Server{a: a, hub: newSSEHub()}
	a.Registry().OnChange(s.broadcastStatus)
	return s
}

// Port returns the port the server is listening on (0 if not started).
func (s *Server) Port() int { return s.port }

// URL returns the base URL (e.g., "http://localhost:8417").
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// Start binds to a free port starting at defaultPort, starts the HTTP server
// in a background goroutine, and optionally opens the browser. Returns the URL.
func (s *Server) Start(ctx context.Context, browse bool) (string, error) {
	ln, err := freePort(defaultPort)
	if err != nil {
		return "", fmt.Errorf("web: start: find port: %w", err)
	}
	s.port = ln.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// WriteTimeout intentionally 0; SSE connections must not time out.
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.a.Logs().System.Error("web: serve: %s", err.Error())
		}
	}()
	go s.hub.run()

	url := s.URL()
	if browse {
		_ = openBrowser(ctx, url)
	}
	s.a.Logs().System.Info("web: listening on %s", url)
	return url, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: stop: %w", err)
	}
	close(s.hub.quit)
	return nil
}

// registerRoutes wires every HTTP endpoint.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", s.handleGetStatus)
	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("GET /api/threads", s.handleListThreads)
	mux.HandleFunc("GET /api/statuses", s.handleListStatuses)
	mux.HandleFunc("POST /api/threads/{id}/viewed", s.handleMarkViewed)
	mux.HandleFunc("GET /events", s.handleSSE)
}

// freePort finds the first available TCP port starting from start and returns
// the bound listener. The caller is responsible for using or closing it.
func freePort(start int) (net.Listener, error) {
	for p := start; p < start+100; p++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", p))
		if err == nil {
			return ln, nil
		}
	}
	return nil, fmt.Errorf("web: freePort: no free port found in range %d-%d", start, start+100)
}

// openBrowser opens the given URL in the system default browser.
func openBrowser(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	go func() { _ = cmd.Run() }()
	return nil
}
