package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager is the central owner of every log category used by crewdeck.
// It creates the required directory structure under homeDir and provides
// per-operation loggers for bulk deletions.
type Manager struct {
	mu sync.Mutex

	// System is the rolling log for startup, config, cache, sweep and
	// teardown events.
	System *Logger

	// Api is the rolling log for platform HTTP calls, the SSE status
	// stream, and deletions.
	Api *Logger

	// ops tracks loggers opened via OpLogger so they can all be closed
	// from Close().
	ops map[string]*Logger

	logDir     string
	opsDir     string
	level      string
	rotationMB int
	toConsole  bool
}

// NewManager initialises the logging directory tree under homeDir and opens
// the System and Api loggers. The expected layout:
//
//	<homeDir>/logs/system.log
//	<homeDir>/logs/api.log
//	<homeDir>/logs/ops/          (created now, populated on demand)
func NewManager(homeDir string, level string, rotationMB int, toConsole bool) (*Manager, error) {
	logDir := filepath.Join(homeDir, "logs")
	opsDir := filepath.Join(logDir, "ops")

	for _, dir := range []string{logDir, opsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: mkdir %s: %w", dir, err)
		}
	}

	sysLog, err := NewLogger(filepath.Join(logDir, "system.log"), level, rotationMB, toConsole)
	if err != nil {
		return nil, fmt.Errorf("logging: system logger: %w", err)
	}

	apiLog, err := NewLogger(filepath.Join(logDir, "api.log"), level, rotationMB, toConsole)
	if err != nil {
		sysLog.Close()
		return nil, fmt.Errorf("logging: api logger: %w", err)
	}

	return &Manager{
		System:     sysLog,
		Api:        apiLog,
		ops:        make(map[string]*Logger),
		logDir:     logDir,
		opsDir:     opsDir,
		level:      level,
		rotationMB: rotationMB,
		toConsole:  toConsole,
	}, nil
}

// OpLogger returns a logger for the given bulk operation ID. If a logger for
// that ID has already been opened it is returned directly; otherwise a new
// one is created at logs/ops/op-{opID}.log.
func (m *Manager) OpLogger(opID string) (*Logger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.ops[opID]; ok {
		return l, nil
	}

	path := filepath.Join(m.opsDir, "op-"+filepath.Base(opID)+".log")

	l, err := NewLogger(path, m.level, m.rotationMB, m.toConsole)
	if err != nil {
		return nil, fmt.Errorf("logging: op logger %s: %w", opID, err)
	}

	m.ops[opID] = l
	return l, nil
}

// Close closes the System logger, the Api logger, and every op logger opened
// during the lifetime of this Manager. Pointers are copied under the lock
// and the lock is released before calling Close on each logger to avoid
// lock-ordering deadlocks.
func (m *Manager) Close() error {
	m.mu.Lock()
	sys := m.System
	api := m.Api
	ops := make(map[string]*Logger, len(m.ops))
	for k, v := range m.ops {
		ops[k] = v
	}
	m.ops = nil
	m.mu.Unlock()

	var errs []error
	if sys != nil {
		if err := sys.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if api != nil {
		if err := api.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, l := range ops {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
