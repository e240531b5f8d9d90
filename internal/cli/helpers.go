package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sc.sigCh)
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the command logger. Debug wins over the profile level.
func NewLogger(debug bool, cfg *config.Config) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// Setup loads the profile in dir and builds the logger it asks for.
// A missing profile is reported as a warning.
func Setup(dir string, debug bool) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	logger, err := NewLogger(debug, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Missing {
		logger.Warn("profile not found, using defaults", "dir", dir, "file", config.DefaultFile)
	}
	return cfg, logger, nil
}
