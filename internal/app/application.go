package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/registry"
)

// Application is the global runtime state container shared by the CLI
// commands and the API server.
type Application struct {
	Config   *Config
	Logger   logging.Logger
	Registry *registry.Registry
	Orch     *Orchestrator
}

// NewApplication opens the audit history (when StorageRoot is set) and
// builds the orchestrator.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger = logging.OrNop(logger)

	var reg *registry.Registry
	if path := cfg.HistoryPath(); path != "" {
		r, err := registry.Open(path, logger)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		reg = r
	}

	orch, err := NewOrchestrator(cfg, reg, logger)
	if err != nil {
		if reg != nil {
			_ = reg.Close()
		}
		return nil, err
	}
	return &Application{Config: cfg, Logger: logger, Registry: reg, Orch: orch}, nil
}

// Shutdown stops running jobs and releases browser and database handles.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	done := make(chan error, 1)
	go func() {
		err := a.Orch.Close()
		if a.Registry != nil {
			if cerr := a.Registry.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
