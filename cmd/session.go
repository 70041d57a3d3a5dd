package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/papapumpkin/prism/internal/config"
	"github.com/papapumpkin/prism/internal/game"
	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/store"
	"github.com/papapumpkin/prism/internal/telemetry"
	"github.com/papapumpkin/prism/internal/ui"
)

// session holds everything one command invocation needs.
type session struct {
	cfg     config.Config
	catalog *route.Catalog
	backend store.Backend
	events  *telemetry.Emitter
	svc     *game.Service
	printer *ui.Printer
}

// openSession loads configuration and the route catalog, opens the storage
// backend and telemetry log, and builds the game service.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	printer := ui.NewStderr(cfg.NoColor)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", cfg.DataDir, err)
	}

	catalog := route.NewCatalog()
	if err := route.LoadCatalogFile(cfg.CatalogFile, catalog); err != nil {
		return nil, err
	}

	backend, err := openBackend(ctx, cfg, store.WithRecordOptions(progress.WithCatalog(catalog)))
	if err != nil {
		return nil, err
	}

	var events *telemetry.Emitter
	if cfg.Telemetry {
		events, err = telemetry.NewEmitter(cfg.TelemetryPath())
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	opts := []game.Option{
		game.WithCatalog(catalog),
		game.WithTextLog(backend.TextLog()),
		game.WithEmitter(events),
	}
	if cfg.Slot != "" {
		opts = append(opts, game.WithSlot(cfg.Slot))
	}
	if cfg.Verbose {
		printer.Info(fmt.Sprintf("backend %s in %s, routes from %s", cfg.Backend, cfg.DataDir, cfg.CatalogFile))
	}

	return &session{
		cfg:     cfg,
		catalog: catalog,
		backend: backend,
		events:  events,
		svc:     game.New(backend.Progress(), backend.Settings(), opts...),
		printer: printer,
	}, nil
}

func (s *session) Close() error {
	evErr := s.events.Close()
	if err := s.backend.Close(); err != nil {
		return err
	}
	return evErr
}

// openBackend opens the store named by cfg.Backend.
func openBackend(ctx context.Context, cfg config.Config, opts ...store.Option) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(ctx, cfg.DatabasePath(), opts...)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendFile:
		fb, err := store.OpenFile(cfg.DataDir, opts...)
		if err != nil {
			return nil, err
		}
		return fb, nil
	case config.BackendMemory:
		return store.NewMemory(opts...), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownBackend, cfg.Backend)
	}
}

// withSession opens a session, runs fn, and closes the session.
func withSession(ctx context.Context, fn func(*session) error) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
