// Package game is the application service over the progress core. It loads
// the active record, gates route selection through unlock.Policy, persists
// every mutation, and reports outcomes as result values a front end can show
// directly.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/settings"
	"github.com/papapumpkin/prism/internal/store"
	"github.com/papapumpkin/prism/internal/telemetry"
	"github.com/papapumpkin/prism/internal/textlog"
	"github.com/papapumpkin/prism/internal/unlock"
)

var (
	// ErrNoRouteSelected is returned when advancing a record with no current route.
	ErrNoRouteSelected = errors.New("no route selected")
	// ErrNoTextLog is returned by text log operations when no TextLogStore was configured.
	ErrNoTextLog = errors.New("text log not configured")
)

// Result reports the outcome of a user-facing operation.
type Result struct {
	Success bool
	Message string
}

// AdvanceResult is the outcome of AdvanceScene.
type AdvanceResult struct {
	RouteCleared bool
	CurrentScene int
}

// State is a read-only view of the active record.
type State struct {
	Slot              string
	CurrentRoute      string
	CurrentScene      int
	ClearedRoutes     []string
	TrueRouteUnlocked bool
}

// SettingsUpdate carries the fields to change; nil fields are left as is.
type SettingsUpdate struct {
	Volume    *float64
	TextSpeed *float64
	AutoSave  *bool
}

// Service coordinates the stores, the catalog and telemetry. It is safe for
// concurrent use; operations on the active record are serialized.
type Service struct {
	progress store.ProgressStore
	settings store.SettingsStore
	textLog  store.TextLogStore
	catalog  *route.Catalog
	policy   *unlock.Policy
	events   *telemetry.Emitter

	mu   sync.Mutex
	slot string
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog sets the catalog used for unlock decisions.
func WithCatalog(c *route.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithTextLog enables RecordText and History.
func WithTextLog(ts store.TextLogStore) Option {
	return func(s *Service) { s.textLog = ts }
}

// WithEmitter records progress events to e.
func WithEmitter(e *telemetry.Emitter) Option {
	return func(s *Service) { s.events = e }
}

// WithSlot makes id the active record instead of the store's first slot.
func WithSlot(id string) Option {
	return func(s *Service) { s.slot = id }
}

// New returns a Service over the given stores.
func New(ps store.ProgressStore, ss store.SettingsStore, opts ...Option) *Service {
	s := &Service{progress: ps, settings: ss}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = route.NewCatalog()
	}
	s.policy = unlock.NewPolicy(s.catalog)
	return s
}

// Catalog returns the catalog backing unlock decisions.
func (s *Service) Catalog() *route.Catalog {
	return s.catalog
}

// active loads the active record. The caller holds s.mu.
func (s *Service) active(ctx context.Context) (*progress.Record, error) {
	if s.slot == "" {
		return s.progress.GetOrCreate(ctx)
	}
	rec, ok, err := s.progress.FindByID(ctx, s.slot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("game: %w: %q", ErrSaveNotFound, s.slot)
	}
	return rec, nil
}

// SelectRoute switches the active record to the named route when the unlock
// policy allows it. Denials and storage failures come back as an
// unsuccessful Result rather than an error.
func (s *Service) SelectRoute(ctx context.Context, name string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.active(ctx)
	if err != nil {
		return Result{Message: err.Error()}
	}

	tag := route.From(name)
	if d := s.policy.CanSelectRoute(tag, rec); !d.CanSelect {
		s.emit(telemetry.KindRouteDenied, rec.ID(), name, map[string]string{"reason": d.Reason})
		return Result{Message: d.Reason}
	}

	rec.SelectRoute(tag)
	if err := s.save(ctx, rec); err != nil {
		return Result{Message: err.Error()}
	}
	s.emit(telemetry.KindRouteSelected, rec.ID(), name, nil)
	return Result{Success: true}
}

// AdvanceScene moves the active record one scene forward and saves it.
func (s *Service) AdvanceScene(ctx context.Context) (AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.active(ctx)
	if err != nil {
		return AdvanceResult{}, err
	}
	if rec.CurrentRoute().IsEmpty() {
		return AdvanceResult{}, ErrNoRouteSelected
	}

	before := rec.CurrentScene()
	cleared := rec.AdvanceScene()
	if rec.CurrentScene().Equal(before) {
		return AdvanceResult{CurrentScene: before.Value()}, nil
	}
	if err := s.save(ctx, rec); err != nil {
		return AdvanceResult{}, err
	}

	name := rec.CurrentRoute().Value()
	s.emit(telemetry.KindSceneAdvanced, rec.ID(), name, map[string]int{"scene": rec.CurrentScene().Value()})
	if cleared {
		s.emit(telemetry.KindRouteCleared, rec.ID(), name, nil)
	}
	return AdvanceResult{RouteCleared: cleared, CurrentScene: rec.CurrentScene().Value()}, nil
}

// CurrentState returns a snapshot of the active record.
func (s *Service) CurrentState(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.active(ctx)
	if err != nil {
		return State{}, err
	}
	return State{
		Slot:              rec.ID(),
		CurrentRoute:      rec.CurrentRoute().Value(),
		CurrentScene:      rec.CurrentScene().Value(),
		ClearedRoutes:     rec.ClearedRouteNames(),
		TrueRouteUnlocked: s.policy.IsTrueRouteUnlocked(rec),
	}, nil
}

// Routes lists every selectable route with its unlock decision for the
// active record.
func (s *Service) Routes(ctx context.Context) ([]unlock.RouteOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return s.policy.AvailableRoutes(rec), nil
}

// AutoSave re-saves the active record when auto-save is enabled. It reports
// whether a save happened.
func (s *Service) AutoSave(ctx context.Context) (bool, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	if !st.AutoSaveEnabled() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.active(ctx)
	if err != nil {
		return false, err
	}
	if err := s.save(ctx, rec); err != nil {
		return false, err
	}
	s.emit(telemetry.KindAutoSave, rec.ID(), rec.CurrentRoute().Value(), nil)
	return true, nil
}

// Settings returns the stored settings.
func (s *Service) Settings(ctx context.Context) (settings.Settings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings applies u to the stored settings. An invalid value aborts
// the update with nothing saved.
func (s *Service) UpdateSettings(ctx context.Context, u SettingsUpdate) (settings.Settings, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	if u.Volume != nil {
		if st, err = st.WithVolume(*u.Volume); err != nil {
			return settings.Settings{}, err
		}
	}
	if u.TextSpeed != nil {
		if st, err = st.WithTextSpeed(*u.TextSpeed); err != nil {
			return settings.Settings{}, err
		}
	}
	if u.AutoSave != nil {
		st = st.WithAutoSave(*u.AutoSave)
	}
	if err := s.settings.Save(ctx, st); err != nil {
		return settings.Settings{}, err
	}
	return st, nil
}

// RecordText appends text to the log at the active record's route and scene.
func (s *Service) RecordText(ctx context.Context, text string) (textlog.Entry, error) {
	if s.textLog == nil {
		return textlog.Entry{}, ErrNoTextLog
	}

	s.mu.Lock()
	rec, err := s.active(ctx)
	s.mu.Unlock()
	if err != nil {
		return textlog.Entry{}, err
	}

	e, err := textlog.NewEntry(rec.CurrentRoute(), rec.CurrentScene(), text)
	if err != nil {
		return textlog.Entry{}, err
	}
	if err := s.textLog.SaveEntry(ctx, e); err != nil {
		return textlog.Entry{}, err
	}
	return e, nil
}

// History returns logged text for routeName, or the whole log when routeName
// is empty.
func (s *Service) History(ctx context.Context, routeName string) ([]textlog.Entry, error) {
	if s.textLog == nil {
		return nil, ErrNoTextLog
	}
	if routeName == "" {
		return s.textLog.FindAll(ctx)
	}
	return s.textLog.FindByRoute(ctx, route.From(routeName))
}

func (s *Service) save(ctx context.Context, rec *progress.Record) error {
	if err := s.progress.Save(ctx, rec); err != nil {
		s.emit(telemetry.KindSaveFailed, rec.ID(), rec.CurrentRoute().Value(), map[string]string{"error": err.Error()})
		return err
	}
	return nil
}

// emit records an event. Telemetry failures never fail the operation.
func (s *Service) emit(kind, slot, routeName string, data any) {
	_ = s.events.Emit(telemetry.Event{Kind: kind, Slot: slot, Route: routeName, Data: data})
}
