// Package store persists progress records, player settings, and the text log.
//
// Every implementation wraps I/O failures in *Error, so callers test for
// storage failure with errors.Is(err, ErrStorage). A missing record is not an
// error: FindByID reports absence through its boolean result.
//
// Reads and writes are independent calls. A GetOrCreate, mutate, Save cycle
// is not atomic, and two callers running it against the same slot can lose
// an update; the last Save wins.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/scene"
	"github.com/papapumpkin/prism/internal/settings"
	"github.com/papapumpkin/prism/internal/textlog"
)

// DefaultSlotID is the id given to the record GetOrCreate creates.
const DefaultSlotID = "1"

// ErrStorage is matched by every failure returned from a store.
var ErrStorage = errors.New("storage failure")

// Error records the failed operation and its cause.
type Error struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both ErrStorage and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

func fail(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// ProgressStore holds the player's progress records.
type ProgressStore interface {
	// GetOrCreate returns the first stored record, creating and saving a new
	// one with DefaultSlotID when none exists.
	GetOrCreate(ctx context.Context) (*progress.Record, error)
	// Save inserts rec or replaces the stored row with the same id.
	Save(ctx context.Context, rec *progress.Record) error
	// FindByID returns the record with id; ok is false when none exists.
	FindByID(ctx context.Context, id string) (rec *progress.Record, ok bool, err error)
	// Delete removes the record with id. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns all records in slot order.
	List(ctx context.Context) ([]*progress.Record, error)
}

// SettingsStore holds the player's settings.
type SettingsStore interface {
	// Get returns stored settings, saving and returning defaults on first use.
	Get(ctx context.Context) (settings.Settings, error)
	Save(ctx context.Context, s settings.Settings) error
	// InitializeDefault overwrites stored settings with settings.Default().
	InitializeDefault(ctx context.Context) error
}

// TextLogStore holds text log entries.
type TextLogStore interface {
	SaveEntry(ctx context.Context, e textlog.Entry) error
	// The Find methods return entries in timestamp order.
	FindByRoute(ctx context.Context, r route.Tag) ([]textlog.Entry, error)
	FindByRouteAndScene(ctx context.Context, r route.Tag, s scene.Counter) ([]textlog.Entry, error)
	FindAll(ctx context.Context) ([]textlog.Entry, error)
	DeleteByRoute(ctx context.Context, r route.Tag) error
	DeleteAll(ctx context.Context) error
}

// Backend bundles the stores kept in one storage location.
type Backend interface {
	Progress() ProgressStore
	Settings() SettingsStore
	TextLog() TextLogStore
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	record []progress.Option
}

// WithRecordOptions applies opts to every record the store creates or
// restores, e.g. to share a catalog or inject a clock.
func WithRecordOptions(opts ...progress.Option) Option {
	return func(o *options) {
		o.record = append(o.record, opts...)
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// row is the persisted shape of a progress record.
type row struct {
	ID            string
	CurrentRoute  string
	CurrentScene  int
	ClearedRoutes []string
	LastSaveTime  int64 // Unix nanoseconds
}

func rowOf(rec *progress.Record) row {
	return row{
		ID:            rec.ID(),
		CurrentRoute:  rec.CurrentRoute().Value(),
		CurrentScene:  rec.CurrentScene().Value(),
		ClearedRoutes: rec.ClearedRouteNames(),
		LastSaveTime:  rec.LastSaveTime().UnixNano(),
	}
}

func (o options) restore(r row) *progress.Record {
	return progress.Restore(r.ID, r.CurrentRoute, r.CurrentScene, r.ClearedRoutes, unixNano(r.LastSaveTime), o.record...)
}

func unixNano(n int64) time.Time {
	return time.Unix(0, n)
}
