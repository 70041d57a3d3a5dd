// Package progress holds the player's progress record: the active route, the
// scene reached within it, and the routes cleared so far. Record is the only
// place these values are mutated.
package progress

import (
	"slices"
	"time"

	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/scene"
)

// ScenesPerRoute is the scene index at which a route counts as cleared.
const ScenesPerRoute = 100

// Record is the progress aggregate for one save slot. It is not safe for
// concurrent mutation; callers serialize access.
type Record struct {
	id            string
	currentRoute  route.Tag
	currentScene  scene.Counter
	clearedRoutes []route.Tag // clear order, unique by value
	lastSaveTime  time.Time

	catalog *route.Catalog
	now     func() time.Time
}

// Option configures a Record.
type Option func(*Record)

// WithClock sets the time source used to stamp mutations.
func WithClock(now func() time.Time) Option {
	return func(r *Record) {
		r.now = now
	}
}

// WithCatalog sets the catalog consulted by IsTrueRouteUnlocked.
func WithCatalog(c *route.Catalog) Option {
	return func(r *Record) {
		r.catalog = c
	}
}

func newRecord(id string, opts []Option) *Record {
	r := &Record{id: id, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		r.catalog = route.NewCatalog()
	}
	return r
}

// New creates a fresh record: no route selected, scene 0, nothing cleared.
func New(id string, opts ...Option) *Record {
	r := newRecord(id, opts)
	r.lastSaveTime = r.now()
	return r
}

// Restore rehydrates a record from storage. Scene numbers outside
// [0, ScenesPerRoute] are clamped into range and duplicate cleared route
// names are collapsed, keeping first-occurrence order.
func Restore(id, currentRoute string, currentScene int, cleared []string, savedAt time.Time, opts ...Option) *Record {
	r := newRecord(id, opts)
	r.currentRoute = route.From(currentRoute)
	// Clamped, so From cannot fail.
	r.currentScene, _ = scene.From(min(max(currentScene, 0), ScenesPerRoute))
	for _, name := range cleared {
		r.markCleared(route.From(name))
	}
	r.lastSaveTime = savedAt
	return r
}

// ID returns the record's identifier.
func (r *Record) ID() string {
	return r.id
}

// CurrentRoute returns the selected route, empty when none.
func (r *Record) CurrentRoute() route.Tag {
	return r.currentRoute
}

// CurrentScene returns the scene reached in the current route.
func (r *Record) CurrentScene() scene.Counter {
	return r.currentScene
}

// ClearedRoutes returns a copy of the cleared routes in clear order.
func (r *Record) ClearedRoutes() []route.Tag {
	return slices.Clone(r.clearedRoutes)
}

// ClearedRouteNames returns the cleared route names in clear order.
func (r *Record) ClearedRouteNames() []string {
	names := make([]string, len(r.clearedRoutes))
	for i, t := range r.clearedRoutes {
		names[i] = t.Value()
	}
	return names
}

// LastSaveTime returns the time of the most recent mutation or restore.
func (r *Record) LastSaveTime() time.Time {
	return r.lastSaveTime
}

// Catalog returns the catalog the record consults.
func (r *Record) Catalog() *route.Catalog {
	return r.catalog
}

// SelectRoute makes t the current route and rewinds to scene 0. An empty tag
// is ignored. No validity or unlock check is made here; see unlock.Policy.
func (r *Record) SelectRoute(t route.Tag) {
	if t.IsEmpty() {
		return
	}
	r.currentRoute = t
	r.currentScene = scene.Zero()
	r.touch()
}

// AdvanceScene moves one scene forward and reports whether this step cleared
// the current route. Once the scene reaches ScenesPerRoute further calls do
// nothing and report false.
func (r *Record) AdvanceScene() bool {
	if r.currentScene.Value() >= ScenesPerRoute {
		return false
	}

	r.currentScene = r.currentScene.Next()
	r.touch()

	if r.currentScene.Value() == ScenesPerRoute {
		r.markCleared(r.currentRoute)
		return true
	}
	return false
}

// IsTrueRouteUnlocked reports whether every base route has been cleared.
func (r *Record) IsTrueRouteUnlocked() bool {
	return r.catalog.IsTrueRouteUnlockCondition(r.ClearedRouteNames())
}

// IsRouteCleared reports whether t has been cleared.
func (r *Record) IsRouteCleared(t route.Tag) bool {
	return slices.ContainsFunc(r.clearedRoutes, t.Equal)
}

// IsRouteNameCleared reports whether the route named name has been cleared.
func (r *Record) IsRouteNameCleared(name string) bool {
	return r.IsRouteCleared(route.From(name))
}

func (r *Record) markCleared(t route.Tag) {
	if !r.IsRouteCleared(t) {
		r.clearedRoutes = append(r.clearedRoutes, t)
	}
}

// touch stamps lastSaveTime, keeping it strictly increasing even when the
// clock stalls or steps backwards.
func (r *Record) touch() {
	now := r.now()
	if !now.After(r.lastSaveTime) {
		now = r.lastSaveTime.Add(time.Nanosecond)
	}
	r.lastSaveTime = now
}
