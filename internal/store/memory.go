package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/scene"
	"github.com/papapumpkin/prism/internal/settings"
	"github.com/papapumpkin/prism/internal/textlog"
)

var (
	_ Backend       = (*Memory)(nil)
	_ ProgressStore = (*memoryProgress)(nil)
	_ SettingsStore = (*memorySettings)(nil)
	_ TextLogStore  = (*memoryTextLog)(nil)
)

// Memory is a process-local backend. Records are copied on the way in and out
// so callers never share state with the store.
type Memory struct {
	progress *memoryProgress
	settings *memorySettings
	textLog  *memoryTextLog
}

// NewMemory returns an empty in-memory backend.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		progress: &memoryProgress{opts: buildOptions(opts), rows: make(map[string]row)},
		settings: &memorySettings{},
		textLog:  &memoryTextLog{},
	}
}

// Progress returns the progress store.
func (m *Memory) Progress() ProgressStore { return m.progress }

// Settings returns the settings store.
func (m *Memory) Settings() SettingsStore { return m.settings }

// TextLog returns the text log store.
func (m *Memory) TextLog() TextLogStore { return m.textLog }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

type memoryProgress struct {
	opts options

	mu    sync.Mutex
	order []string
	rows  map[string]row
}

func (m *memoryProgress) GetOrCreate(ctx context.Context) (*progress.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) > 0 {
		return m.opts.restore(m.rows[m.order[0]]), nil
	}
	rec := progress.New(DefaultSlotID, m.opts.record...)
	m.put(rowOf(rec))
	return rec, nil
}

func (m *memoryProgress) Save(ctx context.Context, rec *progress.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(rowOf(rec))
	return nil
}

func (m *memoryProgress) put(r row) {
	if _, ok := m.rows[r.ID]; !ok {
		m.order = append(m.order, r.ID)
	}
	m.rows[r.ID] = r
}

func (m *memoryProgress) FindByID(ctx context.Context, id string) (*progress.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, false, nil
	}
	return m.opts.restore(r), true, nil
}

func (m *memoryProgress) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

func (m *memoryProgress) List(ctx context.Context) ([]*progress.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := make([]*progress.Record, 0, len(m.order))
	for _, id := range m.order {
		recs = append(recs, m.opts.restore(m.rows[id]))
	}
	return recs, nil
}

type memorySettings struct {
	mu  sync.Mutex
	set bool
	val settings.Settings
}

func (m *memorySettings) Get(ctx context.Context) (settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		m.val, m.set = settings.Default(), true
	}
	return m.val, nil
}

func (m *memorySettings) Save(ctx context.Context, s settings.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.val, m.set = s, true
	return nil
}

func (m *memorySettings) InitializeDefault(ctx context.Context) error {
	return m.Save(ctx, settings.Default())
}

type memoryTextLog struct {
	mu      sync.Mutex
	entries []textlog.Entry
}

func (m *memoryTextLog) SaveEntry(ctx context.Context, e textlog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.IndexFunc(m.entries, func(x textlog.Entry) bool { return x.ID == e.ID }); i >= 0 {
		m.entries[i] = e
		return nil
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryTextLog) FindByRoute(ctx context.Context, r route.Tag) ([]textlog.Entry, error) {
	return m.filter(func(e textlog.Entry) bool { return e.IsFromRoute(r) }), nil
}

func (m *memoryTextLog) FindByRouteAndScene(ctx context.Context, r route.Tag, s scene.Counter) ([]textlog.Entry, error) {
	return m.filter(func(e textlog.Entry) bool { return e.IsFromRoute(r) && e.IsFromScene(s) }), nil
}

func (m *memoryTextLog) FindAll(ctx context.Context) ([]textlog.Entry, error) {
	return m.filter(func(textlog.Entry) bool { return true }), nil
}

func (m *memoryTextLog) DeleteByRoute(ctx context.Context, r route.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = slices.DeleteFunc(m.entries, func(e textlog.Entry) bool { return e.IsFromRoute(r) })
	return nil
}

func (m *memoryTextLog) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *memoryTextLog) filter(keep func(textlog.Entry) bool) []textlog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []textlog.Entry
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sortByTime(out)
	return out
}

func sortByTime(entries []textlog.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}
