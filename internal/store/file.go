package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/scene"
	"github.com/papapumpkin/prism/internal/settings"
	"github.com/papapumpkin/prism/internal/textlog"
)

var (
	_ Backend       = (*File)(nil)
	_ ProgressStore = (*fileProgress)(nil)
	_ SettingsStore = (*fileSettings)(nil)
	_ TextLogStore  = (*fileTextLog)(nil)
)

const (
	progressFileName = "progress.toml"
	settingsFileName = "settings.toml"
	textLogFileName  = "textlog.toml"
	fileVersion      = 1
)

// File keeps each store in its own TOML document inside a directory. Writes
// replace the whole document atomically (write temp + rename). Access is
// serialized within the process only.
type File struct {
	dir      string
	progress *fileProgress
	settings *fileSettings
	textLog  *fileTextLog
}

// OpenFile returns a file backend rooted at dir, creating dir if needed.
func OpenFile(dir string, opts ...Option) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fail("create data dir", err)
	}
	return &File{
		dir:      dir,
		progress: &fileProgress{path: filepath.Join(dir, progressFileName), opts: buildOptions(opts)},
		settings: &fileSettings{path: filepath.Join(dir, settingsFileName)},
		textLog:  &fileTextLog{path: filepath.Join(dir, textLogFileName)},
	}, nil
}

// Dir returns the directory holding the TOML documents.
func (f *File) Dir() string { return f.dir }

// Progress returns the progress store.
func (f *File) Progress() ProgressStore { return f.progress }

// Settings returns the settings store.
func (f *File) Settings() SettingsStore { return f.settings }

// TextLog returns the text log store.
func (f *File) TextLog() TextLogStore { return f.textLog }

// Close is a no-op; every write is already durable.
func (f *File) Close() error { return nil }

type progressDoc struct {
	Version int           `toml:"version"`
	Slots   []progressRow `toml:"slots"`
}

type progressRow struct {
	ID            string   `toml:"id"`
	CurrentRoute  string   `toml:"current_route"`
	CurrentScene  int      `toml:"current_scene"`
	ClearedRoutes []string `toml:"cleared_routes"`
	LastSaveNanos int64    `toml:"last_save_nanos"`
}

type fileProgress struct {
	path string
	opts options
	mu   sync.Mutex
}

func (f *fileProgress) load() (progressDoc, error) {
	doc := progressDoc{Version: fileVersion}
	if err := readTOML(f.path, &doc); err != nil {
		return progressDoc{}, err
	}
	return doc, nil
}

func (f *fileProgress) GetOrCreate(ctx context.Context) (*progress.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, fail("get progress", err)
	}
	if len(doc.Slots) > 0 {
		return f.opts.restore(fromProgressRow(doc.Slots[0])), nil
	}

	rec := progress.New(DefaultSlotID, f.opts.record...)
	doc.Slots = append(doc.Slots, toProgressRow(rowOf(rec)))
	if err := writeTOML(f.path, doc); err != nil {
		return nil, fail("create progress", err)
	}
	return rec, nil
}

func (f *fileProgress) Save(ctx context.Context, rec *progress.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return fail(fmt.Sprintf("save progress %q", rec.ID()), err)
	}

	r := toProgressRow(rowOf(rec))
	if i := slices.IndexFunc(doc.Slots, func(s progressRow) bool { return s.ID == r.ID }); i >= 0 {
		doc.Slots[i] = r
	} else {
		doc.Slots = append(doc.Slots, r)
	}
	doc.Version = fileVersion

	if err := writeTOML(f.path, doc); err != nil {
		return fail(fmt.Sprintf("save progress %q", rec.ID()), err)
	}
	return nil
}

func (f *fileProgress) FindByID(ctx context.Context, id string) (*progress.Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, false, fail(fmt.Sprintf("find progress %q", id), err)
	}
	for _, s := range doc.Slots {
		if s.ID == id {
			return f.opts.restore(fromProgressRow(s)), true, nil
		}
	}
	return nil, false, nil
}

func (f *fileProgress) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return fail(fmt.Sprintf("delete progress %q", id), err)
	}
	n := len(doc.Slots)
	doc.Slots = slices.DeleteFunc(doc.Slots, func(s progressRow) bool { return s.ID == id })
	if len(doc.Slots) == n {
		return nil
	}
	if err := writeTOML(f.path, doc); err != nil {
		return fail(fmt.Sprintf("delete progress %q", id), err)
	}
	return nil
}

func (f *fileProgress) List(ctx context.Context) ([]*progress.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, fail("list progress", err)
	}
	recs := make([]*progress.Record, 0, len(doc.Slots))
	for _, s := range doc.Slots {
		recs = append(recs, f.opts.restore(fromProgressRow(s)))
	}
	return recs, nil
}

func toProgressRow(r row) progressRow {
	return progressRow{
		ID:            r.ID,
		CurrentRoute:  r.CurrentRoute,
		CurrentScene:  r.CurrentScene,
		ClearedRoutes: r.ClearedRoutes,
		LastSaveNanos: r.LastSaveTime,
	}
}

func fromProgressRow(p progressRow) row {
	return row{
		ID:            p.ID,
		CurrentRoute:  p.CurrentRoute,
		CurrentScene:  p.CurrentScene,
		ClearedRoutes: p.ClearedRoutes,
		LastSaveTime:  p.LastSaveNanos,
	}
}

type settingsDoc struct {
	Volume    float64 `toml:"volume"`
	TextSpeed float64 `toml:"text_speed"`
	AutoSave  bool    `toml:"auto_save"`
}

type fileSettings struct {
	path string
	mu   sync.Mutex
}

func (f *fileSettings) Get(ctx context.Context) (settings.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		def := settings.Default()
		if err := f.write(def); err != nil {
			return settings.Settings{}, err
		}
		return def, nil
	}

	var doc settingsDoc
	if err := readTOML(f.path, &doc); err != nil {
		return settings.Settings{}, fail("get settings", err)
	}
	st, err := settings.New(doc.Volume, doc.TextSpeed, doc.AutoSave)
	if err != nil {
		return settings.Settings{}, fail("decode settings", err)
	}
	return st, nil
}

func (f *fileSettings) Save(ctx context.Context, st settings.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(st)
}

func (f *fileSettings) write(st settings.Settings) error {
	doc := settingsDoc{Volume: st.Volume(), TextSpeed: st.TextSpeed(), AutoSave: st.AutoSaveEnabled()}
	if err := writeTOML(f.path, doc); err != nil {
		return fail("save settings", err)
	}
	return nil
}

func (f *fileSettings) InitializeDefault(ctx context.Context) error {
	return f.Save(ctx, settings.Default())
}

type textLogDoc struct {
	Entries []textLogRow `toml:"entries"`
}

type textLogRow struct {
	ID        string `toml:"id"`
	Route     string `toml:"route"`
	Scene     int    `toml:"scene"`
	Text      string `toml:"text"`
	LoggedAtN int64  `toml:"logged_at_nanos"`
}

type fileTextLog struct {
	path string
	mu   sync.Mutex
}

func (f *fileTextLog) SaveEntry(ctx context.Context, e textlog.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var doc textLogDoc
	if err := readTOML(f.path, &doc); err != nil {
		return fail("save text log entry", err)
	}
	r := textLogRow{ID: e.ID, Route: e.Route.Value(), Scene: e.Scene.Value(), Text: e.Text, LoggedAtN: e.Timestamp.UnixNano()}
	if i := slices.IndexFunc(doc.Entries, func(x textLogRow) bool { return x.ID == e.ID }); i >= 0 {
		doc.Entries[i] = r
	} else {
		doc.Entries = append(doc.Entries, r)
	}
	if err := writeTOML(f.path, doc); err != nil {
		return fail("save text log entry", err)
	}
	return nil
}

func (f *fileTextLog) FindByRoute(ctx context.Context, r route.Tag) ([]textlog.Entry, error) {
	return f.find("find text log by route", func(x textLogRow) bool { return x.Route == r.Value() })
}

func (f *fileTextLog) FindByRouteAndScene(ctx context.Context, r route.Tag, s scene.Counter) ([]textlog.Entry, error) {
	return f.find("find text log by route and scene", func(x textLogRow) bool {
		return x.Route == r.Value() && x.Scene == s.Value()
	})
}

func (f *fileTextLog) FindAll(ctx context.Context) ([]textlog.Entry, error) {
	return f.find("find text log", func(textLogRow) bool { return true })
}

func (f *fileTextLog) DeleteByRoute(ctx context.Context, r route.Tag) error {
	return f.rewrite("delete text log by route", func(x textLogRow) bool { return x.Route == r.Value() })
}

func (f *fileTextLog) DeleteAll(ctx context.Context) error {
	return f.rewrite("delete text log", func(textLogRow) bool { return true })
}

func (f *fileTextLog) find(op string, keep func(textLogRow) bool) ([]textlog.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var doc textLogDoc
	if err := readTOML(f.path, &doc); err != nil {
		return nil, fail(op, err)
	}
	var out []textlog.Entry
	for _, x := range doc.Entries {
		if !keep(x) {
			continue
		}
		e, err := restoreEntry(x.ID, x.Route, x.Scene, x.Text, x.LoggedAtN)
		if err != nil {
			return nil, fail(op, err)
		}
		out = append(out, e)
	}
	sortByTime(out)
	return out, nil
}

func (f *fileTextLog) rewrite(op string, drop func(textLogRow) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var doc textLogDoc
	if err := readTOML(f.path, &doc); err != nil {
		return fail(op, err)
	}
	doc.Entries = slices.DeleteFunc(doc.Entries, drop)
	if err := writeTOML(f.path, doc); err != nil {
		return fail(op, err)
	}
	return nil
}

// readTOML decodes path into v. A missing file leaves v untouched.
func readTOML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeTOML encodes v to path atomically (write temp + rename).
func writeTOML(path string, v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}
