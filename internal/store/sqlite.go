package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/scene"
	"github.com/papapumpkin/prism/internal/settings"
	"github.com/papapumpkin/prism/internal/textlog"
)

// Compile-time interface checks.
var (
	_ Backend       = (*SQLite)(nil)
	_ ProgressStore = (*sqliteProgress)(nil)
	_ SettingsStore = (*sqliteSettings)(nil)
	_ TextLogStore  = (*sqliteTextLog)(nil)
)

// SQLite keeps progress, settings and the text log in a local SQLite database
// in WAL mode.
type SQLite struct {
	db       *sql.DB
	progress *sqliteProgress
	settings *sqliteSettings
	textLog  *sqliteTextLog
}

// OpenSQLite opens (or creates) the database at path, enables WAL mode and a
// busy timeout, and applies pending migrations.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fail("open database", err)
	}

	// SQLite has a single writer; one pooled connection avoids SQLITE_BUSY
	// between connections that each need their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fail(pragma, err)
		}
	}

	if err := applyMigrations(ctx, db, migrationFS); err != nil {
		db.Close()
		return nil, fail("migrate", err)
	}

	return &SQLite{
		db:       db,
		progress: &sqliteProgress{db: db, opts: buildOptions(opts)},
		settings: &sqliteSettings{db: db},
		textLog:  &sqliteTextLog{db: db},
	}, nil
}

// Progress returns the progress store.
func (s *SQLite) Progress() ProgressStore { return s.progress }

// Settings returns the settings store.
func (s *SQLite) Settings() SettingsStore { return s.settings }

// TextLog returns the text log store.
func (s *SQLite) TextLog() TextLogStore { return s.textLog }

// Close closes the underlying database.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fail("close", err)
	}
	return nil
}

type sqliteProgress struct {
	db   *sql.DB
	opts options
}

const progressColumns = "id, current_route, current_scene, cleared_routes, last_save_time"

func (s *sqliteProgress) GetOrCreate(ctx context.Context) (*progress.Record, error) {
	r, err := scanProgress(s.db.QueryRowContext(ctx,
		"SELECT "+progressColumns+" FROM progress ORDER BY rowid LIMIT 1"))
	if err == nil {
		return s.opts.restore(r), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fail("get progress", err)
	}

	rec := progress.New(DefaultSlotID, s.opts.record...)
	if err := s.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *sqliteProgress) Save(ctx context.Context, rec *progress.Record) error {
	r := rowOf(rec)
	cleared, err := json.Marshal(r.ClearedRoutes)
	if err != nil {
		return fail("encode cleared routes", err)
	}

	const q = `
		INSERT INTO progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_route  = excluded.current_route,
			current_scene  = excluded.current_scene,
			cleared_routes = excluded.cleared_routes,
			last_save_time = excluded.last_save_time`
	if _, err := s.db.ExecContext(ctx, q, r.ID, r.CurrentRoute, r.CurrentScene, string(cleared), r.LastSaveTime); err != nil {
		return fail(fmt.Sprintf("save progress %q", r.ID), err)
	}
	return nil
}

func (s *sqliteProgress) FindByID(ctx context.Context, id string) (*progress.Record, bool, error) {
	r, err := scanProgress(s.db.QueryRowContext(ctx,
		"SELECT "+progressColumns+" FROM progress WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fail(fmt.Sprintf("find progress %q", id), err)
	}
	return s.opts.restore(r), true, nil
}

func (s *sqliteProgress) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM progress WHERE id = ?", id); err != nil {
		return fail(fmt.Sprintf("delete progress %q", id), err)
	}
	return nil
}

func (s *sqliteProgress) List(ctx context.Context) ([]*progress.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+progressColumns+" FROM progress ORDER BY rowid")
	if err != nil {
		return nil, fail("list progress", err)
	}
	defer rows.Close()

	var recs []*progress.Record
	for rows.Next() {
		r, err := scanProgress(rows)
		if err != nil {
			return nil, fail("list progress", err)
		}
		recs = append(recs, s.opts.restore(r))
	}
	if err := rows.Err(); err != nil {
		return nil, fail("list progress", err)
	}
	return recs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(sc scanner) (row, error) {
	var (
		r       row
		cleared string
	)
	if err := sc.Scan(&r.ID, &r.CurrentRoute, &r.CurrentScene, &cleared, &r.LastSaveTime); err != nil {
		return row{}, err
	}
	if err := json.Unmarshal([]byte(cleared), &r.ClearedRoutes); err != nil {
		return row{}, fmt.Errorf("decode cleared routes for %q: %w", r.ID, err)
	}
	return r, nil
}

type sqliteSettings struct {
	db *sql.DB
}

func (s *sqliteSettings) Get(ctx context.Context) (settings.Settings, error) {
	var (
		volume, speed float64
		autoSave      bool
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT volume, text_speed, auto_save FROM settings WHERE id = 1").Scan(&volume, &speed, &autoSave)
	if errors.Is(err, sql.ErrNoRows) {
		def := settings.Default()
		if err := s.Save(ctx, def); err != nil {
			return settings.Settings{}, err
		}
		return def, nil
	}
	if err != nil {
		return settings.Settings{}, fail("get settings", err)
	}

	st, err := settings.New(volume, speed, autoSave)
	if err != nil {
		return settings.Settings{}, fail("decode settings", err)
	}
	return st, nil
}

func (s *sqliteSettings) Save(ctx context.Context, st settings.Settings) error {
	const q = `
		INSERT INTO settings (id, volume, text_speed, auto_save)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume     = excluded.volume,
			text_speed = excluded.text_speed,
			auto_save  = excluded.auto_save`
	if _, err := s.db.ExecContext(ctx, q, st.Volume(), st.TextSpeed(), st.AutoSaveEnabled()); err != nil {
		return fail("save settings", err)
	}
	return nil
}

func (s *sqliteSettings) InitializeDefault(ctx context.Context) error {
	return s.Save(ctx, settings.Default())
}

type sqliteTextLog struct {
	db *sql.DB
}

const textLogColumns = "id, route, scene, text, logged_at"

func (s *sqliteTextLog) SaveEntry(ctx context.Context, e textlog.Entry) error {
	const q = `INSERT OR REPLACE INTO text_log (` + textLogColumns + `) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, e.ID, e.Route.Value(), e.Scene.Value(), e.Text, e.Timestamp.UnixNano()); err != nil {
		return fail(fmt.Sprintf("save text log entry %q", e.ID), err)
	}
	return nil
}

func (s *sqliteTextLog) FindByRoute(ctx context.Context, r route.Tag) ([]textlog.Entry, error) {
	return s.query(ctx, "find text log by route",
		"SELECT "+textLogColumns+" FROM text_log WHERE route = ? ORDER BY logged_at, rowid", r.Value())
}

func (s *sqliteTextLog) FindByRouteAndScene(ctx context.Context, r route.Tag, sc scene.Counter) ([]textlog.Entry, error) {
	return s.query(ctx, "find text log by route and scene",
		"SELECT "+textLogColumns+" FROM text_log WHERE route = ? AND scene = ? ORDER BY logged_at, rowid",
		r.Value(), sc.Value())
}

func (s *sqliteTextLog) FindAll(ctx context.Context) ([]textlog.Entry, error) {
	return s.query(ctx, "find text log", "SELECT "+textLogColumns+" FROM text_log ORDER BY logged_at, rowid")
}

func (s *sqliteTextLog) DeleteByRoute(ctx context.Context, r route.Tag) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM text_log WHERE route = ?", r.Value()); err != nil {
		return fail(fmt.Sprintf("delete text log for %q", r.Value()), err)
	}
	return nil
}

func (s *sqliteTextLog) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM text_log"); err != nil {
		return fail("delete text log", err)
	}
	return nil
}

func (s *sqliteTextLog) query(ctx context.Context, op, q string, args ...any) ([]textlog.Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fail(op, err)
	}
	defer rows.Close()

	var entries []textlog.Entry
	for rows.Next() {
		var (
			id, routeName, text string
			sceneNum            int
			loggedAt            int64
		)
		if err := rows.Scan(&id, &routeName, &sceneNum, &text, &loggedAt); err != nil {
			return nil, fail(op, err)
		}
		e, err := restoreEntry(id, routeName, sceneNum, text, loggedAt)
		if err != nil {
			return nil, fail(op, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(op, err)
	}
	return entries, nil
}

func restoreEntry(id, routeName string, sceneNum int, text string, loggedAt int64) (textlog.Entry, error) {
	sc, err := scene.From(sceneNum)
	if err != nil {
		return textlog.Entry{}, fmt.Errorf("text log entry %q: %w", id, err)
	}
	return textlog.Restore(id, route.From(routeName), sc, text, unixNano(loggedAt))
}
