package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/settings"
)

// backends returns a fresh instance of every backend, keyed by name.
func backends(t *testing.T, opts ...Option) map[string]Backend {
	t.Helper()
	ctx := context.Background()

	sq, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "prism.db"), opts...)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	fb, err := OpenFile(filepath.Join(t.TempDir(), "data"), opts...)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	return map[string]Backend{
		"sqlite": sq,
		"file":   fb,
		"memory": NewMemory(opts...),
	}
}

func clearRoute(r *progress.Record, name string) {
	r.SelectRoute(route.From(name))
	for i := 0; i < progress.ScenesPerRoute; i++ {
		r.AdvanceScene()
	}
}

// snapshot is a comparable view of a record.
type snapshot struct {
	ID      string
	Route   string
	Scene   int
	Cleared []string
	SavedAt int64
}

func snap(r *progress.Record) snapshot {
	return snapshot{
		ID:      r.ID(),
		Route:   r.CurrentRoute().Value(),
		Scene:   r.CurrentScene().Value(),
		Cleared: r.ClearedRouteNames(),
		SavedAt: r.LastSaveTime().UnixNano(),
	}
}

func TestProgressStoreContract(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ps := b.Progress()

			t.Run("get or create", func(t *testing.T) {
				first, err := ps.GetOrCreate(ctx)
				if err != nil {
					t.Fatalf("GetOrCreate: %v", err)
				}
				if first.ID() != DefaultSlotID {
					t.Errorf("ID() = %q, want %q", first.ID(), DefaultSlotID)
				}
				if !first.CurrentRoute().IsEmpty() || first.CurrentScene().Value() != 0 {
					t.Errorf("fresh record = %+v", snap(first))
				}

				second, err := ps.GetOrCreate(ctx)
				if err != nil {
					t.Fatalf("second GetOrCreate: %v", err)
				}
				if diff := cmp.Diff(snap(first), snap(second)); diff != "" {
					t.Errorf("second GetOrCreate differs (-first +second):\n%s", diff)
				}

				recs, err := ps.List(ctx)
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				if len(recs) != 1 {
					t.Errorf("List() returned %d records, want 1", len(recs))
				}
			})

			t.Run("save round trip", func(t *testing.T) {
				rec, err := ps.GetOrCreate(ctx)
				if err != nil {
					t.Fatalf("GetOrCreate: %v", err)
				}
				clearRoute(rec, "route1")
				rec.SelectRoute(route.From("route2"))
				for i := 0; i < 42; i++ {
					rec.AdvanceScene()
				}
				if err := ps.Save(ctx, rec); err != nil {
					t.Fatalf("Save: %v", err)
				}

				got, ok, err := ps.FindByID(ctx, rec.ID())
				if err != nil || !ok {
					t.Fatalf("FindByID = (%v, %v, %v)", got, ok, err)
				}
				if diff := cmp.Diff(snap(rec), snap(got)); diff != "" {
					t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
				}

				again, err := ps.GetOrCreate(ctx)
				if err != nil {
					t.Fatalf("GetOrCreate: %v", err)
				}
				if diff := cmp.Diff(snap(rec), snap(again)); diff != "" {
					t.Errorf("GetOrCreate after save mismatch (-saved +loaded):\n%s", diff)
				}
			})

			t.Run("loaded records are independent", func(t *testing.T) {
				one, _, _ := ps.FindByID(ctx, DefaultSlotID)
				other, _, _ := ps.FindByID(ctx, DefaultSlotID)
				one.SelectRoute(route.From("route3"))
				if other.CurrentRoute().Value() == "route3" {
					t.Error("records returned by FindByID share state")
				}
			})

			t.Run("find missing", func(t *testing.T) {
				rec, ok, err := ps.FindByID(ctx, "no-such-id")
				if err != nil {
					t.Fatalf("FindByID: %v", err)
				}
				if ok || rec != nil {
					t.Errorf("FindByID(missing) = (%v, %v), want (nil, false)", rec, ok)
				}
			})

			t.Run("multiple slots and delete", func(t *testing.T) {
				extra := progress.New("2")
				extra.SelectRoute(route.From("route3"))
				if err := ps.Save(ctx, extra); err != nil {
					t.Fatalf("Save: %v", err)
				}

				recs, err := ps.List(ctx)
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				var ids []string
				for _, r := range recs {
					ids = append(ids, r.ID())
				}
				if diff := cmp.Diff([]string{DefaultSlotID, "2"}, ids); diff != "" {
					t.Errorf("List() ids mismatch (-want +got):\n%s", diff)
				}

				if err := ps.Delete(ctx, "2"); err != nil {
					t.Fatalf("Delete: %v", err)
				}
				if _, ok, _ := ps.FindByID(ctx, "2"); ok {
					t.Error("record 2 still present after Delete")
				}
				if err := ps.Delete(ctx, "2"); err != nil {
					t.Errorf("Delete of absent id: %v", err)
				}
			})

			t.Run("delete default slot then recreate", func(t *testing.T) {
				if err := ps.Delete(ctx, DefaultSlotID); err != nil {
					t.Fatalf("Delete: %v", err)
				}
				rec, err := ps.GetOrCreate(ctx)
				if err != nil {
					t.Fatalf("GetOrCreate: %v", err)
				}
				if len(rec.ClearedRoutes()) != 0 || rec.CurrentScene().Value() != 0 {
					t.Errorf("recreated record not fresh: %+v", snap(rec))
				}
			})
		})
	}
}

func TestRestoreNormalizesStoredRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	savedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		sq, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "prism.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		defer sq.Close()

		_, err = sq.db.ExecContext(ctx,
			`INSERT INTO progress (`+progressColumns+`) VALUES (?, ?, ?, ?, ?)`,
			"1", "route1", 999, `["route1","route1","route2"]`, savedAt.UnixNano())
		if err != nil {
			t.Fatalf("insert: %v", err)
		}

		rec, err := sq.Progress().GetOrCreate(ctx)
		if err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		if rec.CurrentScene().Value() != progress.ScenesPerRoute {
			t.Errorf("CurrentScene() = %d, want %d", rec.CurrentScene().Value(), progress.ScenesPerRoute)
		}
		if len(rec.ClearedRoutes()) != 2 {
			t.Errorf("ClearedRoutes() size = %d, want 2", len(rec.ClearedRoutes()))
		}
		if !rec.LastSaveTime().Equal(savedAt) {
			t.Errorf("LastSaveTime() = %v, want %v", rec.LastSaveTime(), savedAt)
		}
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		doc := "version = 1\n\n[[slots]]\nid = \"1\"\ncurrent_route = \"route1\"\ncurrent_scene = -5\ncleared_routes = [\"route2\", \"route2\"]\nlast_save_nanos = 0\n"
		if err := os.WriteFile(filepath.Join(dir, progressFileName), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		fb, err := OpenFile(dir)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		rec, err := fb.Progress().GetOrCreate(ctx)
		if err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		if rec.CurrentScene().Value() != 0 {
			t.Errorf("CurrentScene() = %d, want 0", rec.CurrentScene().Value())
		}
		if diff := cmp.Diff([]string{"route2"}, rec.ClearedRouteNames()); diff != "" {
			t.Errorf("ClearedRouteNames() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRecordOptionsApplied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog := route.NewCatalog(route.WithBaseRoutes("only"))

	for name, b := range backends(t, WithRecordOptions(progress.WithCatalog(catalog))) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rec, err := b.Progress().GetOrCreate(ctx)
			if err != nil {
				t.Fatalf("GetOrCreate: %v", err)
			}
			if rec.Catalog() != catalog {
				t.Fatal("created record does not use injected catalog")
			}
			clearRoute(rec, "only")
			if err := b.Progress().Save(ctx, rec); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, _, err := b.Progress().FindByID(ctx, rec.ID())
			if err != nil {
				t.Fatalf("FindByID: %v", err)
			}
			if !loaded.IsTrueRouteUnlocked() {
				t.Error("restored record does not use injected catalog")
			}
		})
	}
}

func TestStorageFailuresWrapErrStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("closed sqlite", func(t *testing.T) {
		t.Parallel()
		sq, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "prism.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		sq.Close()

		_, err = sq.Progress().GetOrCreate(ctx)
		if !errors.Is(err, ErrStorage) {
			t.Errorf("GetOrCreate on closed db error = %v, want ErrStorage", err)
		}
		err = sq.Progress().Save(ctx, progress.New("1"))
		if !errors.Is(err, ErrStorage) {
			t.Errorf("Save on closed db error = %v, want ErrStorage", err)
		}
		var se *Error
		if !errors.As(err, &se) || se.Op == "" {
			t.Errorf("expected *Error with op, got %v", err)
		}
		if _, _, err := sq.Progress().FindByID(ctx, "1"); !errors.Is(err, ErrStorage) {
			t.Errorf("FindByID on closed db error = %v, want ErrStorage", err)
		}
	})

	t.Run("unopenable sqlite path", func(t *testing.T) {
		t.Parallel()
		_, err := OpenSQLite(ctx, filepath.Join(os.DevNull, "nonexistent", "prism.db"))
		if !errors.Is(err, ErrStorage) {
			t.Errorf("OpenSQLite error = %v, want ErrStorage", err)
		}
	})

	t.Run("corrupt file document", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, progressFileName), []byte("slots = [[["), 0o644); err != nil {
			t.Fatal(err)
		}
		fb, err := OpenFile(dir)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		if _, err := fb.Progress().GetOrCreate(ctx); !errors.Is(err, ErrStorage) {
			t.Errorf("GetOrCreate error = %v, want ErrStorage", err)
		}
		if _, err := fb.Progress().List(ctx); !errors.Is(err, ErrStorage) {
			t.Errorf("List error = %v, want ErrStorage", err)
		}
	})

	t.Run("invalid stored settings", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		doc := "volume = 3.0\ntext_speed = 1.0\nauto_save = true\n"
		if err := os.WriteFile(filepath.Join(dir, settingsFileName), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		fb, err := OpenFile(dir)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		_, err = fb.Settings().Get(ctx)
		if !errors.Is(err, ErrStorage) || !errors.Is(err, settings.ErrInvalidVolume) {
			t.Errorf("Get error = %v, want ErrStorage wrapping ErrInvalidVolume", err)
		}
	})
}
