package game

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/store"
	"github.com/papapumpkin/prism/internal/telemetry"
)

func TestTelemetryEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), telemetry.FileName)
	em, err := telemetry.NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	svc, _ := newService(t, WithEmitter(em))
	svc.SelectRoute(ctx, route.DefaultTrueRoute)
	svc.SelectRoute(ctx, "route1")
	advanceN(t, svc, progress.ScenesPerRoute+2)
	if _, err := svc.AutoSave(ctx); err != nil {
		t.Fatalf("AutoSave: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	counts := map[string]int{}
	if err := telemetry.Decode(f, func(evt telemetry.Event) error {
		counts[evt.Kind]++
		return nil
	}); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := map[string]int{
		telemetry.KindRouteDenied:   1,
		telemetry.KindRouteSelected: 1,
		telemetry.KindSceneAdvanced: progress.ScenesPerRoute,
		telemetry.KindRouteCleared:  1,
		telemetry.KindAutoSave:      1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("event counts mismatch (-want +got):\n%s", diff)
	}
}


func TestAdvancePastTerminalDoesNotSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := store.NewMemory()
	clearRoute(t, New(mem.Progress(), mem.Settings()), "route1")

	svc := New(saveFailing{mem.Progress()}, mem.Settings())
	res, err := svc.AdvanceScene(ctx)
	if err != nil {
		t.Fatalf("AdvanceScene at terminal scene: %v", err)
	}
	if res.RouteCleared || res.CurrentScene != progress.ScenesPerRoute {
		t.Errorf("AdvanceScene = %+v, want scene %d without clear", res, progress.ScenesPerRoute)
	}
}

func TestServiceCatalogDecidesTrueRoute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := route.NewCatalog(route.WithBaseRoutes("a"))

	// The store restores records with its own default catalog.
	mem := store.NewMemory()
	svc := New(mem.Progress(), mem.Settings(), WithCatalog(c))

	if res := svc.SelectRoute(ctx, c.TrueRouteName()); res.Success {
		t.Fatalf("true route selectable before clearing: %+v", res)
	}
	clearRoute(t, svc, "a")

	st, err := svc.CurrentState(ctx)
	if err != nil {
		t.Fatalf("CurrentState: %v", err)
	}
	if !st.TrueRouteUnlocked {
		t.Errorf("TrueRouteUnlocked = false after clearing every base route, state %+v", st)
	}
	if res := svc.SelectRoute(ctx, c.TrueRouteName()); !res.Success {
		t.Errorf("SelectRoute(true route) = %+v", res)
	}
}
