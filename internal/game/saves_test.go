package game

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/store"
)

func TestSaveList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, mem := newService(t)

	svc.SelectRoute(ctx, "route1")
	advanceN(t, svc, 3)

	other := progress.New("2")
	other.SelectRoute(route.From("route2"))
	if err := mem.Progress().Save(ctx, other); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list := svc.ListSaves(ctx)
	if !list.Success {
		t.Fatalf("ListSaves = %+v", list)
	}
	var got []Summary
	for _, s := range list.Saves {
		got = append(got, Summary{ID: s.ID, RouteName: s.RouteName, SceneNumber: s.SceneNumber})
	}
	want := []Summary{
		{ID: store.DefaultSlotID, RouteName: "route1", SceneNumber: 3},
		{ID: "2", RouteName: "route2", SceneNumber: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListSaves mismatch (-want +got):\n%s", diff)
	}

	if res := svc.LoadSave(ctx, "missing"); res.Success || res.Message != MsgSaveNotFound {
		t.Errorf("LoadSave(missing) = %+v", res)
	}
	if svc.ActiveSlot() != "" {
		t.Errorf("ActiveSlot() = %q after failed load", svc.ActiveSlot())
	}

	res := svc.LoadSave(ctx, "2")
	if !res.Success || res.Record.ID() != "2" {
		t.Fatalf("LoadSave(2) = %+v", res)
	}
	advanceN(t, svc, 1)
	st, err := svc.CurrentState(ctx)
	if err != nil {
		t.Fatalf("CurrentState: %v", err)
	}
	if st.Slot != "2" || st.CurrentRoute != "route2" || st.CurrentScene != 1 {
		t.Errorf("state after load = %+v", st)
	}

	if err := mem.Progress().Delete(ctx, "2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.CurrentState(ctx); !errors.Is(err, ErrSaveNotFound) {
		t.Errorf("CurrentState after delete error = %v, want ErrSaveNotFound", err)
	}
}
