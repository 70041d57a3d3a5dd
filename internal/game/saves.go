package game

import (
	"context"
	"errors"
	"time"

	"github.com/papapumpkin/prism/internal/progress"
)

// Save list messages.
const (
	MsgSaveNotFound = "save data not found"
	MsgLoadFailed   = "failed to load save data"
)

// ErrSaveNotFound is returned when the active slot no longer exists.
var ErrSaveNotFound = errors.New(MsgSaveNotFound)

// Summary describes one save slot for listing.
type Summary struct {
	ID          string
	RouteName   string
	SceneNumber int
	LastUpdated time.Time
}

// ListResult is the outcome of ListSaves.
type ListResult struct {
	Success bool
	Saves   []Summary
	Message string
}

// LoadResult is the outcome of LoadSave. Record is set on success.
type LoadResult struct {
	Success bool
	Record  *progress.Record
	Message string
}

// ListSaves summarizes every stored record in slot order.
func (s *Service) ListSaves(ctx context.Context) ListResult {
	recs, err := s.progress.List(ctx)
	if err != nil {
		return ListResult{Message: MsgLoadFailed}
	}
	saves := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		saves = append(saves, Summary{
			ID:          rec.ID(),
			RouteName:   rec.CurrentRoute().Value(),
			SceneNumber: rec.CurrentScene().Value(),
			LastUpdated: rec.LastSaveTime(),
		})
	}
	return ListResult{Success: true, Saves: saves}
}

// LoadSave loads the record with id and makes it the active slot.
func (s *Service) LoadSave(ctx context.Context, id string) LoadResult {
	rec, ok, err := s.progress.FindByID(ctx, id)
	if err != nil {
		return LoadResult{Message: MsgLoadFailed}
	}
	if !ok {
		return LoadResult{Message: MsgSaveNotFound}
	}

	s.mu.Lock()
	s.slot = id
	s.mu.Unlock()
	return LoadResult{Success: true, Record: rec}
}

// ActiveSlot returns the id of the slot operations apply to, or "" when the
// store's first slot is used.
func (s *Service) ActiveSlot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot
}
