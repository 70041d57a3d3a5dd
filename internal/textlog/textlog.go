// Package textlog records the narrative text shown to the player so it can be
// reviewed later, keyed by route and scene.
package textlog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/scene"
)

// ErrEmptyText is returned when an entry's text is blank.
var ErrEmptyText = errors.New("text log entry text must not be empty")

// Entry is one line of displayed text.
type Entry struct {
	ID        string
	Route     route.Tag
	Scene     scene.Counter
	Text      string
	Timestamp time.Time
}

// NewEntry creates an entry with a fresh ID stamped with the current time.
func NewEntry(r route.Tag, s scene.Counter, text string) (Entry, error) {
	return Restore(uuid.NewString(), r, s, text, time.Now())
}

// Restore rebuilds an entry from stored fields.
func Restore(id string, r route.Tag, s scene.Counter, text string, ts time.Time) (Entry, error) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, ErrEmptyText
	}
	return Entry{ID: id, Route: r, Scene: s, Text: text, Timestamp: ts}, nil
}

// IsFromRoute reports whether the entry was recorded on route r.
func (e Entry) IsFromRoute(r route.Tag) bool {
	return e.Route.Equal(r)
}

// IsFromScene reports whether the entry was recorded at scene s.
func (e Entry) IsFromScene(s scene.Counter) bool {
	return e.Scene.Equal(s)
}
