// Package telemetry provides a JSONL event stream recording progress
// transitions: route selection and denial, scene advances, clears, saves,
// and catalog reloads. Each line is one Event, so a play session can be
// audited or replayed after the fact.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// FileName is the telemetry log kept inside the data directory.
const FileName = "telemetry.jsonl"

// Event kinds identify the type of telemetry event.
const (
	KindRouteSelected   = "route_selected"
	KindRouteDenied     = "route_denied"
	KindSceneAdvanced   = "scene_advanced"
	KindRouteCleared    = "route_cleared"
	KindAutoSave        = "autosave"
	KindSaveFailed      = "save_failed"
	KindCatalogReloaded = "catalog_reloaded"
)

// Event represents a single telemetry record. Slot and Route identify the
// progress record and route involved, when there is one.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Slot      string    `json:"slot,omitempty"`
	Route     string    `json:"route,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	now  func() time.Time
	mu   sync.Mutex
}

// NewEmitter creates a new Emitter that appends JSONL events to the file at
// path, creating it if needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

// Emit writes a single event. A zero Timestamp is filled with the current
// time. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close closes the underlying file. Calling Close on a nil Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}

// Decode reads events from r until EOF, calling fn for each. It stops at the
// first malformed line or the first error returned by fn.
func Decode(r io.Reader, fn func(Event) error) error {
	dec := json.NewDecoder(r)
	for {
		var evt Event
		err := dec.Decode(&evt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("telemetry: decode event: %w", err)
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
}
