// Package geo backs the "nearby therapy" view: it consumes a live position
// stream and derives the static clinic point-of-interest list from the first
// fix. Position failures map to distinct user-facing messages and never
// crash the host view.
package geo

import (
	"context"
	"fmt"
	"sync"
)

// Position is one latitude/longitude fix. Each update supersedes the last.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Clinic is a point-of-interest record shown on the map.
type Clinic struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Phone     string  `json:"phone"`
	Website   string  `json:"website"`
}

// ErrorCode mirrors the position-source failure modes.
type ErrorCode int

const (
	PermissionDenied ErrorCode = iota + 1
	PositionUnavailable
	Timeout
)

// PositionError is a failed position update.
type PositionError struct {
	Code    ErrorCode
	Message string
}

func (e PositionError) Error() string {
	return e.UserMessage()
}

// UserMessage returns the distinct user-facing wording for each failure mode.
func (e PositionError) UserMessage() string {
	switch e.Code {
	case PermissionDenied:
		return "Geolocation permission was denied. Please enable it in your browser settings to find nearby clinics."
	case PositionUnavailable:
		return fmt.Sprintf("Your location information is currently unavailable. Please check your network connection or move to an area with a better signal. (%s)", e.Message)
	case Timeout:
		return "The request to get your location timed out. Please try again."
	}
	return fmt.Sprintf("An unknown error occurred while trying to get your location. (%s)", e.Message)
}

// DefaultPosition is shown when no fix ever arrives (central London).
var DefaultPosition = Position{Latitude: 51.505, Longitude: -0.09}

// ClinicsNear returns the demo clinic list offset from pos.
func ClinicsNear(pos Position) []Clinic {
	return []Clinic{
		{Name: "HealWell Physiotherapy", Latitude: pos.Latitude + 0.01, Longitude: pos.Longitude - 0.01, Phone: "555-0101", Website: "https://example.com"},
		{Name: "ActiveLife Clinic", Latitude: pos.Latitude - 0.005, Longitude: pos.Longitude + 0.015, Phone: "555-0102", Website: "https://example.com"},
		{Name: "Flex-It Physio", Latitude: pos.Latitude + 0.008, Longitude: pos.Longitude + 0.008, Phone: "555-0103", Website: "https://example.com"},
	}
}

// Update is either a fix or a failure from the position source.
type Update struct {
	Position *Position
	Err      *PositionError
}

// Watcher tracks the latest position from a stream of updates. Clinics are
// anchored to the first successful fix; later fixes only move the user
// marker.
type Watcher struct {
	mu       sync.Mutex
	latest   *Position
	anchored []Clinic
	lastErr  *PositionError
	stopped  bool
}

func NewWatcher() *Watcher {
	return &Watcher{}
}

// Run consumes updates until the stream closes, the context is canceled, or
// permission is denied (after which further watching is pointless).
func (w *Watcher) Run(ctx context.Context, updates <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if stop := w.apply(u); stop {
				return
			}
		}
	}
}

func (w *Watcher) apply(u Update) (stop bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if u.Err != nil {
		w.lastErr = u.Err
		if u.Err.Code == PermissionDenied {
			w.stopped = true
			return true
		}
		return false
	}
	if u.Position == nil {
		return false
	}

	w.lastErr = nil
	w.latest = u.Position
	if w.anchored == nil {
		w.anchored = ClinicsNear(*u.Position)
	}
	return false
}

// Snapshot returns the current position (or the default when none arrived),
// the clinic list anchored to the first fix, and the latest failure message
// if the most recent update was an error.
func (w *Watcher) Snapshot() (Position, []Clinic, string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pos := DefaultPosition
	if w.latest != nil {
		pos = *w.latest
	}
	clinics := w.anchored
	if clinics == nil {
		clinics = ClinicsNear(pos)
	}
	msg := ""
	if w.lastErr != nil {
		msg = w.lastErr.UserMessage()
	}
	return pos, clinics, msg
}
