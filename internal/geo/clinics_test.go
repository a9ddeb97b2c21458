package geo

import (
	"context"
	"strings"
	"testing"
)

func TestClinicsNearOffsets(t *testing.T) {
	pos := Position{Latitude: 40.0, Longitude: -75.0}
	clinics := ClinicsNear(pos)
	if len(clinics) != 3 {
		t.Fatalf("expected 3 clinics, got %d", len(clinics))
	}
	first := clinics[0]
	if first.Latitude != 40.01 || first.Longitude != -75.01 {
		t.Errorf("unexpected first clinic offset: %+v", first)
	}
	for _, c := range clinics {
		if c.Name == "" || c.Phone == "" || c.Website == "" {
			t.Errorf("clinic record incomplete: %+v", c)
		}
	}
}

func TestPositionErrorMessages(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{PermissionDenied, "permission was denied"},
		{PositionUnavailable, "currently unavailable"},
		{Timeout, "timed out"},
		{ErrorCode(99), "unknown error"},
	}
	for _, tc := range cases {
		got := PositionError{Code: tc.code, Message: "detail"}.UserMessage()
		if !strings.Contains(got, tc.want) {
			t.Errorf("code %d: message %q does not mention %q", tc.code, got, tc.want)
		}
	}
}

func TestWatcherSnapshotDefaults(t *testing.T) {
	w := NewWatcher()
	pos, clinics, msg := w.Snapshot()
	if pos != DefaultPosition {
		t.Errorf("expected default position, got %+v", pos)
	}
	if len(clinics) != 3 {
		t.Errorf("expected clinics around the default position, got %d", len(clinics))
	}
	if msg != "" {
		t.Errorf("expected no error message, got %q", msg)
	}
}

func TestWatcherAnchorsClinicsToFirstFix(t *testing.T) {
	w := NewWatcher()
	updates := make(chan Update, 3)
	updates <- Update{Position: &Position{Latitude: 10, Longitude: 10}}
	updates <- Update{Position: &Position{Latitude: 20, Longitude: 20}}
	close(updates)

	w.Run(context.Background(), updates)

	pos, clinics, _ := w.Snapshot()
	if pos.Latitude != 20 || pos.Longitude != 20 {
		t.Errorf("expected latest fix as position, got %+v", pos)
	}
	// The clinic list stays pinned to the first fix.
	if clinics[0].Latitude != 10.01 {
		t.Errorf("clinics must anchor to the first fix, got %+v", clinics[0])
	}
}

func TestWatcherStopsOnPermissionDenied(t *testing.T) {
	w := NewWatcher()
	updates := make(chan Update, 2)
	updates <- Update{Err: &PositionError{Code: PermissionDenied}}
	// A later fix must never be consumed; Run returns before it.
	updates <- Update{Position: &Position{Latitude: 1, Longitude: 1}}

	w.Run(context.Background(), updates)

	pos, _, msg := w.Snapshot()
	if pos != DefaultPosition {
		t.Errorf("expected default position after denial, got %+v", pos)
	}
	if !strings.Contains(msg, "permission was denied") {
		t.Errorf("expected denial message, got %q", msg)
	}
}

func TestWatcherRecoverableErrorThenFix(t *testing.T) {
	w := NewWatcher()
	updates := make(chan Update, 2)
	updates <- Update{Err: &PositionError{Code: Timeout}}
	updates <- Update{Position: &Position{Latitude: 5, Longitude: 5}}
	close(updates)

	w.Run(context.Background(), updates)

	pos, _, msg := w.Snapshot()
	if pos.Latitude != 5 {
		t.Errorf("expected fix applied after recoverable error, got %+v", pos)
	}
	if msg != "" {
		t.Errorf("a successful fix must clear the error message, got %q", msg)
	}
}

func TestWatcherRunHonorsContext(t *testing.T) {
	w := NewWatcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered and never written: Run must return via the context.
	w.Run(ctx, make(chan Update))
}
