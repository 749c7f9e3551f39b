package atomic_test

import (
	"strings"
	"testing"

	"github.com/mwhitworth/stagehand/internal/atomic"
)

func TestLocalIDTracker_RoundTrip(t *testing.T) {
	tracker := atomic.NewLocalIDTracker()

	if err := tracker.Declare("p-1", "performers", "7"); err != nil {
		t.Fatalf("declare: %v", err)
	}

	id, err := tracker.Resolve("p-1", "performers")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "7" {
		t.Errorf("id = %q, want 7", id)
	}
}

func TestLocalIDTracker_Undeclared(t *testing.T) {
	tracker := atomic.NewLocalIDTracker()

	_, err := tracker.Resolve("ghost", "performers")
	if err == nil {
		t.Fatal("expected error for undeclared local id")
	}
	if !strings.Contains(err.Error(), "Local ID 'ghost' is not defined at this point.") {
		t.Errorf("error = %q", err)
	}
}

func TestLocalIDTracker_Redeclare(t *testing.T) {
	tracker := atomic.NewLocalIDTracker()

	if err := tracker.Declare("p-1", "performers", "7"); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := tracker.Declare("p-1", "performers", "8"); err == nil {
		t.Fatal("expected error for redeclared local id")
	}
}

func TestLocalIDTracker_TypeMismatch(t *testing.T) {
	tracker := atomic.NewLocalIDTracker()

	if err := tracker.Declare("p-1", "performers", "7"); err != nil {
		t.Fatalf("declare: %v", err)
	}

	_, err := tracker.Resolve("p-1", "playlists")
	if err == nil {
		t.Fatal("expected error for type mismatch")
	}
	if !strings.Contains(err.Error(), "belongs to resource type 'performers' instead of 'playlists'") {
		t.Errorf("error = %q", err)
	}
}
