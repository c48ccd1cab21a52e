package services

import (
	"testing"

	models "fleetops/vanlist/internal/models/gorm"
)

func driverPool(names ...string) []models.Driver {
	pool := make([]models.Driver, len(names))
	for i, n := range names {
		pool[i] = models.Driver{ID: uint(i + 1), Name: n}
	}
	return pool
}

func TestMatchDriverName_Exact(t *testing.T) {
	pool := driverPool("Alice Smith", "Bob Jones")

	got := MatchDriverName("alice smith", pool)
	if got == nil || got.Name != "Alice Smith" {
		t.Fatalf("Expected exact match on Alice Smith, got %v", got)
	}
}

func TestMatchDriverName_FirstNamePrefix(t *testing.T) {
	pool := driverPool("Benjamin Angilley", "Bob Jones")

	got := MatchDriverName("Ben Angilley", pool)
	if got == nil || got.Name != "Benjamin Angilley" {
		t.Fatalf("Expected Ben Angilley to match Benjamin Angilley, got %v", got)
	}
}

func TestMatchDriverName_MiddleNameDropped(t *testing.T) {
	pool := driverPool("Simon Peter Abbott", "Bob Jones")

	got := MatchDriverName("Simon Abbott", pool)
	if got == nil || got.Name != "Simon Peter Abbott" {
		t.Fatalf("Expected Simon Abbott to match Simon Peter Abbott, got %v", got)
	}
}

func TestMatchDriverName_AmbiguousLastName(t *testing.T) {
	pool := driverPool("Benjamin Angilley", "Bernard Angilley")

	// "B Angilley" is prefix-compatible with both; no unique survivor in
	// tier 2, and tier 3's first-hit rule still resolves to a candidate.
	got := MatchDriverName("B Angilley", pool)
	if got == nil {
		t.Fatal("Expected tier 3 first-hit match, got nil")
	}
}

func TestMatchDriverName_NoMatch(t *testing.T) {
	pool := driverPool("Alice Smith", "Bob Jones")

	if got := MatchDriverName("Charlie Brown", pool); got != nil {
		t.Fatalf("Expected no match, got %v", got)
	}
	if got := MatchDriverName("", pool); got != nil {
		t.Fatalf("Expected no match for empty name, got %v", got)
	}
	if got := MatchDriverName("Alice Smith", nil); got != nil {
		t.Fatalf("Expected no match against empty pool, got %v", got)
	}
}

func TestMatchDriverName_DifferentLastNameRejected(t *testing.T) {
	pool := driverPool("Alice Smith")

	if got := MatchDriverName("Alice Smythe", pool); got != nil {
		t.Fatalf("Expected no match for different surname, got %v", got)
	}
}
