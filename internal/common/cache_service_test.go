package common

import (
	"errors"
	"testing"
	"time"
)

func TestCacheService_SetGet(t *testing.T) {
	cs := NewCacheService(60, 600)

	if _, ok := cs.Get("missing"); ok {
		t.Error("Expected miss on empty cache")
	}

	cs.Set("k", 42, time.Minute)
	v, ok := cs.Get("k")
	if !ok || v != 42 {
		t.Errorf("Expected cached 42, got %v (%t)", v, ok)
	}
}

func TestCacheService_GetOrSet(t *testing.T) {
	cs := NewCacheService(60, 600)

	calls := 0
	loader := func() (any, error) {
		calls++
		return "loaded", nil
	}

	v, err := cs.GetOrSet("k", time.Minute, loader)
	if err != nil {
		t.Fatalf("GetOrSet failed: %v", err)
	}
	if v != "loaded" || calls != 1 {
		t.Errorf("Expected loader run once, got %v after %d calls", v, calls)
	}

	// Second lookup is served from cache without re-running the loader.
	v, err = cs.GetOrSet("k", time.Minute, loader)
	if err != nil {
		t.Fatalf("Second GetOrSet failed: %v", err)
	}
	if v != "loaded" || calls != 1 {
		t.Errorf("Expected cached hit, got %v after %d calls", v, calls)
	}
}

func TestCacheService_GetOrSetLoaderError(t *testing.T) {
	cs := NewCacheService(60, 600)

	boom := errors.New("store down")
	if _, err := cs.GetOrSet("k", time.Minute, func() (any, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Expected loader error surfaced, got %v", err)
	}

	// The failure is not cached; the next loader runs and succeeds.
	v, err := cs.GetOrSet("k", time.Minute, func() (any, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("GetOrSet after failure failed: %v", err)
	}
	if v != "recovered" {
		t.Errorf("Expected recovered value, got %v", v)
	}
}
