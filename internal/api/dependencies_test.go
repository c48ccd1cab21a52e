package api

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleetops/vanlist/internal/config"
)

func TestInitDependencies_InMemoryCacheDefault(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// No REDIS_ADDR configured: the in-process cache backs the services.
	cfg := &config.Config{SecretKey: "test-secret", JWTExpireMinutes: 30}
	deps := InitDependencies(cfg, db, nil)

	if deps.Services.Cache == nil {
		t.Fatal("Expected a cache implementation")
	}
	deps.Services.Cache.Set("k", "v", 0)
	if v, ok := deps.Services.Cache.Get("k"); !ok || v != "v" {
		t.Errorf("Cache round trip failed, got %v (%t)", v, ok)
	}

	if deps.Services.Assignment == nil || deps.Services.Bulk == nil ||
		deps.Services.Import == nil || deps.Services.Export == nil ||
		deps.Services.User == nil || deps.Services.Preassignment == nil ||
		deps.Services.Historical == nil || deps.Services.Roster == nil ||
		deps.Services.Audit == nil {
		t.Error("Not all services wired")
	}
	if deps.Metrics == nil {
		t.Error("Metrics registry not wired")
	}
}
