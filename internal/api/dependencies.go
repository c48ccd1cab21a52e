package api

import (
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/config"
	"fleetops/vanlist/internal/logging"
	"fleetops/vanlist/internal/metrics"
	"fleetops/vanlist/internal/services"
)

type Services struct {
	Cache         common.CacheInterface
	Assignment    *services.AssignmentService
	Bulk          *services.BulkService
	Import        *services.ImportService
	Export        *services.ExportService
	User          *services.UserService
	Preassignment *services.PreassignmentService
	Historical    *services.HistoricalService
	Roster        *services.RosterService
	Audit         *services.AuditService
}

type Dependencies struct {
	Services *Services
	Metrics  *metrics.MetricsRegistry
	SqlxDB   *sqlx.DB
	UpSince  time.Time
}

// InitDependencies wires the service graph over the two database handles.
// Redis backs the cache when configured, otherwise an in-process cache is
// used.
func InitDependencies(cfg *config.Config, ormDB *gorm.DB, sqlxDB *sqlx.DB) *Dependencies {
	var cacheSvc common.CacheInterface = common.NewCacheService(60, 600)
	if cfg.RedisAddr != "" {
		redisCache, err := common.NewRedisCacheService(cfg.RedisAddr)
		if err != nil {
			logging.Error("Redis unavailable, using in-memory cache",
				"addr", cfg.RedisAddr,
				"error", err.Error())
		} else {
			logging.Info("Using Redis cache", "addr", cfg.RedisAddr)
			cacheSvc = redisCache
		}
	}

	svcs := &Services{
		Cache:         cacheSvc,
		Assignment:    services.NewAssignmentService(ormDB),
		Bulk:          services.NewBulkService(ormDB),
		Import:        services.NewImportService(ormDB),
		Export:        services.NewExportService(ormDB),
		User:          services.NewUserService(ormDB, cfg.SecretKey, time.Duration(cfg.JWTExpireMinutes)*time.Minute),
		Preassignment: services.NewPreassignmentService(ormDB),
		Historical:    services.NewHistoricalService(ormDB),
		Roster:        services.NewRosterService(ormDB, cacheSvc),
		Audit:         services.NewAuditService(sqlxDB),
	}

	return &Dependencies{
		Services: svcs,
		Metrics:  metrics.NewMetricsRegistry(),
		SqlxDB:   sqlxDB,
		UpSince:  time.Now(),
	}
}
