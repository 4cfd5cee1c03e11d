package health

import (
	"context"
	"errors"

	"github.com/avatarctic/blog-platform/internal/core/ports"
	infraDB "github.com/avatarctic/blog-platform/internal/infrastructure/db"
)

// ErrCacheUnavailable is reported while the cache store does not answer pings.
var ErrCacheUnavailable = errors.New("cache store unavailable")

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.Ping(ctx) }
func (d *dbHealthChecker) Critical() bool                  { return true }

// cacheHealthChecker probes the cache store. The service keeps serving without it.
type cacheHealthChecker struct{ store ports.CacheStore }

func (c *cacheHealthChecker) Name() string { return "cache" }
func (c *cacheHealthChecker) Check(ctx context.Context) error {
	if !c.store.IsHealthy(ctx) {
		return ErrCacheUnavailable
	}
	return nil
}
func (c *cacheHealthChecker) Critical() bool { return false }

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewCacheHealthChecker creates a non-critical health checker for the cache store.
func NewCacheHealthChecker(store ports.CacheStore) ports.HealthChecker {
	return &cacheHealthChecker{store: store}
}
