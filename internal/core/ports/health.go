package ports

import "context"

// HealthChecker abstracts a dependency health probe.
// Check returns an error when the dependency is unavailable.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
	// Critical reports whether a failing check makes the service unhealthy rather than degraded.
	Critical() bool
}
