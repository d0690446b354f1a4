package domain

import (
	"context"

	"github.com/OliveiraNt/polyglot/internal/catalog"
)

// CatalogRepository gives access to the current language catalog.
type CatalogRepository interface {
	Current() *catalog.Catalog
	LoadFromFile() error
	Subscribe(fn func(ReloadEvent))
	Watch() error
}

// HealthChecker reports whether an outside dependency is reachable.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

// EventPublisher announces catalog reloads to other services.
type EventPublisher interface {
	Publish(ctx context.Context, ev ReloadEvent) error
	Close()
}
