// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/apsfd-portal/internal/domain"
)

// Repository defines the interface for the portal's durable data: the
// training catalog and the login audit trail. Session state is never stored.
type Repository interface {
	// ListModules returns the training catalog in display order.
	ListModules(ctx context.Context) ([]domain.TrainingModule, error)

	// SeedModules inserts the given modules when the catalog is empty.
	// It returns the number of rows inserted.
	SeedModules(ctx context.Context, modules []domain.TrainingModule) (int, error)

	// RecordAuthEvent appends a login attempt to the audit trail.
	RecordAuthEvent(ctx context.Context, event domain.AuthEvent) error

	// RecentAuthEvents returns the latest audit entries, newest first.
	RecentAuthEvents(ctx context.Context, limit int) ([]domain.AuthEvent, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
