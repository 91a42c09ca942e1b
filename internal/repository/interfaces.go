package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/claim-calculator/internal/domain"
)

// CalculationRepository defines the interface for calculation audit records
type CalculationRepository interface {
	// Create stores a computed calculation
	Create(ctx context.Context, calc *domain.Calculation) error

	// GetByID retrieves a calculation by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Calculation, error)

	// ListRecent returns the latest calculations of a kind, newest first
	ListRecent(ctx context.Context, kind string, limit int) ([]*domain.Calculation, error)
}

// Cache defines the key/value operations used for cached lookups.
// Get returns pkg/errors.ErrCacheMiss when the key does not exist.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)

	// Set stores value; a zero expiration keeps the key forever
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	Del(ctx context.Context, key string) error
}
