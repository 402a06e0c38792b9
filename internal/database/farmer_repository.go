package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sajitha00/farm-to-keells-api/internal/models"
)

// ErrFarmerNotFound is returned when no farmer matches the identifier.
var ErrFarmerNotFound = errors.New("farmer not found")

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// FarmerRepository resolves farmer identifiers against the farmers table.
type FarmerRepository struct {
	pool DatabasePool
}

// NewFarmerRepository creates a new farmer repository.
func NewFarmerRepository(pool DatabasePool) *FarmerRepository {
	return &FarmerRepository{pool: pool}
}

// FindIDByEmail resolves a farmer email to the internal farmer id.
// Returns ErrFarmerNotFound when no row matches.
func (r *FarmerRepository) FindIDByEmail(ctx context.Context, email string) (string, error) {
	query := `SELECT id FROM farmers WHERE email = $1`

	var id string
	err := r.pool.QueryRow(ctx, query, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrFarmerNotFound
		}
		return "", fmt.Errorf("failed to look up farmer by email: %w", err)
	}

	return id, nil
}

// GetByEmail returns the full farmer row for an email.
func (r *FarmerRepository) GetByEmail(ctx context.Context, email string) (*models.Farmer, error) {
	query := `SELECT id, email, full_name, created_at FROM farmers WHERE email = $1`

	var farmer models.Farmer
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&farmer.ID, &farmer.Email, &farmer.FullName, &farmer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFarmerNotFound
		}
		return nil, fmt.Errorf("failed to fetch farmer by email: %w", err)
	}

	return &farmer, nil
}
