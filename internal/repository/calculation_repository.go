package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/claim-calculator/internal/domain"
	customError "github.com/segyhp/claim-calculator/pkg/errors"
)

// calculationRow scans jsonb columns as text so the values do not alias
// the driver's read buffer.
type calculationRow struct {
	ID        uuid.UUID `db:"id"`
	Kind      string    `db:"kind"`
	Input     string    `db:"input"`
	Result    string    `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

func (row calculationRow) toDomain() *domain.Calculation {
	return &domain.Calculation{
		ID:        row.ID,
		Kind:      row.Kind,
		Input:     json.RawMessage(row.Input),
		Result:    json.RawMessage(row.Result),
		CreatedAt: row.CreatedAt,
	}
}

type calculationRepository struct {
	db *sqlx.DB
}

func NewCalculationRepository(db *sqlx.DB) CalculationRepository {
	return &calculationRepository{db: db}
}

func (r *calculationRepository) Create(ctx context.Context, calc *domain.Calculation) error {
	query := `
		INSERT INTO calculations (id, kind, input, result, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	// jsonb columns need text parameters, lib/pq sends []byte as bytea
	_, err := r.db.ExecContext(ctx, query,
		calc.ID,
		calc.Kind,
		string(calc.Input),
		string(calc.Result),
		calc.CreatedAt,
	)

	return err
}

func (r *calculationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Calculation, error) {
	query := `
		SELECT id, kind, input::text AS input, result::text AS result, created_at
		FROM calculations
		WHERE id = $1
	`

	var row calculationRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.ErrCalculationNotFound
	}
	if err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

// ListRecent returns the newest calculations first. An empty kind matches all kinds.
func (r *calculationRepository) ListRecent(ctx context.Context, kind string, limit int) ([]*domain.Calculation, error) {
	query := `
		SELECT id, kind, input::text AS input, result::text AS result, created_at
		FROM calculations
		WHERE ($1::text = '' OR kind = $1::text)
		ORDER BY created_at DESC
		LIMIT $2
	`

	var rows []calculationRow
	err := r.db.SelectContext(ctx, &rows, query, kind, limit)
	if err != nil {
		return nil, err
	}

	calcs := make([]*domain.Calculation, 0, len(rows))
	for _, row := range rows {
		calcs = append(calcs, row.toDomain())
	}
	return calcs, nil
}
