package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// investmentRepository implements domain.InvestmentRepository
type investmentRepository struct {
	db *DB
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *DB) domain.InvestmentRepository {
	return &investmentRepository{db: db}
}

const investmentColumns = `id, user_id, symbol, name, type, quantity, price_per_share, total_value, created_at`

func scanInvestment(row interface{ Scan(...interface{}) error }) (*domain.Investment, error) {
	var inv domain.Investment
	var quantityStr, priceStr, totalStr string

	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&inv.Symbol,
		&inv.Name,
		&inv.Type,
		&quantityStr,
		&priceStr,
		&totalStr,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
		col string
	}{
		{&inv.Quantity, quantityStr, "quantity"},
		{&inv.PricePerShare, priceStr, "price_per_share"},
		{&inv.TotalValue, totalStr, "total_value"},
	} {
		d, err := decimal.NewFromString(field.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", field.col, err)
		}
		*field.dst = d
	}

	return &inv, nil
}

// Create creates a new position
func (r *investmentRepository) Create(ctx context.Context, inv *domain.Investment) error {
	query := `
		INSERT INTO investments (id, user_id, symbol, name, type, quantity, price_per_share, total_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.UserID,
		inv.Symbol,
		inv.Name,
		string(inv.Type),
		inv.Quantity.String(),
		inv.PricePerShare.String(),
		inv.TotalValue.String(),
		inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}

	return nil
}

// GetByID retrieves a position owned by the given user
func (r *investmentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE id = $1 AND user_id = $2
	`

	inv, err := scanInvestment(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("investment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment by ID: %w", err)
	}

	return inv, nil
}

// ListByUser retrieves all positions owned by the given user, newest first
func (r *investmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var invs []*domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investments: %w", err)
	}

	return invs, nil
}

// DeleteByUser deletes all positions owned by the given user
func (r *investmentRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM investments WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete investments: %w", err)
	}

	return nil
}
