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

// cardRepository implements domain.CardRepository
type cardRepository struct {
	db *DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *DB) domain.CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `id, user_id, account_id, kind, brand, number, expiry, monthly_limit, status, created_at`

func scanCard(row interface{ Scan(...interface{}) error }) (*domain.Card, error) {
	var card domain.Card
	var limitStr string

	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.AccountID,
		&card.Kind,
		&card.Brand,
		&card.Number,
		&card.Expiry,
		&limitStr,
		&card.Status,
		&card.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	limit, err := decimal.NewFromString(limitStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse monthly_limit: %w", err)
	}
	card.MonthlyLimit = limit

	return &card, nil
}

// Create creates a new card
func (r *cardRepository) Create(ctx context.Context, card *domain.Card) error {
	query := `
		INSERT INTO cards (id, user_id, account_id, kind, brand, number, expiry, monthly_limit, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		card.ID,
		card.UserID,
		card.AccountID,
		string(card.Kind),
		card.Brand,
		card.Number,
		card.Expiry,
		card.MonthlyLimit.String(),
		string(card.Status),
		card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByID retrieves a card owned by the given user
func (r *cardRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE id = $1 AND user_id = $2
	`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get card by ID: %w", err)
	}

	return card, nil
}

// ListByUser retrieves all cards owned by the given user
func (r *cardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// UpdateStatus sets the status of a card
func (r *cardRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.CardStatus) error {
	query := `
		UPDATE cards
		SET status = $1
		WHERE id = $2 AND user_id = $3
	`

	res, err := r.db.ExecContext(ctx, query, string(status), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update card status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByUser deletes all cards owned by the given user
func (r *cardRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM cards WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete cards: %w", err)
	}

	return nil
}
