package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, user_id, account_id, card_id, name, amount, type, category, date, status, payment_method`

func scanTransaction(row interface{ Scan(...interface{}) error }) (*domain.Transaction, error) {
	var tx domain.Transaction
	var cardID sql.NullString
	var amountStr string

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.AccountID,
		&cardID,
		&tx.Name,
		&amountStr,
		&tx.Type,
		&tx.Category,
		&tx.Date,
		&tx.Status,
		&tx.PaymentMethod,
	)
	if err != nil {
		return nil, err
	}

	if cardID.Valid {
		parsed, err := uuid.Parse(cardID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse card_id: %w", err)
		}
		tx.CardID = &parsed
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	tx.Amount = amount

	return &tx, nil
}

// Post inserts the transaction and applies its balance delta to the
// referenced account in one database transaction. The account row is
// locked first so concurrent postings serialize on it.
func (r *transactionRepository) Post(ctx context.Context, tx *domain.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	lockQuery := `SELECT balance FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`
	var balanceStr string
	if err := dbTx.QueryRowContext(ctx, lockQuery, tx.AccountID, tx.UserID).Scan(&balanceStr); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("account %s: %w", tx.AccountID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to lock account: %w", err)
	}

	insertQuery := `
		INSERT INTO transactions (id, user_id, account_id, card_id, name, amount, type, category, date, status, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var cardID interface{}
	if tx.CardID != nil {
		cardID = *tx.CardID
	}

	_, err = dbTx.ExecContext(ctx, insertQuery,
		tx.ID,
		tx.UserID,
		tx.AccountID,
		cardID,
		tx.Name,
		tx.Amount.String(),
		string(tx.Type),
		tx.Category,
		tx.Date,
		string(tx.Status),
		tx.PaymentMethod,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	adjustQuery := `UPDATE accounts SET balance = balance + $1 WHERE id = $2`
	if _, err := dbTx.ExecContext(ctx, adjustQuery, tx.BalanceDelta().String(), tx.AccountID); err != nil {
		return fmt.Errorf("failed to adjust account balance: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByUser retrieves the user's transactions, newest first
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	return r.queryTransactions(ctx, query, args...)
}

// ListSince retrieves the user's transactions dated at or after since
func (r *transactionRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND date >= $2
		ORDER BY date DESC
	`

	return r.queryTransactions(ctx, query, userID, since)
}

// SumCardSpendSince sums the amounts of all postings against the card
// dated at or after since
func (r *transactionRepository) SumCardSpendSince(ctx context.Context, cardID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE card_id = $1 AND date >= $2
	`

	var sumStr string
	if err := r.db.QueryRowContext(ctx, query, cardID, since).Scan(&sumStr); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum card spend: %w", err)
	}

	sum, err := decimal.NewFromString(sumStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse card spend sum: %w", err)
	}

	return sum, nil
}

// DeleteByUser deletes all transactions owned by the given user
func (r *transactionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM transactions WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}

	return nil
}

func (r *transactionRepository) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}
