package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// settlementRepository implements domain.SettlementRepository.
//
// Each settlement runs as a single database transaction: the touched
// account (and position) rows are locked with SELECT ... FOR UPDATE in
// a deterministic order, preconditions are re-checked under the lock,
// and every leg commits or none do. A crash between legs can therefore
// never leave the books inconsistent.
type settlementRepository struct {
	db *DB
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *DB) domain.SettlementRepository {
	return &settlementRepository{db: db}
}

// lockAccounts locks the given account rows in ascending ID order and
// returns their balances keyed by ID.
func lockAccounts(ctx context.Context, dbTx *sql.Tx, userID uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	balances := make(map[uuid.UUID]decimal.Decimal, len(sorted))
	query := `SELECT balance FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`

	for _, id := range sorted {
		if _, done := balances[id]; done {
			continue
		}
		var balanceStr string
		if err := dbTx.QueryRowContext(ctx, query, id, userID).Scan(&balanceStr); err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to lock account %s: %w", id, err)
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance: %w", err)
		}
		balances[id] = balance
	}

	return balances, nil
}

func adjustBalance(ctx context.Context, dbTx *sql.Tx, id uuid.UUID, delta decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $1 WHERE id = $2`
	if _, err := dbTx.ExecContext(ctx, query, delta.String(), id); err != nil {
		return fmt.Errorf("failed to adjust balance of account %s: %w", id, err)
	}
	return nil
}

// Buy applies a buy settlement: debit funding, credit tracking, create
// the position
func (r *settlementRepository) Buy(ctx context.Context, s *domain.BuySettlement) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	balances, err := lockAccounts(ctx, dbTx, s.UserID, s.FundingAccountID, s.TrackingAccountID)
	if err != nil {
		return err
	}

	// Re-check under the lock: the balance may have moved since the
	// service validated it.
	if balances[s.FundingAccountID].LessThan(s.TotalCost) {
		return domain.ErrInsufficientFunds
	}

	if err := adjustBalance(ctx, dbTx, s.FundingAccountID, s.TotalCost.Neg()); err != nil {
		return err
	}
	if err := adjustBalance(ctx, dbTx, s.TrackingAccountID, s.TotalCost); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO investments (id, user_id, symbol, name, type, quantity, price_per_share, total_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	pos := s.Position
	_, err = dbTx.ExecContext(ctx, insertQuery,
		pos.ID,
		pos.UserID,
		pos.Symbol,
		pos.Name,
		string(pos.Type),
		pos.Quantity.String(),
		pos.PricePerShare.String(),
		pos.TotalValue.String(),
		pos.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit buy settlement: %w", err)
	}

	return nil
}

// Sell applies a sell settlement: credit deposit, debit tracking,
// delete or decrement the position
func (r *settlementRepository) Sell(ctx context.Context, s *domain.SellSettlement) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	// Lock the position first and re-check the held quantity: two
	// concurrent sells must not both pass the quantity check.
	lockPos := `SELECT quantity FROM investments WHERE id = $1 AND user_id = $2 FOR UPDATE`
	var quantityStr string
	if err := dbTx.QueryRowContext(ctx, lockPos, s.PositionID, s.UserID).Scan(&quantityStr); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("investment %s: %w", s.PositionID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to lock position: %w", err)
	}
	held, err := decimal.NewFromString(quantityStr)
	if err != nil {
		return fmt.Errorf("failed to parse quantity: %w", err)
	}
	if s.QuantitySold.GreaterThan(held) {
		return fmt.Errorf("cannot sell more than held: %w", domain.ErrInvalidInput)
	}

	if _, err := lockAccounts(ctx, dbTx, s.UserID, s.DepositAccountID, s.TrackingAccountID); err != nil {
		return err
	}

	if err := adjustBalance(ctx, dbTx, s.DepositAccountID, s.Payout); err != nil {
		return err
	}
	if err := adjustBalance(ctx, dbTx, s.TrackingAccountID, s.CostBasisReleased.Neg()); err != nil {
		return err
	}

	if s.ClosePosition || s.QuantitySold.Equal(held) {
		deleteQuery := `DELETE FROM investments WHERE id = $1`
		if _, err := dbTx.ExecContext(ctx, deleteQuery, s.PositionID); err != nil {
			return fmt.Errorf("failed to delete position: %w", err)
		}
	} else {
		reduceQuery := `UPDATE investments SET quantity = quantity - $1 WHERE id = $2`
		if _, err := dbTx.ExecContext(ctx, reduceQuery, s.QuantitySold.String(), s.PositionID); err != nil {
			return fmt.Errorf("failed to reduce position: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sell settlement: %w", err)
	}

	return nil
}

// Transfer debits the source account and records the transfer
// transaction
func (r *settlementRepository) Transfer(ctx context.Context, from uuid.UUID, amount decimal.Decimal, record *domain.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	balances, err := lockAccounts(ctx, dbTx, record.UserID, from)
	if err != nil {
		return err
	}
	if balances[from].LessThan(amount) {
		return domain.ErrInsufficientFunds
	}

	if err := adjustBalance(ctx, dbTx, from, amount.Neg()); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO transactions (id, user_id, account_id, card_id, name, amount, type, category, date, status, payment_method)
		VALUES ($1, $2, $3, NULL, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = dbTx.ExecContext(ctx, insertQuery,
		record.ID,
		record.UserID,
		record.AccountID,
		record.Name,
		record.Amount.String(),
		string(record.Type),
		record.Category,
		record.Date,
		string(record.Status),
		record.PaymentMethod,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer record: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}

	return nil
}
