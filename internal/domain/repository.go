package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account owned by the given user
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Account, error)

	// GetByName retrieves an account owned by the given user by its name.
	// Used to locate the investment tracking account.
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*Account, error)

	// ListByUser retrieves all accounts owned by the given user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Account, error)

	// DeleteByUser deletes all accounts owned by the given user
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// CardRepository defines the interface for card persistence operations
type CardRepository interface {
	// Create creates a new card
	Create(ctx context.Context, card *Card) error

	// GetByID retrieves a card owned by the given user
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Card, error)

	// ListByUser retrieves all cards owned by the given user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Card, error)

	// UpdateStatus sets the status of a card
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status CardStatus) error

	// DeleteByUser deletes all cards owned by the given user
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	// Post inserts the transaction and applies its balance delta to the
	// referenced account as a single atomic unit.
	Post(ctx context.Context, tx *Transaction) error

	// ListByUser retrieves the user's transactions, newest first.
	// limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Transaction, error)

	// ListSince retrieves the user's transactions dated at or after since
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*Transaction, error)

	// SumCardSpendSince sums the amounts of all postings against the
	// card dated at or after since. Used for monthly limit enforcement.
	SumCardSpendSince(ctx context.Context, cardID uuid.UUID, since time.Time) (decimal.Decimal, error)

	// DeleteByUser deletes all transactions owned by the given user
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// InvestmentRepository defines the interface for investment persistence operations
type InvestmentRepository interface {
	// Create creates a new position
	Create(ctx context.Context, inv *Investment) error

	// GetByID retrieves a position owned by the given user
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Investment, error)

	// ListByUser retrieves all positions owned by the given user, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Investment, error)

	// DeleteByUser deletes all positions owned by the given user
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// SettlementRepository applies multi-leg balance mutations as one
// durable transaction with row-level locks, re-checking balances and
// quantities under the lock so concurrent settlements cannot both pass
// their preconditions.
type SettlementRepository interface {
	// Buy applies a buy settlement: debit funding, credit tracking,
	// create position. Returns ErrInsufficientFunds if the funding
	// balance no longer covers the cost under the lock.
	Buy(ctx context.Context, s *BuySettlement) error

	// Sell applies a sell settlement: credit deposit, debit tracking,
	// delete or decrement the position. Returns ErrInvalidInput if the
	// held quantity no longer covers the sale under the lock.
	Sell(ctx context.Context, s *SellSettlement) error

	// Transfer debits the source account and records the transfer
	// transaction. Returns ErrInsufficientFunds if the balance no
	// longer covers the amount under the lock.
	Transfer(ctx context.Context, from uuid.UUID, amount decimal.Decimal, record *Transaction) error
}
