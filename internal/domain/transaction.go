package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionStatus represents the settlement state of a transaction
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
)

// Transaction represents a posted money movement. Amount is always
// positive; Type carries the direction. Transactions are append-only.
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountID     uuid.UUID
	CardID        *uuid.UUID // set when the posting was made with a card
	Name          string
	Amount        decimal.Decimal // ABSOLUTE VALUE (always positive)
	Type          TransactionType
	Category      string
	Date          time.Time
	Status        TransactionStatus
	PaymentMethod string
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if t.Name == "" {
		return errors.New("transaction name cannot be empty")
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive (absolute value)")
	}
	if t.Type != TransactionTypeIncome && t.Type != TransactionTypeExpense {
		return errors.New("transaction type must be income or expense")
	}
	if t.AccountID == uuid.Nil {
		return errors.New("transaction must reference an account")
	}
	if t.UserID == uuid.Nil {
		return errors.New("transaction must belong to a user")
	}
	return nil
}

// BalanceDelta returns the signed effect of this transaction on the
// account balance: +Amount for income, -Amount for expense.
func (t *Transaction) BalanceDelta() decimal.Decimal {
	if t.Type == TransactionTypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}
