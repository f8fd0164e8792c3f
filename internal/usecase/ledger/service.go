package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/keymutex"
	"github.com/finbank/finbank-backend/internal/rates"
)

// PostTransactionInput represents the input for posting a transaction
type PostTransactionInput struct {
	UserID    uuid.UUID
	Name      string
	Amount    decimal.Decimal
	Type      domain.TransactionType
	Category  string
	AccountID uuid.UUID  // ignored when CardID is set
	CardID    *uuid.UUID // pay with a card: settles on the card's linked account
	Date      time.Time  // zero value means now
}

// TransferInput represents the input for a wire transfer
type TransferInput struct {
	UserID        uuid.UUID
	FromAccountID uuid.UUID
	RecipientName string
	BankName      string
	AccountNumber string
	Amount        decimal.Decimal
	Currency      string // "" defaults to USD
}

// LedgerService posts transactions and wire transfers. Card postings
// enforce the frozen state and the cumulative monthly spending limit.
type LedgerService struct {
	AccountRepo     domain.AccountRepository
	CardRepo        domain.CardRepository
	TransactionRepo domain.TransactionRepository
	SettlementRepo  domain.SettlementRepository
	Rates           rates.Converter

	locks *keymutex.KeyMutex
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(
	accountRepo domain.AccountRepository,
	cardRepo domain.CardRepository,
	transactionRepo domain.TransactionRepository,
	settlementRepo domain.SettlementRepository,
	converter rates.Converter,
	locks *keymutex.KeyMutex,
) *LedgerService {
	return &LedgerService{
		AccountRepo:     accountRepo,
		CardRepo:        cardRepo,
		TransactionRepo: transactionRepo,
		SettlementRepo:  settlementRepo,
		Rates:           converter,
		locks:           locks,
	}
}

// startOfMonth returns the first instant of t's calendar month
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Post posts a transaction and adjusts the target account balance.
// When a card is named:
//  1. Reject if the card is frozen, regardless of headroom.
//  2. For expenses, sum this month's postings against the card and
//     reject if the total would exceed the monthly limit, carrying the
//     remaining headroom.
//  3. Settle against the card's linked account (a card has no balance).
//
// Nothing is written on rejection.
func (s *LedgerService) Post(ctx context.Context, input PostTransactionInput) (*domain.Transaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}

	accountID := input.AccountID
	now := time.Now()

	var card *domain.Card
	if input.CardID != nil {
		var err error
		card, err = s.CardRepo.GetByID(ctx, input.UserID, *input.CardID)
		if err != nil {
			return nil, err
		}

		if card.Status == domain.CardStatusFrozen {
			return nil, domain.ErrCardFrozen
		}

		accountID = card.AccountID
	}

	if accountID == uuid.Nil {
		return nil, fmt.Errorf("%w: account is required", domain.ErrInvalidInput)
	}

	// Serialize postings on the settling account before reading the
	// month's spend, so two in-flight card expenses cannot both pass
	// the limit check against the same stale sum.
	key := accountID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if card != nil && input.Type == domain.TransactionTypeExpense {
		spent, err := s.TransactionRepo.SumCardSpendSince(ctx, card.ID, startOfMonth(now))
		if err != nil {
			return nil, err
		}
		if spent.Add(input.Amount).GreaterThan(card.MonthlyLimit) {
			return nil, &domain.LimitExceededError{Remaining: card.MonthlyLimit.Sub(spent)}
		}
	}

	date := input.Date
	if date.IsZero() {
		date = now
	}

	tx := &domain.Transaction{
		ID:        uuid.New(),
		UserID:    input.UserID,
		AccountID: accountID,
		CardID:    input.CardID,
		Name:      input.Name,
		Amount:    input.Amount,
		Type:      input.Type,
		Category:  input.Category,
		Date:      date,
		Status:    domain.TransactionStatusCompleted,
	}

	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := s.TransactionRepo.Post(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// List retrieves the user's transactions, newest first
func (s *LedgerService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	return s.TransactionRepo.ListByUser(ctx, userID, 0)
}

// Transfer wires money out of an account: debit the source and record
// a completed expense transaction, atomically. INR amounts are
// converted to USD for storage.
func (s *LedgerService) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if input.RecipientName == "" {
		return nil, fmt.Errorf("%w: recipient name is required", domain.ErrInvalidInput)
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}
	amountUSD, err := s.Rates.ToUSD(input.Amount, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	account, err := s.AccountRepo.GetByID(ctx, input.UserID, input.FromAccountID)
	if err != nil {
		return nil, err
	}
	if account.Balance.LessThan(amountUSD) {
		return nil, domain.ErrInsufficientFunds
	}

	bankName := input.BankName
	if bankName == "" {
		bankName = "Bank Transfer"
	}
	last4 := "XXXX"
	if n := len(input.AccountNumber); n >= 4 {
		last4 = input.AccountNumber[n-4:]
	}

	record := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        input.UserID,
		AccountID:     input.FromAccountID,
		Name:          fmt.Sprintf("Transfer to %s", input.RecipientName),
		Amount:        amountUSD,
		Type:          domain.TransactionTypeExpense,
		Category:      "Transfer",
		Date:          time.Now(),
		Status:        domain.TransactionStatusCompleted,
		PaymentMethod: fmt.Sprintf("Wire to %s (%s)", bankName, last4),
	}

	key := input.FromAccountID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.SettlementRepo.Transfer(ctx, input.FromAccountID, amountUSD, record); err != nil {
		return nil, err
	}

	return record, nil
}
