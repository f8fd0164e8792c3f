package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/keymutex"
)

// CreateAccountInput represents the input for creating an account
type CreateAccountInput struct {
	UserID  uuid.UUID
	Name    string
	Type    string
	Balance decimal.Decimal
}

// AccountService handles account CRUD and the investment tracking account
type AccountService struct {
	AccountRepo     domain.AccountRepository
	CardRepo        domain.CardRepository
	TransactionRepo domain.TransactionRepository
	InvestmentRepo  domain.InvestmentRepository

	locks *keymutex.KeyMutex
}

// NewAccountService creates a new AccountService instance
func NewAccountService(
	accountRepo domain.AccountRepository,
	cardRepo domain.CardRepository,
	transactionRepo domain.TransactionRepository,
	investmentRepo domain.InvestmentRepository,
	locks *keymutex.KeyMutex,
) *AccountService {
	return &AccountService{
		AccountRepo:     accountRepo,
		CardRepo:        cardRepo,
		TransactionRepo: transactionRepo,
		InvestmentRepo:  investmentRepo,
		locks:           locks,
	}
}

// Create creates a new account for the user
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	account := &domain.Account{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Name:      input.Name,
		Type:      input.Type,
		Balance:   input.Balance,
		CreatedAt: time.Now(),
	}

	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := s.AccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// List retrieves all accounts owned by the user
func (s *AccountService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	return s.AccountRepo.ListByUser(ctx, userID)
}

// GetOrCreateTracking returns the user's "Investment Portfolio"
// tracking account, creating it with a zero balance on first use.
func (s *AccountService) GetOrCreateTracking(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	// One tracking account per user. The lock closes the window between
	// the miss and the create for concurrent first-time buys.
	key := "tracking/" + userID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.AccountRepo.GetByName(ctx, userID, domain.TrackingAccountName)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	tracking := &domain.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      domain.TrackingAccountName,
		Type:      "Investment",
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
	}
	if err := s.AccountRepo.Create(ctx, tracking); err != nil {
		return nil, err
	}

	return tracking, nil
}

// Reset deletes every account, card, transaction and position owned by
// the user. Dependents go first so the data never points at missing
// accounts, even if a later step fails.
func (s *AccountService) Reset(ctx context.Context, userID uuid.UUID) error {
	if err := s.TransactionRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.InvestmentRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.CardRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.AccountRepo.DeleteByUser(ctx, userID)
}
