package card

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// IssueCardInput represents the input for issuing a card
type IssueCardInput struct {
	UserID       uuid.UUID
	AccountID    uuid.UUID
	Brand        string
	Kind         domain.CardKind
	Last4        string
	Expiry       string
	MonthlyLimit decimal.Decimal
}

// CardView is a card enriched with the read-time spending projection
// for the current calendar month.
type CardView struct {
	*domain.Card
	AccountName string
	Spent       decimal.Decimal
	Remaining   decimal.Decimal
}

// CardService handles card issuing, listing and freeze toggling
type CardService struct {
	CardRepo        domain.CardRepository
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
}

// NewCardService creates a new CardService instance
func NewCardService(
	cardRepo domain.CardRepository,
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
) *CardService {
	return &CardService{
		CardRepo:        cardRepo,
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
	}
}

// Issue creates a new card linked to one of the user's accounts
func (s *CardService) Issue(ctx context.Context, input IssueCardInput) (*domain.Card, error) {
	if input.AccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: account is required", domain.ErrInvalidInput)
	}

	// The linked account must exist and belong to the user
	if _, err := s.AccountRepo.GetByID(ctx, input.UserID, input.AccountID); err != nil {
		return nil, err
	}

	brand := input.Brand
	if brand == "" {
		brand = "VISA"
	}
	kind := input.Kind
	if kind == "" {
		kind = domain.CardKindVirtual
	}

	card := &domain.Card{
		ID:           uuid.New(),
		UserID:       input.UserID,
		AccountID:    input.AccountID,
		Kind:         kind,
		Brand:        brand,
		Number:       fmt.Sprintf("**** **** **** %s", input.Last4),
		Expiry:       input.Expiry,
		MonthlyLimit: input.MonthlyLimit,
		Status:       domain.CardStatusActive,
		CreatedAt:    time.Now(),
	}

	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := s.CardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// List retrieves the user's cards with spent/remaining computed from
// this month's postings. Spending is re-aggregated on every read, not
// tracked incrementally.
func (s *CardService) List(ctx context.Context, userID uuid.UUID) ([]*CardView, error) {
	cards, err := s.CardRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	views := make([]*CardView, 0, len(cards))
	for _, c := range cards {
		spent, err := s.TransactionRepo.SumCardSpendSince(ctx, c.ID, monthStart)
		if err != nil {
			return nil, err
		}

		remaining := c.MonthlyLimit.Sub(spent)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		accountName := "Unlinked"
		if account, err := s.AccountRepo.GetByID(ctx, userID, c.AccountID); err == nil {
			accountName = account.Name
		}

		views = append(views, &CardView{
			Card:        c,
			AccountName: accountName,
			Spent:       spent,
			Remaining:   remaining,
		})
	}

	return views, nil
}

// Toggle flips the card between Active and Frozen and returns the new status
func (s *CardService) Toggle(ctx context.Context, userID, cardID uuid.UUID) (domain.CardStatus, error) {
	card, err := s.CardRepo.GetByID(ctx, userID, cardID)
	if err != nil {
		return "", err
	}

	next := card.Status.Toggled()
	if err := s.CardRepo.UpdateStatus(ctx, userID, cardID, next); err != nil {
		return "", err
	}

	return next, nil
}

// Reset deletes every card the user owns. Accounts and their postings
// are untouched; past card transactions keep their history.
func (s *CardService) Reset(ctx context.Context, userID uuid.UUID) error {
	return s.CardRepo.DeleteByUser(ctx, userID)
}
