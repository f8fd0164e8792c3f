package card

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/finbank/finbank-backend/internal/domain"
)

// MockCardRepository is a mock implementation of CardRepository for testing
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Create(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.CardStatus) error {
	args := m.Called(ctx, userID, id, status)
	return args.Error(0)
}

func (m *MockCardRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Account, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Post(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.Transaction, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumCardSpendSince(ctx context.Context, cardID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, cardID, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestIssue_DefaultsAndMasking(t *testing.T) {
	ctx := context.Background()
	cardRepo := new(MockCardRepository)
	accountRepo := new(MockAccountRepository)
	txRepo := new(MockTransactionRepository)
	service := NewCardService(cardRepo, accountRepo, txRepo)

	userID := uuid.New()
	accountID := uuid.New()

	accountRepo.On("GetByID", ctx, userID, accountID).Return(&domain.Account{
		ID:     accountID,
		UserID: userID,
		Name:   "Checking",
		Type:   "Checking",
	}, nil)
	cardRepo.On("Create", ctx, mock.AnythingOfType("*domain.Card")).Return(nil)

	card, err := service.Issue(ctx, IssueCardInput{
		UserID:       userID,
		AccountID:    accountID,
		Last4:        "4242",
		Expiry:       "12/28",
		MonthlyLimit: decimal.NewFromInt(500),
	})

	assert.NoError(t, err)
	assert.Equal(t, "VISA", card.Brand)
	assert.Equal(t, domain.CardKindVirtual, card.Kind)
	assert.Equal(t, "**** **** **** 4242", card.Number)
	assert.Equal(t, domain.CardStatusActive, card.Status)
	cardRepo.AssertExpectations(t)
}

func TestIssue_UnknownAccountRejected(t *testing.T) {
	ctx := context.Background()
	cardRepo := new(MockCardRepository)
	accountRepo := new(MockAccountRepository)
	service := NewCardService(cardRepo, accountRepo, new(MockTransactionRepository))

	userID := uuid.New()
	accountID := uuid.New()

	accountRepo.On("GetByID", ctx, userID, accountID).Return(nil, domain.ErrNotFound)

	_, err := service.Issue(ctx, IssueCardInput{
		UserID:       userID,
		AccountID:    accountID,
		Last4:        "4242",
		Expiry:       "12/28",
		MonthlyLimit: decimal.NewFromInt(500),
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	cardRepo.AssertNotCalled(t, "Create")
}

func TestList_SpentAndRemainingProjection(t *testing.T) {
	ctx := context.Background()
	cardRepo := new(MockCardRepository)
	accountRepo := new(MockAccountRepository)
	txRepo := new(MockTransactionRepository)
	service := NewCardService(cardRepo, accountRepo, txRepo)

	userID := uuid.New()
	accountID := uuid.New()
	cardID := uuid.New()

	cardRepo.On("ListByUser", ctx, userID).Return([]*domain.Card{
		{
			ID:           cardID,
			UserID:       userID,
			AccountID:    accountID,
			Brand:        "VISA",
			MonthlyLimit: decimal.NewFromInt(500),
			Status:       domain.CardStatusActive,
		},
	}, nil)
	txRepo.On("SumCardSpendSince", ctx, cardID, mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(320), nil)
	accountRepo.On("GetByID", ctx, userID, accountID).Return(&domain.Account{
		ID:     accountID,
		UserID: userID,
		Name:   "Checking",
		Type:   "Checking",
	}, nil)

	views, err := service.List(ctx, userID)

	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "Checking", views[0].AccountName)
	assert.True(t, views[0].Spent.Equal(decimal.NewFromInt(320)))
	assert.True(t, views[0].Remaining.Equal(decimal.NewFromInt(180)))
}

func TestList_RemainingClampedAtZero(t *testing.T) {
	ctx := context.Background()
	cardRepo := new(MockCardRepository)
	accountRepo := new(MockAccountRepository)
	txRepo := new(MockTransactionRepository)
	service := NewCardService(cardRepo, accountRepo, txRepo)

	userID := uuid.New()
	cardID := uuid.New()
	accountID := uuid.New()

	cardRepo.On("ListByUser", ctx, userID).Return([]*domain.Card{
		{
			ID:           cardID,
			UserID:       userID,
			AccountID:    accountID,
			Brand:        "VISA",
			MonthlyLimit: decimal.NewFromInt(500),
			Status:       domain.CardStatusActive,
		},
	}, nil)
	// over the limit, e.g. after the limit was lowered
	txRepo.On("SumCardSpendSince", ctx, cardID, mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(650), nil)
	accountRepo.On("GetByID", ctx, userID, accountID).Return(nil, domain.ErrNotFound)

	views, err := service.List(ctx, userID)

	assert.NoError(t, err)
	assert.True(t, views[0].Remaining.IsZero())
	assert.Equal(t, "Unlinked", views[0].AccountName)
}

func TestToggle_FlipsStatus(t *testing.T) {
	ctx := context.Background()
	cardRepo := new(MockCardRepository)
	service := NewCardService(cardRepo, new(MockAccountRepository), new(MockTransactionRepository))

	userID := uuid.New()
	cardID := uuid.New()

	cardRepo.On("GetByID", ctx, userID, cardID).Return(&domain.Card{
		ID:     cardID,
		UserID: userID,
		Status: domain.CardStatusActive,
	}, nil)
	cardRepo.On("UpdateStatus", ctx, userID, cardID, domain.CardStatusFrozen).Return(nil)

	status, err := service.Toggle(ctx, userID, cardID)

	assert.NoError(t, err)
	assert.Equal(t, domain.CardStatusFrozen, status)
	cardRepo.AssertExpectations(t)
}

func TestReset_DeletesOnlyCards(t *testing.T) {
	ctx := context.Background()
	cardRepo := new(MockCardRepository)
	accountRepo := new(MockAccountRepository)
	txRepo := new(MockTransactionRepository)
	service := NewCardService(cardRepo, accountRepo, txRepo)

	userID := uuid.New()
	cardRepo.On("DeleteByUser", ctx, userID).Return(nil)

	err := service.Reset(ctx, userID)

	assert.NoError(t, err)
	cardRepo.AssertExpectations(t)
	accountRepo.AssertNotCalled(t, "DeleteByUser")
	txRepo.AssertNotCalled(t, "DeleteByUser")
}
