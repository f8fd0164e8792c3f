package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/keymutex"
)

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

// MockInvestmentRepository is a mock implementation of InvestmentRepository for testing
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, inv *domain.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Investment, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Investment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestService(accountRepo *MockAccountRepository, cardRepo *MockCardRepository, txRepo *MockTransactionRepository, invRepo *MockInvestmentRepository) *AccountService {
	return NewAccountService(accountRepo, cardRepo, txRepo, invRepo, keymutex.New())
}

func TestCreate_ValidAccount(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	service := newTestService(accountRepo, new(MockCardRepository), new(MockTransactionRepository), new(MockInvestmentRepository))

	userID := uuid.New()
	accountRepo.On("Create", ctx, mock.AnythingOfType("*domain.Account")).Return(nil)

	account, err := service.Create(ctx, CreateAccountInput{
		UserID:  userID,
		Name:    "Checking",
		Type:    "Checking",
		Balance: decimal.NewFromInt(1000),
	})

	assert.NoError(t, err)
	assert.Equal(t, userID, account.UserID)
	assert.NotEqual(t, uuid.Nil, account.ID)
	accountRepo.AssertExpectations(t)
}

func TestCreate_EmptyNameRejected(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	service := newTestService(accountRepo, new(MockCardRepository), new(MockTransactionRepository), new(MockInvestmentRepository))

	_, err := service.Create(ctx, CreateAccountInput{
		UserID: uuid.New(),
		Type:   "Checking",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	accountRepo.AssertNotCalled(t, "Create")
}

func TestGetOrCreateTracking_ReturnsExisting(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	service := newTestService(accountRepo, new(MockCardRepository), new(MockTransactionRepository), new(MockInvestmentRepository))

	userID := uuid.New()
	existing := &domain.Account{
		ID:     uuid.New(),
		UserID: userID,
		Name:   domain.TrackingAccountName,
		Type:   "Investment",
	}
	accountRepo.On("GetByName", ctx, userID, domain.TrackingAccountName).Return(existing, nil)

	tracking, err := service.GetOrCreateTracking(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, tracking.ID)
	accountRepo.AssertNotCalled(t, "Create")
}

func TestGetOrCreateTracking_CreatesOnFirstUse(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	service := newTestService(accountRepo, new(MockCardRepository), new(MockTransactionRepository), new(MockInvestmentRepository))

	userID := uuid.New()
	accountRepo.On("GetByName", ctx, userID, domain.TrackingAccountName).Return(nil, domain.ErrNotFound)
	accountRepo.On("Create", ctx, mock.AnythingOfType("*domain.Account")).Return(nil)

	tracking, err := service.GetOrCreateTracking(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, domain.TrackingAccountName, tracking.Name)
	assert.True(t, tracking.Balance.IsZero())
	accountRepo.AssertExpectations(t)
}

func TestGetOrCreateTracking_TransientLookupErrorPropagates(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	service := newTestService(accountRepo, new(MockCardRepository), new(MockTransactionRepository), new(MockInvestmentRepository))

	userID := uuid.New()
	accountRepo.On("GetByName", ctx, userID, domain.TrackingAccountName).
		Return(nil, errors.New("connection refused"))

	_, err := service.GetOrCreateTracking(ctx, userID)

	// Only a missing account triggers creation. Anything else must not.
	assert.EqualError(t, err, "connection refused")
	accountRepo.AssertNotCalled(t, "Create")
}

// trackingStore is an in-memory AccountRepository that remembers created
// accounts, so concurrent lookups see earlier creates.
type trackingStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	creates  int
}

func (s *trackingStore) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accounts == nil {
		s.accounts = make(map[string]*domain.Account)
	}
	s.accounts[account.Name] = account
	s.creates++
	return nil
}

func (s *trackingStore) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.accounts[name]; ok {
		return account, nil
	}
	return nil, domain.ErrNotFound
}

func (s *trackingStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	return nil, domain.ErrNotFound
}

func (s *trackingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	return nil, nil
}

func (s *trackingStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func TestGetOrCreateTracking_ConcurrentFirstUseCreatesOnce(t *testing.T) {
	ctx := context.Background()
	store := &trackingStore{}
	service := NewAccountService(store, new(MockCardRepository), new(MockTransactionRepository), new(MockInvestmentRepository), keymutex.New())

	userID := uuid.New()

	ids := make(chan uuid.UUID, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracking, err := service.GetOrCreateTracking(ctx, userID)
			assert.NoError(t, err)
			ids <- tracking.ID
		}()
	}
	wg.Wait()
	close(ids)

	first := <-ids
	second := <-ids
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.creates)
}

func TestReset_DeletesDependentsFirst(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	cardRepo := new(MockCardRepository)
	txRepo := new(MockTransactionRepository)
	invRepo := new(MockInvestmentRepository)
	service := newTestService(accountRepo, cardRepo, txRepo, invRepo)

	userID := uuid.New()
	txRepo.On("DeleteByUser", ctx, userID).Return(nil)
	invRepo.On("DeleteByUser", ctx, userID).Return(nil)
	cardRepo.On("DeleteByUser", ctx, userID).Return(nil)
	accountRepo.On("DeleteByUser", ctx, userID).Return(nil)

	err := service.Reset(ctx, userID)

	assert.NoError(t, err)
	txRepo.AssertExpectations(t)
	invRepo.AssertExpectations(t)
	cardRepo.AssertExpectations(t)
	accountRepo.AssertExpectations(t)
}

func TestReset_StopsOnFirstFailure(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	cardRepo := new(MockCardRepository)
	txRepo := new(MockTransactionRepository)
	invRepo := new(MockInvestmentRepository)
	service := newTestService(accountRepo, cardRepo, txRepo, invRepo)

	userID := uuid.New()
	txRepo.On("DeleteByUser", ctx, userID).Return(domain.ErrNotFound)

	err := service.Reset(ctx, userID)

	assert.Error(t, err)
	accountRepo.AssertNotCalled(t, "DeleteByUser")
}
