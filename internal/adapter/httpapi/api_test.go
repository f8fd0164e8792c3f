package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/keymutex"
	"github.com/finbank/finbank-backend/internal/usecase/account"
	"github.com/finbank/finbank-backend/internal/usecase/card"
)

// MockAccountRepository is a mock implementation of AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *domain.Account) error {
	args := m.Called(ctx, acc)
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

func (m *MockCardRepository) Create(ctx context.Context, c *domain.Card) error {
	args := m.Called(ctx, c)
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

func testRouter(accountRepo domain.AccountRepository, userID uuid.UUID) chi.Router {
	accountService := account.NewAccountService(accountRepo, nil, nil, nil, keymutex.New())
	api := NewAPI(accountService, nil, nil, nil, nil, nil, nil, nil)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(StaticVerifier{"test-token": userID}))
		api.AppendRoutes(r)
	})
	return router
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	router := testRouter(new(MockAccountRepository), uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	router := testRouter(new(MockAccountRepository), uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid Token", body.Message)
}

func TestListAccounts_ScopedToTokenUser(t *testing.T) {
	userID := uuid.New()
	accountRepo := new(MockAccountRepository)
	accountRepo.On("ListByUser", mock.Anything, userID).Return([]*domain.Account{
		{ID: uuid.New(), UserID: userID, Name: "Checking", Type: "Checking", Balance: decimal.NewFromInt(1000)},
	}, nil)

	router := testRouter(accountRepo, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var accounts []accountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "Checking", accounts[0].Name)
	accountRepo.AssertExpectations(t)
}

func TestCreateAccount_InvalidBody(t *testing.T) {
	router := testRouter(new(MockAccountRepository), uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer test-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccount_ValidationErrorMapsTo400(t *testing.T) {
	router := testRouter(new(MockAccountRepository), uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString(`{"name":"","type":"Checking"}`))
	req.Header.Set("Authorization", "Bearer test-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetCards_DeletesCardsForTokenUser(t *testing.T) {
	userID := uuid.New()
	cardRepo := new(MockCardRepository)
	cardRepo.On("DeleteByUser", mock.Anything, userID).Return(nil)

	cardService := card.NewCardService(cardRepo, nil, nil)
	api := NewAPI(nil, cardService, nil, nil, nil, nil, nil, nil)
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(StaticVerifier{"test-token": userID}))
		api.AppendRoutes(r)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cards/reset", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Cards reset", body["message"])
	cardRepo.AssertExpectations(t)
}

func TestRespondError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, ""},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, ""},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusBadRequest, "Insufficient funds"},
		{"frozen card", domain.ErrCardFrozen, http.StatusForbidden, "Declined: Card is Frozen"},
		{"quote unavailable", domain.ErrQuoteUnavailable, http.StatusServiceUnavailable, "Price unavailable"},
		{"internal error hidden", errors.New("pq: connection refused"), http.StatusInternalServerError, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, body.Message)
			}
			// raw error text never leaks on internal failures
			assert.NotContains(t, body.Message, "pq:")
		})
	}
}

func TestRespondError_LimitExceededCarriesRemaining(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, &domain.LimitExceededError{Remaining: decimal.NewFromInt(20)})

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "20.00", body.Remaining)
	assert.Contains(t, body.Message, "Declined")
}
