package investment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/keymutex"
	"github.com/finbank/finbank-backend/internal/rates"
)

// TrackingAccounts locates the user's investment tracking account,
// creating it on first use. Implemented by account.AccountService.
type TrackingAccounts interface {
	GetOrCreateTracking(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
}

// BuyInput represents the input for buying a position
type BuyInput struct {
	UserID           uuid.UUID
	FundingAccountID uuid.UUID
	Symbol           string
	Name             string
	Type             domain.AssetType
	Quantity         decimal.Decimal
	PricePerShare    decimal.Decimal // USD
}

// SellInput represents the input for selling from a position
type SellInput struct {
	UserID           uuid.UUID
	PositionID       uuid.UUID
	DepositAccountID uuid.UUID
	Quantity         decimal.Decimal
}

// SellReceipt summarizes an executed sale
type SellReceipt struct {
	Symbol        string
	QuantitySold  decimal.Decimal
	PricePerShare decimal.Decimal // USD, live or stored
	Payout        decimal.Decimal
	PriceLive     bool // false when the stored cost basis was used
}

// PositionView is a position enriched with live market data
type PositionView struct {
	*domain.Investment
	CurrentPrice            decimal.Decimal // USD
	CurrentValue            decimal.Decimal
	PositionGainLoss        decimal.Decimal
	PositionGainLossPercent decimal.Decimal
	DailyChangePercent      decimal.Decimal
	UsingLiveData           bool
}

// InvestmentService handles portfolio reads and buy/sell settlement
type InvestmentService struct {
	InvestmentRepo domain.InvestmentRepository
	AccountRepo    domain.AccountRepository
	SettlementRepo domain.SettlementRepository
	Tracking       TrackingAccounts
	Quotes         domain.QuoteProvider
	DailyChanges   domain.DailyChangeProvider
	Rates          rates.Converter

	locks  *keymutex.KeyMutex
	logger zerolog.Logger
}

// NewInvestmentService creates a new InvestmentService instance
func NewInvestmentService(
	investmentRepo domain.InvestmentRepository,
	accountRepo domain.AccountRepository,
	settlementRepo domain.SettlementRepository,
	tracking TrackingAccounts,
	quotes domain.QuoteProvider,
	dailyChanges domain.DailyChangeProvider,
	converter rates.Converter,
	locks *keymutex.KeyMutex,
	logger zerolog.Logger,
) *InvestmentService {
	return &InvestmentService{
		InvestmentRepo: investmentRepo,
		AccountRepo:    accountRepo,
		SettlementRepo: settlementRepo,
		Tracking:       tracking,
		Quotes:         quotes,
		DailyChanges:   dailyChanges,
		Rates:          converter,
		locks:          locks,
		logger:         logger.With().Str("component", "investment-service").Logger(),
	}
}

// priceUSD resolves the current USD price for a position: live quote
// converted from the provider's currency, or the stored cost basis
// with Live=false when every provider fails.
func (s *InvestmentService) priceUSD(ctx context.Context, symbol string, assetType domain.AssetType, storedPrice decimal.Decimal) (decimal.Decimal, bool) {
	q, err := s.Quotes.Quote(ctx, symbol, assetType)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("live quote unavailable, using stored price")
		return storedPrice, false
	}

	usd, err := s.Rates.ToUSD(q.Price, q.Currency)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Str("currency", q.Currency).Msg("conversion failed, using stored price")
		return storedPrice, false
	}

	return usd, true
}

// List retrieves the user's positions enriched with live prices,
// position P&L and daily change. Stale prices are flagged so the
// client can show that the data is cached.
func (s *InvestmentService) List(ctx context.Context, userID uuid.UUID) ([]*PositionView, error) {
	positions, err := s.InvestmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*PositionView, 0, len(positions))
	for _, pos := range positions {
		price, live := s.priceUSD(ctx, pos.Symbol, pos.Type, pos.PricePerShare)

		currentValue := price.Mul(pos.Quantity)
		costBasis := pos.PricePerShare.Mul(pos.Quantity)
		gainLoss := currentValue.Sub(costBasis)

		gainLossPercent := decimal.Zero
		if costBasis.IsPositive() {
			gainLossPercent = gainLoss.Div(costBasis).Mul(decimal.NewFromInt(100))
		}

		dailyChange := decimal.Zero
		if s.DailyChanges != nil {
			if change, err := s.DailyChanges.DailyChangePercent(ctx, pos.Symbol); err == nil {
				dailyChange = change
			}
		}

		views = append(views, &PositionView{
			Investment:              pos,
			CurrentPrice:            price,
			CurrentValue:            currentValue,
			PositionGainLoss:        gainLoss,
			PositionGainLossPercent: gainLossPercent,
			DailyChangePercent:      dailyChange,
			UsingLiveData:           live,
		})
	}

	return views, nil
}

// Buy purchases a position: debit the funding account by
// quantity x price, credit the tracking account by the same amount and
// create the position record, as one settlement. Rejected with
// ErrInsufficientFunds (and no writes) when the funding balance does
// not cover the total cost.
func (s *InvestmentService) Buy(ctx context.Context, input BuyInput) (*domain.Investment, error) {
	if input.Quantity.LessThanOrEqual(decimal.Zero) || input.PricePerShare.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity and price must be positive", domain.ErrInvalidInput)
	}
	if input.FundingAccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: funding account is required", domain.ErrInvalidInput)
	}

	totalCost := input.Quantity.Mul(input.PricePerShare)

	funding, err := s.AccountRepo.GetByID(ctx, input.UserID, input.FundingAccountID)
	if err != nil {
		return nil, err
	}
	if funding.Balance.LessThan(totalCost) {
		return nil, domain.ErrInsufficientFunds
	}

	tracking, err := s.Tracking.GetOrCreateTracking(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	position := &domain.Investment{
		ID:            uuid.New(),
		UserID:        input.UserID,
		Symbol:        strings.ToUpper(input.Symbol),
		Name:          input.Name,
		Type:          input.Type,
		Quantity:      input.Quantity,
		PricePerShare: input.PricePerShare,
		TotalValue:    totalCost,
		CreatedAt:     time.Now(),
	}
	if err := position.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	keys := []string{funding.ID.String(), tracking.ID.String()}
	s.locks.LockAll(keys)
	defer s.locks.UnlockAll(keys)

	err = s.SettlementRepo.Buy(ctx, &domain.BuySettlement{
		UserID:            input.UserID,
		FundingAccountID:  funding.ID,
		TrackingAccountID: tracking.ID,
		TotalCost:         totalCost,
		Position:          position,
	})
	if err != nil {
		return nil, err
	}

	return position, nil
}

// Sell sells part or all of a position. The payout uses the live price
// (stored cost basis on provider failure, flagged on the receipt); the
// tracking account is reduced by the ORIGINAL cost basis of the shares
// sold so it keeps reflecting capital still deployed rather than
// realized gains. Selling the full quantity closes the position;
// a partial sale decrements it.
func (s *InvestmentService) Sell(ctx context.Context, input SellInput) (*SellReceipt, error) {
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	position, err := s.InvestmentRepo.GetByID(ctx, input.UserID, input.PositionID)
	if err != nil {
		return nil, err
	}
	if input.Quantity.GreaterThan(position.Quantity) {
		return nil, fmt.Errorf("%w: cannot sell more than you own", domain.ErrInvalidInput)
	}

	deposit, err := s.AccountRepo.GetByID(ctx, input.UserID, input.DepositAccountID)
	if err != nil {
		return nil, err
	}

	tracking, err := s.Tracking.GetOrCreateTracking(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	price, live := s.priceUSD(ctx, position.Symbol, position.Type, position.PricePerShare)
	payout := price.Mul(input.Quantity)
	costBasisReleased := position.CostBasis(input.Quantity)
	closing := input.Quantity.Equal(position.Quantity)

	keys := []string{deposit.ID.String(), tracking.ID.String(), position.ID.String()}
	s.locks.LockAll(keys)
	defer s.locks.UnlockAll(keys)

	err = s.SettlementRepo.Sell(ctx, &domain.SellSettlement{
		UserID:            input.UserID,
		PositionID:        position.ID,
		DepositAccountID:  deposit.ID,
		TrackingAccountID: tracking.ID,
		QuantitySold:      input.Quantity,
		Payout:            payout,
		CostBasisReleased: costBasisReleased,
		ClosePosition:     closing,
	})
	if err != nil {
		return nil, err
	}

	return &SellReceipt{
		Symbol:        position.Symbol,
		QuantitySold:  input.Quantity,
		PricePerShare: price,
		Payout:        payout,
		PriceLive:     live,
	}, nil
}

// Quote looks up the current price for a symbol without touching any
// position. Used by the quote endpoint.
func (s *InvestmentService) Quote(ctx context.Context, symbol string, assetType domain.AssetType) (*domain.Quote, error) {
	return s.Quotes.Quote(ctx, strings.ToUpper(symbol), assetType)
}
