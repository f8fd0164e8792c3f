package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/rates"
)

// recentLimit caps the recent-activity list on the dashboard
const recentLimit = 5

// ChartSlice is one top-spending category for the dashboard chart
type ChartSlice struct {
	Label string
	Value decimal.Decimal
}

// Summary is the dashboard projection: balances, the current month's
// flow, portfolio value and recent activity.
type Summary struct {
	Accounts        []*domain.Account
	TotalBalance    decimal.Decimal
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	PortfolioValue  decimal.Decimal
	Recent          []*domain.Transaction
	Chart           []ChartSlice
}

// DashboardService assembles the dashboard summary
type DashboardService struct {
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
	InvestmentRepo  domain.InvestmentRepository
	Quotes          domain.QuoteProvider
	Rates           rates.Converter
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	investmentRepo domain.InvestmentRepository,
	quotes domain.QuoteProvider,
	converter rates.Converter,
) *DashboardService {
	return &DashboardService{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		InvestmentRepo:  investmentRepo,
		Quotes:          quotes,
		Rates:           converter,
	}
}

// Build assembles the dashboard summary for the user
func (s *DashboardService) Build(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	accounts, err := s.AccountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalBalance := decimal.Zero
	for _, account := range accounts {
		totalBalance = totalBalance.Add(account.Balance)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthly, err := s.TransactionRepo.ListSince(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}

	monthlyIncome := decimal.Zero
	monthlyExpenses := decimal.Zero
	for _, tx := range monthly {
		if tx.Type == domain.TransactionTypeIncome {
			monthlyIncome = monthlyIncome.Add(tx.Amount)
		} else {
			monthlyExpenses = monthlyExpenses.Add(tx.Amount)
		}
	}

	portfolioValue, err := s.portfolioValue(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.TransactionRepo.ListByUser(ctx, userID, recentLimit)
	if err != nil {
		return nil, err
	}

	chart, err := s.topCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Accounts:        accounts,
		TotalBalance:    totalBalance,
		MonthlyIncome:   monthlyIncome,
		MonthlyExpenses: monthlyExpenses,
		PortfolioValue:  portfolioValue,
		Recent:          recent,
		Chart:           chart,
	}, nil
}

// portfolioValue marks the user's positions to market, falling back to
// each position's cost basis when the quote chain fails
func (s *DashboardService) portfolioValue(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	positions, err := s.InvestmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, pos := range positions {
		price := pos.PricePerShare
		if q, err := s.Quotes.Quote(ctx, pos.Symbol, pos.Type); err == nil {
			if usd, err := s.Rates.ToUSD(q.Price, q.Currency); err == nil {
				price = usd
			}
		}
		total = total.Add(price.Mul(pos.Quantity))
	}

	return total, nil
}

// topCategories returns the five largest expense categories of all time
func (s *DashboardService) topCategories(ctx context.Context, userID uuid.UUID) ([]ChartSlice, error) {
	transactions, err := s.TransactionRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx.Type != domain.TransactionTypeExpense {
			continue
		}
		category := tx.Category
		if category == "" {
			category = "Other"
		}
		byCategory[category] = byCategory[category].Add(tx.Amount)
	}

	slices := make([]ChartSlice, 0, len(byCategory))
	for label, value := range byCategory {
		slices = append(slices, ChartSlice{Label: label, Value: value})
	}
	sort.Slice(slices, func(i, j int) bool { return slices[i].Value.GreaterThan(slices[j].Value) })

	if len(slices) > 5 {
		slices = slices[:5]
	}
	return slices, nil
}
