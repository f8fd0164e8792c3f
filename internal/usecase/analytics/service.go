package analytics

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// CategorySpend is one slice of the spending breakdown
type CategorySpend struct {
	Name    string
	Value   decimal.Decimal
	Percent decimal.Decimal
}

// MonthlyTrend is one month of income vs expense, keyed "YYYY-MM"
type MonthlyTrend struct {
	Month   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Report aggregates the user's full transaction history
type Report struct {
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	NetSavings         decimal.Decimal
	SavingsRate        decimal.Decimal // percent
	SpendingByCategory []CategorySpend
	MonthlyTrends      []MonthlyTrend
}

// AnalyticsService computes read-time aggregations over transactions
type AnalyticsService struct {
	TransactionRepo domain.TransactionRepository
}

// NewAnalyticsService creates a new AnalyticsService instance
func NewAnalyticsService(transactionRepo domain.TransactionRepository) *AnalyticsService {
	return &AnalyticsService{TransactionRepo: transactionRepo}
}

var hundred = decimal.NewFromInt(100)

// Build computes the analytics report from the user's transactions
func (s *AnalyticsService) Build(ctx context.Context, userID uuid.UUID) (*Report, error) {
	transactions, err := s.TransactionRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	totalIncome := decimal.Zero
	totalExpenses := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[string]*MonthlyTrend)

	for _, tx := range transactions {
		monthKey := tx.Date.Format("2006-01")
		trend, ok := byMonth[monthKey]
		if !ok {
			trend = &MonthlyTrend{Month: monthKey, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[monthKey] = trend
		}

		switch tx.Type {
		case domain.TransactionTypeIncome:
			totalIncome = totalIncome.Add(tx.Amount)
			trend.Income = trend.Income.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			totalExpenses = totalExpenses.Add(tx.Amount)
			trend.Expense = trend.Expense.Add(tx.Amount)

			category := tx.Category
			if category == "" {
				category = "Other"
			}
			byCategory[category] = byCategory[category].Add(tx.Amount)
		}
	}

	netSavings := totalIncome.Sub(totalExpenses)
	savingsRate := decimal.Zero
	if totalIncome.IsPositive() {
		savingsRate = netSavings.Div(totalIncome).Mul(hundred)
	}

	spending := make([]CategorySpend, 0, len(byCategory))
	for name, value := range byCategory {
		percent := decimal.Zero
		if totalExpenses.IsPositive() {
			percent = value.Div(totalExpenses).Mul(hundred)
		}
		spending = append(spending, CategorySpend{Name: name, Value: value, Percent: percent})
	}
	// highest spend first
	sort.Slice(spending, func(i, j int) bool { return spending[i].Value.GreaterThan(spending[j].Value) })

	trends := make([]MonthlyTrend, 0, len(byMonth))
	for _, trend := range byMonth {
		trends = append(trends, *trend)
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Month < trends[j].Month })

	return &Report{
		TotalIncome:        totalIncome,
		TotalExpenses:      totalExpenses,
		NetSavings:         netSavings,
		SavingsRate:        savingsRate,
		SpendingByCategory: spending,
		MonthlyTrends:      trends,
	}, nil
}
