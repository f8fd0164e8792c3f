package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/rates"
)

// Report is the financial health assessment: a 0-100 score plus
// narrative guidance derived from fixed heuristics.
type Report struct {
	Score              int
	SavingsRate        decimal.Decimal // percent
	Summary            string
	SpendingAnalysis   string
	InvestmentStrategy string
	ActionItems        []string
	RecommendedBudget  map[string]decimal.Decimal
}

// HealthService derives the financial health report from the last 30
// days of activity plus the current portfolio.
type HealthService struct {
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
	InvestmentRepo  domain.InvestmentRepository
	Quotes          domain.QuoteProvider
	Rates           rates.Converter
}

// NewHealthService creates a new HealthService instance
func NewHealthService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	investmentRepo domain.InvestmentRepository,
	quotes domain.QuoteProvider,
	converter rates.Converter,
) *HealthService {
	return &HealthService{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		InvestmentRepo:  investmentRepo,
		Quotes:          quotes,
		Rates:           converter,
	}
}

type metrics struct {
	monthlyIncome   decimal.Decimal
	monthlyExpense  decimal.Decimal
	totalBalance    decimal.Decimal
	portfolioValue  decimal.Decimal
	portfolioReturn decimal.Decimal // percent
	topCategory     string
	topCategoryAmt  decimal.Decimal
}

// Build assembles the health report for the user
func (s *HealthService) Build(ctx context.Context, userID uuid.UUID) (*Report, error) {
	m, err := s.gather(ctx, userID)
	if err != nil {
		return nil, err
	}

	savings := m.monthlyIncome.Sub(m.monthlyExpense)
	savingsRate := decimal.Zero
	if m.monthlyIncome.IsPositive() {
		savingsRate = savings.Div(m.monthlyIncome).Mul(decimal.NewFromInt(100))
	}

	return &Report{
		Score:              score(m, savingsRate),
		SavingsRate:        savingsRate,
		Summary:            summary(score(m, savingsRate), savingsRate),
		SpendingAnalysis:   spendingAnalysis(m, savingsRate),
		InvestmentStrategy: investmentStrategy(m),
		ActionItems:        actionItems(m),
		RecommendedBudget:  recommendedBudget(m.monthlyIncome, savings),
	}, nil
}

func (s *HealthService) gather(ctx context.Context, userID uuid.UUID) (*metrics, error) {
	accounts, err := s.AccountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalBalance := decimal.Zero
	for _, account := range accounts {
		totalBalance = totalBalance.Add(account.Balance)
	}

	since := time.Now().AddDate(0, 0, -30)
	recent, err := s.TransactionRepo.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	m := &metrics{
		monthlyIncome:  decimal.Zero,
		monthlyExpense: decimal.Zero,
		totalBalance:   totalBalance,
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, tx := range recent {
		if tx.Type == domain.TransactionTypeIncome {
			m.monthlyIncome = m.monthlyIncome.Add(tx.Amount)
			continue
		}
		m.monthlyExpense = m.monthlyExpense.Add(tx.Amount)
		category := tx.Category
		if category == "" {
			category = "General"
		}
		byCategory[category] = byCategory[category].Add(tx.Amount)
	}

	type catAmt struct {
		name string
		amt  decimal.Decimal
	}
	cats := make([]catAmt, 0, len(byCategory))
	for name, amt := range byCategory {
		cats = append(cats, catAmt{name, amt})
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].amt.GreaterThan(cats[j].amt) })
	m.topCategory = "General"
	if len(cats) > 0 {
		m.topCategory = cats[0].name
		m.topCategoryAmt = cats[0].amt
	}

	positions, err := s.InvestmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	costBasis := decimal.Zero
	for _, pos := range positions {
		price := pos.PricePerShare
		if q, err := s.Quotes.Quote(ctx, pos.Symbol, pos.Type); err == nil {
			if usd, err := s.Rates.ToUSD(q.Price, q.Currency); err == nil {
				price = usd
			}
		}
		m.portfolioValue = m.portfolioValue.Add(price.Mul(pos.Quantity))
		costBasis = costBasis.Add(pos.PricePerShare.Mul(pos.Quantity))
	}
	if costBasis.IsPositive() {
		m.portfolioReturn = m.portfolioValue.Sub(costBasis).Div(costBasis).Mul(decimal.NewFromInt(100))
	}

	return m, nil
}

func score(m *metrics, savingsRate decimal.Decimal) int {
	score := 100
	if savingsRate.LessThan(decimal.NewFromInt(20)) {
		score -= 15
	}
	if savingsRate.IsNegative() {
		score -= 25
	}
	if m.portfolioValue.IsZero() {
		score -= 10
	}
	if m.portfolioReturn.LessThan(decimal.NewFromInt(-5)) {
		score -= 5
	}
	if m.totalBalance.LessThan(m.monthlyExpense.Mul(decimal.NewFromInt(3))) {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func summary(score int, savingsRate decimal.Decimal) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("Your financial health is highly resilient. You're maintaining a strong savings rate of %s%% and have a solid cash buffer. Focus on optimizing your asset allocation.", savingsRate.StringFixed(1))
	case score >= 60:
		return fmt.Sprintf("You are financially stable, but there is room for growth. Your savings rate is %s%%. Focus on managing top expenses and monitoring portfolio volatility.", savingsRate.StringFixed(1))
	default:
		return "Immediate attention needed. Your outflows are high relative to your income. Focus on stabilizing your cash flow before making aggressive investments."
	}
}

func spendingAnalysis(m *metrics, savingsRate decimal.Decimal) string {
	if m.monthlyExpense.IsZero() {
		return "We haven't detected significant expenses in the last 30 days. This might mean you rely on cash or a different account. Ensure all your accounts are synced for an accurate picture."
	}

	percent := m.topCategoryAmt.Div(m.monthlyExpense).Mul(decimal.NewFromInt(100))
	analysis := fmt.Sprintf("Your spending is primarily concentrated in %s, making up %s%% of your total outflow. ", m.topCategory, percent.StringFixed(1))

	lower := strings.ToLower(m.topCategory)
	switch {
	case strings.Contains(lower, "food") || strings.Contains(lower, "dining"):
		analysis += "Dining out frequently is a silent wealth killer. Planning meals just two extra days a week could save you significant capital over a year."
	case strings.Contains(lower, "shopping"):
		analysis += "Discretionary shopping seems high this month. Consider implementing a '48-hour rule' before making non-essential purchases."
	case strings.Contains(lower, "transfer") || strings.Contains(lower, "investment"):
		analysis += "This is excellent! High transfer volumes usually indicate you are moving money to savings or investments."
	case savingsRate.GreaterThan(decimal.NewFromInt(20)):
		analysis += "However, since your overall savings rate is healthy, this spending level is perfectly sustainable for your lifestyle."
	default:
		analysis += "Reducing costs in this single category by just 10-15% would immediately turn your cash flow positive and boost your financial resilience."
	}

	return analysis
}

func investmentStrategy(m *metrics) string {
	switch {
	case m.portfolioValue.IsZero():
		return "You currently have no active investments. Inflation is effectively eroding your cash holdings. Start small: Open a brokerage account and consider a low-cost, broad-market Index Fund."
	case m.portfolioReturn.IsNegative():
		return fmt.Sprintf("Your portfolio is currently experiencing a drawdown of %s%%. Do not panic sell. Market corrections are normal. Since you have cash reserves, this is technically a 'discount' period - consider averaging down on your highest conviction assets.", m.portfolioReturn.Abs().StringFixed(2))
	case m.portfolioReturn.GreaterThan(decimal.NewFromInt(15)):
		return fmt.Sprintf("Your portfolio is performing exceptionally well with a %s%% return. Beware of market euphoria. Consider rebalancing: trim profits from high-flyers and move them into stable assets to lock in gains.", m.portfolioReturn.StringFixed(2))
	default:
		return fmt.Sprintf("Your portfolio is relatively stable with a %s%% return. Ensure you are well-diversified across sectors (Tech, Finance, Healthcare) to hedge against future volatility.", m.portfolioReturn.StringFixed(2))
	}
}

func actionItems(m *metrics) []string {
	items := make([]string, 0, 3)
	if m.portfolioReturn.IsNegative() {
		items = append(items, "Review your portfolio: Ensure you aren't holding fundamentally broken assets. Hold the strong ones.")
	} else {
		items = append(items, "Check your asset allocation: Ensure you aren't over-exposed to a single volatile sector.")
	}
	items = append(items, fmt.Sprintf("Audit your %s expenses from the last 30 days.", m.topCategory))
	items = append(items, "Automate a transfer of 10% of your income to a separate, high-yield savings account.")
	return items
}

// recommendedBudget applies a 50/30/20 split of monthly income
func recommendedBudget(monthlyIncome, savings decimal.Decimal) map[string]decimal.Decimal {
	needs := monthlyIncome.Mul(decimal.NewFromFloat(0.5))
	wants := monthlyIncome.Mul(decimal.NewFromFloat(0.3))

	debtRepayment := decimal.Zero
	if savings.IsNegative() {
		debtRepayment = savings.Abs()
	}

	return map[string]decimal.Decimal{
		"Bills & Utilities":     needs.Mul(decimal.NewFromFloat(0.4)).Round(0),
		"Food & Dining":         needs.Mul(decimal.NewFromFloat(0.3)).Round(0),
		"Healthcare":            needs.Mul(decimal.NewFromFloat(0.2)).Round(0),
		"Transport":             needs.Mul(decimal.NewFromFloat(0.1)).Round(0),
		"Shopping":              wants.Mul(decimal.NewFromFloat(0.5)).Round(0),
		"Entertainment":         wants.Mul(decimal.NewFromFloat(0.5)).Round(0),
		"Savings & Investments": monthlyIncome.Mul(decimal.NewFromFloat(0.2)).Round(0),
		"Debt Repayment":        debtRepayment,
	}
}
