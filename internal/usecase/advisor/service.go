package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
)

// recentTransactions bounds how much history goes into the prompt
const recentTransactions = 20

// Client completes an advisor chat turn. Implemented by the Groq
// adapter; failures surface to the handler as upstream errors.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// AdvisorService gathers the user's financial summary and asks the LLM
type AdvisorService struct {
	AccountRepo     domain.AccountRepository
	InvestmentRepo  domain.InvestmentRepository
	TransactionRepo domain.TransactionRepository
	LLM             Client
}

// NewAdvisorService creates a new AdvisorService instance
func NewAdvisorService(
	accountRepo domain.AccountRepository,
	investmentRepo domain.InvestmentRepository,
	transactionRepo domain.TransactionRepository,
	llm Client,
) *AdvisorService {
	return &AdvisorService{
		AccountRepo:     accountRepo,
		InvestmentRepo:  investmentRepo,
		TransactionRepo: transactionRepo,
		LLM:             llm,
	}
}

// Ask answers a free-text question with the user's financial data in
// context and returns the model's markdown answer
func (s *AdvisorService) Ask(ctx context.Context, userID uuid.UUID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	prompt, err := s.systemPrompt(ctx, userID)
	if err != nil {
		return "", err
	}

	return s.LLM.Complete(ctx, prompt, message)
}

// systemPrompt builds the portfolio-manager persona with the user's
// net worth, recent spending and current positions
func (s *AdvisorService) systemPrompt(ctx context.Context, userID uuid.UUID) (string, error) {
	accounts, err := s.AccountRepo.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	totalCash := decimal.Zero
	for _, account := range accounts {
		totalCash = totalCash.Add(account.Balance)
	}

	positions, err := s.InvestmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	totalInvested := decimal.Zero
	holdings := make([]string, 0, len(positions))
	for _, pos := range positions {
		totalInvested = totalInvested.Add(pos.PricePerShare.Mul(pos.Quantity))
		holdings = append(holdings, fmt.Sprintf("%s (%s)", pos.Symbol, pos.Quantity.String()))
	}
	portfolio := strings.Join(holdings, ", ")
	if portfolio == "" {
		portfolio = "None"
	}

	recent, err := s.TransactionRepo.ListByUser(ctx, userID, recentTransactions)
	if err != nil {
		return "", err
	}
	expenses := decimal.Zero
	for _, tx := range recent {
		if tx.Type == domain.TransactionTypeExpense {
			expenses = expenses.Add(tx.Amount)
		}
	}

	netWorth := totalCash.Add(totalInvested)

	return fmt.Sprintf(`You are FinBank Pro, a sophisticated hedge fund portfolio manager.
Your goal is to maximize the user's wealth using data-driven strategies.

USER FINANCIAL DATA:
- Net Worth: $%s (Cash: $%s, Invested: $%s)
- Recent Spending: $%s
- Current Portfolio: %s

INSTRUCTIONS:
1. Analyze the user's financial position.
2. Suggest a specific strategic allocation in DOLLAR AMOUNTS and PERCENTAGES only.
3. DO NOT suggest specific "Number of Shares" because you do not have live pricing data.
4. ALWAYS output the allocation plan in a Markdown Table with columns: [Asset, Allocation %%, Amount ($), Rationale].
5. Keep the text brief, professional, and confident.`,
		netWorth.StringFixed(2), totalCash.StringFixed(2), totalInvested.StringFixed(2),
		expenses.StringFixed(2), portfolio), nil
}
