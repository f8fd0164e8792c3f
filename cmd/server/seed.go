package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/usecase/account"
	"github.com/finbank/finbank-backend/internal/usecase/card"
	"github.com/finbank/finbank-backend/internal/usecase/ledger"
)

// seedDemo populates a fresh user with starter data when SEED_DEMO is
// set. Runs only when the user has no accounts yet, so restarts are
// safe.
func seedDemo(
	ctx context.Context,
	logger zerolog.Logger,
	userID uuid.UUID,
	accounts *account.AccountService,
	cards *card.CardService,
	ledgerSvc *ledger.LedgerService,
) {
	if os.Getenv("SEED_DEMO") == "" {
		return
	}

	existing, err := accounts.List(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("demo seed skipped, account lookup failed")
		return
	}
	if len(existing) > 0 {
		return
	}

	checking, err := accounts.Create(ctx, account.CreateAccountInput{
		UserID:  userID,
		Name:    "Checking",
		Type:    "Checking",
		Balance: decimal.NewFromInt(12500),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("demo seed failed")
		return
	}
	if _, err := accounts.Create(ctx, account.CreateAccountInput{
		UserID:  userID,
		Name:    "Savings",
		Type:    "Savings",
		Balance: decimal.NewFromInt(30000),
	}); err != nil {
		logger.Warn().Err(err).Msg("demo seed failed")
		return
	}

	if _, err := cards.Issue(ctx, card.IssueCardInput{
		UserID:       userID,
		AccountID:    checking.ID,
		Brand:        "VISA",
		Last4:        "4242",
		Expiry:       "12/28",
		MonthlyLimit: decimal.NewFromInt(2000),
	}); err != nil {
		logger.Warn().Err(err).Msg("demo seed failed")
		return
	}

	postings := []ledger.PostTransactionInput{
		{UserID: userID, Name: "Salary", Amount: decimal.NewFromInt(5000), Type: domain.TransactionTypeIncome, Category: "Salary", AccountID: checking.ID, Date: time.Now().AddDate(0, 0, -12)},
		{UserID: userID, Name: "Rent", Amount: decimal.NewFromInt(1500), Type: domain.TransactionTypeExpense, Category: "Bills & Utilities", AccountID: checking.ID, Date: time.Now().AddDate(0, 0, -10)},
		{UserID: userID, Name: "Groceries", Amount: decimal.NewFromInt(240), Type: domain.TransactionTypeExpense, Category: "Food & Dining", AccountID: checking.ID, Date: time.Now().AddDate(0, 0, -4)},
	}
	for _, p := range postings {
		if _, err := ledgerSvc.Post(ctx, p); err != nil {
			logger.Warn().Err(err).Str("name", p.Name).Msg("demo posting failed")
		}
	}

	logger.Info().Msg("demo data seeded")
}
