package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finbank/finbank-backend/internal/domain"
	"github.com/finbank/finbank-backend/internal/usecase/account"
	"github.com/finbank/finbank-backend/internal/usecase/advisor"
	"github.com/finbank/finbank-backend/internal/usecase/analytics"
	"github.com/finbank/finbank-backend/internal/usecase/card"
	"github.com/finbank/finbank-backend/internal/usecase/dashboard"
	"github.com/finbank/finbank-backend/internal/usecase/health"
	"github.com/finbank/finbank-backend/internal/usecase/investment"
	"github.com/finbank/finbank-backend/internal/usecase/ledger"
)

// API is the HTTP surface of the service
type API struct {
	accounts    *account.AccountService
	cards       *card.CardService
	ledger      *ledger.LedgerService
	investments *investment.InvestmentService
	analytics   *analytics.AnalyticsService
	dashboard   *dashboard.DashboardService
	health      *health.HealthService
	advisor     *advisor.AdvisorService
}

func NewAPI(
	accounts *account.AccountService,
	cards *card.CardService,
	ledgerSvc *ledger.LedgerService,
	investments *investment.InvestmentService,
	analyticsSvc *analytics.AnalyticsService,
	dashboardSvc *dashboard.DashboardService,
	healthSvc *health.HealthService,
	advisorSvc *advisor.AdvisorService,
) *API {
	return &API{
		accounts:    accounts,
		cards:       cards,
		ledger:      ledgerSvc,
		investments: investments,
		analytics:   analyticsSvc,
		dashboard:   dashboardSvc,
		health:      healthSvc,
		advisor:     advisorSvc,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", a.listAccounts)
		r.Post("/", a.createAccount)
		r.Post("/reset", a.resetAccounts)
	})
	r.Route("/cards", func(r chi.Router) {
		r.Get("/", a.listCards)
		r.Post("/", a.issueCard)
		r.Post("/reset", a.resetCards)
		r.Post("/{cardID}/toggle", a.toggleCard)
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", a.listTransactions)
		r.Post("/", a.postTransaction)
		r.Post("/transfer", a.transfer)
	})
	r.Route("/investments", func(r chi.Router) {
		r.Get("/", a.listInvestments)
		r.Post("/", a.buyInvestment)
		r.Post("/{investmentID}/sell", a.sellInvestment)
	})
	r.Get("/quote", a.getQuote)
	r.Get("/analytics", a.getAnalytics)
	r.Get("/dashboard", a.getDashboard)
	r.Get("/financial-health", a.getFinancialHealth)
	r.Post("/advisor", a.askAdvisor)
}

// --- accounts ---

type accountResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAccountResponse(acc *domain.Account) accountResponse {
	return accountResponse{
		ID:        acc.ID,
		Name:      acc.Name,
		Type:      acc.Type,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt,
	}
}

func (a *API) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.accounts.List(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, toAccountResponse(acc))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) createAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string          `json:"name"`
		Type    string          `json:"type"`
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	acc, err := a.accounts.Create(r.Context(), account.CreateAccountInput{
		UserID:  userID(r),
		Name:    req.Name,
		Type:    req.Type,
		Balance: req.Balance,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (a *API) resetAccounts(w http.ResponseWriter, r *http.Request) {
	if err := a.accounts.Reset(r.Context(), userID(r)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "All data cleared"})
}

// --- cards ---

type cardResponse struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	AccountName  string          `json:"account_name,omitempty"`
	Kind         domain.CardKind `json:"kind"`
	Brand        string          `json:"brand"`
	Number       string          `json:"number"`
	Expiry       string          `json:"expiry"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	Status       string          `json:"status"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
}

func (a *API) listCards(w http.ResponseWriter, r *http.Request) {
	views, err := a.cards.List(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]cardResponse, 0, len(views))
	for _, v := range views {
		out = append(out, cardResponse{
			ID:           v.ID,
			AccountID:    v.AccountID,
			AccountName:  v.AccountName,
			Kind:         v.Kind,
			Brand:        v.Brand,
			Number:       v.Number,
			Expiry:       v.Expiry,
			MonthlyLimit: v.MonthlyLimit,
			Status:       string(v.Status),
			Spent:        v.Spent,
			Remaining:    v.Remaining,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) issueCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID    uuid.UUID       `json:"account_id"`
		Brand        string          `json:"brand"`
		Kind         string          `json:"kind"`
		Last4        string          `json:"last4"`
		Expiry       string          `json:"expiry"`
		MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	issued, err := a.cards.Issue(r.Context(), card.IssueCardInput{
		UserID:       userID(r),
		AccountID:    req.AccountID,
		Brand:        req.Brand,
		Kind:         domain.CardKind(req.Kind),
		Last4:        req.Last4,
		Expiry:       req.Expiry,
		MonthlyLimit: req.MonthlyLimit,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cardResponse{
		ID:           issued.ID,
		AccountID:    issued.AccountID,
		Kind:         issued.Kind,
		Brand:        issued.Brand,
		Number:       issued.Number,
		Expiry:       issued.Expiry,
		MonthlyLimit: issued.MonthlyLimit,
		Status:       string(issued.Status),
		Spent:        decimal.Zero,
		Remaining:    issued.MonthlyLimit,
	})
}

func (a *API) toggleCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid card id"})
		return
	}

	status, err := a.cards.Toggle(r.Context(), userID(r), cardID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// resetCards deletes the user's cards only, leaving accounts and the
// transaction history in place.
func (a *API) resetCards(w http.ResponseWriter, r *http.Request) {
	if err := a.cards.Reset(r.Context(), userID(r)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cards reset"})
}

// --- transactions ---

type transactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	CardID        *uuid.UUID      `json:"card_id,omitempty"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Date          time.Time       `json:"date"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		AccountID:     tx.AccountID,
		CardID:        tx.CardID,
		Name:          tx.Name,
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		Category:      tx.Category,
		Date:          tx.Date,
		Status:        string(tx.Status),
		PaymentMethod: tx.PaymentMethod,
	}
}

func (a *API) listTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := a.ledger.List(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, toTransactionResponse(tx))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string          `json:"name"`
		Amount    decimal.Decimal `json:"amount"`
		Type      string          `json:"type"`
		Category  string          `json:"category"`
		AccountID uuid.UUID       `json:"account_id"`
		CardID    *uuid.UUID      `json:"card_id"`
		Date      time.Time       `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	tx, err := a.ledger.Post(r.Context(), ledger.PostTransactionInput{
		UserID:    userID(r),
		Name:      req.Name,
		Amount:    req.Amount,
		Type:      domain.TransactionType(req.Type),
		Category:  req.Category,
		AccountID: req.AccountID,
		CardID:    req.CardID,
		Date:      req.Date,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (a *API) transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromAccountID uuid.UUID       `json:"from_account_id"`
		RecipientName string          `json:"recipient_name"`
		BankName      string          `json:"bank_name"`
		AccountNumber string          `json:"account_number"`
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	tx, err := a.ledger.Transfer(r.Context(), ledger.TransferInput{
		UserID:        userID(r),
		FromAccountID: req.FromAccountID,
		RecipientName: req.RecipientName,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
		Currency:      req.Currency,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// --- investments ---

type positionResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Symbol             string          `json:"symbol"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	Quantity           decimal.Decimal `json:"quantity"`
	PurchasePrice      decimal.Decimal `json:"purchase_price"`
	CurrentPrice       decimal.Decimal `json:"current_price"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	GainLoss           decimal.Decimal `json:"gain_loss"`
	GainLossPercent    decimal.Decimal `json:"gain_loss_percent"`
	DailyChangePercent decimal.Decimal `json:"daily_change_percent"`
	UsingLiveData      bool            `json:"using_live_data"`
}

func (a *API) listInvestments(w http.ResponseWriter, r *http.Request) {
	positions, err := a.investments.List(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, positionResponse{
			ID:                 p.ID,
			Symbol:             p.Symbol,
			Name:               p.Name,
			Type:               string(p.Type),
			Quantity:           p.Quantity,
			PurchasePrice:      p.PricePerShare,
			CurrentPrice:       p.CurrentPrice,
			CurrentValue:       p.CurrentValue,
			GainLoss:           p.PositionGainLoss,
			GainLossPercent:    p.PositionGainLossPercent,
			DailyChangePercent: p.DailyChangePercent,
			UsingLiveData:      p.UsingLiveData,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) buyInvestment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID     uuid.UUID       `json:"account_id"`
		Symbol        string          `json:"symbol"`
		Name          string          `json:"name"`
		Type          string          `json:"type"`
		Quantity      decimal.Decimal `json:"quantity"`
		PricePerShare decimal.Decimal `json:"price_per_share"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	position, err := a.investments.Buy(r.Context(), investment.BuyInput{
		UserID:           userID(r),
		FundingAccountID: req.AccountID,
		Symbol:           req.Symbol,
		Name:             req.Name,
		Type:             domain.AssetType(req.Type),
		Quantity:         req.Quantity,
		PricePerShare:    req.PricePerShare,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, positionResponse{
		ID:            position.ID,
		Symbol:        position.Symbol,
		Name:          position.Name,
		Type:          string(position.Type),
		Quantity:      position.Quantity,
		PurchasePrice: position.PricePerShare,
		CurrentPrice:  position.PricePerShare,
		CurrentValue:  position.TotalValue,
		UsingLiveData: false,
	})
}

func (a *API) sellInvestment(w http.ResponseWriter, r *http.Request) {
	positionID, err := uuid.Parse(chi.URLParam(r, "investmentID"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid investment id"})
		return
	}

	var req struct {
		DepositAccountID uuid.UUID       `json:"deposit_account_id"`
		Quantity         decimal.Decimal `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	receipt, err := a.investments.Sell(r.Context(), investment.SellInput{
		UserID:           userID(r),
		PositionID:       positionID,
		DepositAccountID: req.DepositAccountID,
		Quantity:         req.Quantity,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Symbol        string          `json:"symbol"`
		QuantitySold  decimal.Decimal `json:"quantity_sold"`
		PricePerShare decimal.Decimal `json:"price_per_share"`
		Payout        decimal.Decimal `json:"payout"`
		PriceLive     bool            `json:"price_live"`
	}{receipt.Symbol, receipt.QuantitySold, receipt.PricePerShare, receipt.Payout, receipt.PriceLive})
}

func (a *API) getQuote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "symbol is required"})
		return
	}
	assetType := domain.AssetType(r.URL.Query().Get("type"))
	if assetType == "" {
		assetType = domain.AssetTypeStock
	}

	quote, err := a.investments.Quote(r.Context(), symbol, assetType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Symbol   string          `json:"symbol"`
		Price    decimal.Decimal `json:"price"`
		Currency string          `json:"currency"`
		Live     bool            `json:"live"`
	}{quote.Symbol, quote.Price, quote.Currency, quote.Live})
}

// --- aggregations ---

func (a *API) getAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := a.analytics.Build(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	spending := make([]map[string]interface{}, 0, len(report.SpendingByCategory))
	for _, c := range report.SpendingByCategory {
		spending = append(spending, map[string]interface{}{
			"name":    c.Name,
			"value":   c.Value,
			"percent": c.Percent,
		})
	}
	trends := make([]map[string]interface{}, 0, len(report.MonthlyTrends))
	for _, t := range report.MonthlyTrends {
		trends = append(trends, map[string]interface{}{
			"month":   t.Month,
			"income":  t.Income,
			"expense": t.Expense,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_income":         report.TotalIncome,
		"total_expenses":       report.TotalExpenses,
		"net_savings":          report.NetSavings,
		"savings_rate":         report.SavingsRate,
		"spending_by_category": spending,
		"monthly_trends":       trends,
	})
}

func (a *API) getDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := a.dashboard.Build(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	accounts := make([]accountResponse, 0, len(summary.Accounts))
	for _, acc := range summary.Accounts {
		accounts = append(accounts, toAccountResponse(acc))
	}
	recent := make([]transactionResponse, 0, len(summary.Recent))
	for _, tx := range summary.Recent {
		recent = append(recent, toTransactionResponse(tx))
	}
	chart := make([]map[string]interface{}, 0, len(summary.Chart))
	for _, s := range summary.Chart {
		chart = append(chart, map[string]interface{}{
			"label": s.Label,
			"value": s.Value,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"accounts":            accounts,
		"total_balance":       summary.TotalBalance,
		"monthly_income":      summary.MonthlyIncome,
		"monthly_expenses":    summary.MonthlyExpenses,
		"portfolio_value":     summary.PortfolioValue,
		"recent_transactions": recent,
		"chart":               chart,
	})
}

func (a *API) getFinancialHealth(w http.ResponseWriter, r *http.Request) {
	report, err := a.health.Build(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"score":               report.Score,
		"savings_rate":        report.SavingsRate,
		"summary":             report.Summary,
		"spending_analysis":   report.SpendingAnalysis,
		"investment_strategy": report.InvestmentStrategy,
		"action_items":        report.ActionItems,
		"recommended_budget":  report.RecommendedBudget,
	})
}

// --- advisor ---

func (a *API) askAdvisor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	answer, err := a.advisor.Ask(r.Context(), userID(r), req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			respondError(w, err)
			return
		}
		// upstream model failure, not a client problem
		respondJSON(w, http.StatusBadGateway, errorResponse{Message: "Advisor unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"response": answer})
}
