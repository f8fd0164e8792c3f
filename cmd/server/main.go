package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	advisorclient "github.com/finbank/finbank-backend/internal/adapter/advisor"
	"github.com/finbank/finbank-backend/internal/adapter/httpapi"
	"github.com/finbank/finbank-backend/internal/adapter/quote"
	"github.com/finbank/finbank-backend/internal/adapter/repository/postgres"
	"github.com/finbank/finbank-backend/internal/config"
	"github.com/finbank/finbank-backend/internal/keymutex"
	"github.com/finbank/finbank-backend/internal/rates"
	"github.com/finbank/finbank-backend/internal/usecase/account"
	"github.com/finbank/finbank-backend/internal/usecase/advisor"
	"github.com/finbank/finbank-backend/internal/usecase/analytics"
	"github.com/finbank/finbank-backend/internal/usecase/card"
	"github.com/finbank/finbank-backend/internal/usecase/dashboard"
	"github.com/finbank/finbank-backend/internal/usecase/health"
	"github.com/finbank/finbank-backend/internal/usecase/investment"
	"github.com/finbank/finbank-backend/internal/usecase/ledger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.FromEnv()

	db, err := postgres.Open(context.Background(), cfg.ConnectionString())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	cardRepo := postgres.NewCardRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	investmentRepo := postgres.NewInvestmentRepository(db)
	settlementRepo := postgres.NewSettlementRepository(db)

	locks := keymutex.New()
	converter := rates.NewFixed()
	quotes := quote.NewChain(logger, cfg.FinnhubKey, cfg.AlphaVantageKey)
	llm := advisorclient.New(logger, cfg.GroqKey, cfg.GroqBaseURL, cfg.GroqModel)

	accountService := account.NewAccountService(accountRepo, cardRepo, transactionRepo, investmentRepo, locks)
	cardService := card.NewCardService(cardRepo, accountRepo, transactionRepo)
	ledgerService := ledger.NewLedgerService(accountRepo, cardRepo, transactionRepo, settlementRepo, converter, locks)
	investmentService := investment.NewInvestmentService(
		investmentRepo, accountRepo, settlementRepo, accountService,
		quotes, quotes, converter, locks, logger,
	)
	analyticsService := analytics.NewAnalyticsService(transactionRepo)
	dashboardService := dashboard.NewDashboardService(accountRepo, transactionRepo, investmentRepo, quotes, converter)
	healthService := health.NewHealthService(accountRepo, transactionRepo, investmentRepo, quotes, converter)
	advisorService := advisor.NewAdvisorService(accountRepo, investmentRepo, transactionRepo, llm)

	api := httpapi.NewAPI(
		accountService, cardService, ledgerService, investmentService,
		analyticsService, dashboardService, healthService, advisorService,
	)

	// The token identifies one user; its ID is derived from the token
	// so restarts keep pointing at the same rows.
	tokenUserID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(cfg.APIToken))
	verifier := httpapi.StaticVerifier{cfg.APIToken: tokenUserID}

	seedDemo(context.Background(), logger, tokenUserID, accountService, cardService, ledgerService)

	router := chi.NewRouter()
	router.Use(httpapi.RequestLogger(logger))
	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Route("/api", func(r chi.Router) {
		r.Use(httpapi.Authenticate(verifier))
		api.AppendRoutes(r)
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(server, logger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *http.Server, logger zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
