package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cimillas/attendance-nft/internal/app"
	"github.com/cimillas/attendance-nft/internal/cache"
	"github.com/cimillas/attendance-nft/internal/clock"
	"github.com/cimillas/attendance-nft/internal/config"
	"github.com/cimillas/attendance-nft/internal/ledger"
	"github.com/cimillas/attendance-nft/internal/storage/postgres"
	"github.com/cimillas/attendance-nft/internal/telemetry"
	transporthttp "github.com/cimillas/attendance-nft/internal/transport/http"
	"github.com/cimillas/attendance-nft/internal/wallet"
	"github.com/cimillas/attendance-nft/migrations"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	serviceName     = "attendance-nft-api"
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := log.Default()
	config.LoadEnvFile(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	warnDefaults(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(startupCtx, telemetry.Options{
		ServiceName: serviceName,
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatalf("setup tracing: %v", err)
	}

	rpc, err := ethclient.DialContext(startupCtx, cfg.RPCURL)
	if err != nil {
		log.Fatalf("dial rpc: %v", err)
	}
	defer rpc.Close()

	client := ledger.NewClient(rpc,
		ledger.WithRetry(cfg.RPCRetryAttempts, cfg.RPCRetryDelay),
		ledger.WithCallTimeout(cfg.RPCTimeout),
		ledger.WithLogger(logger),
	)
	deployment := cfg.Deployment()
	registry := ledger.NewRegistry(client, deployment.Address)

	limit, err := cfg.SpendingLimit()
	if err != nil {
		log.Fatalf("signer limit: %v", err)
	}
	signer, err := wallet.NewKeyed(rpc, cfg.SignerPrivateKey, wallet.WithSpendingLimit(limit))
	if err != nil {
		log.Fatalf("load signer: %v", err)
	}
	if cfg.SignerPrivateKey == "" {
		logger.Printf("WARN: SIGNER_PRIVATE_KEY not set, write endpoints will report wallet_unavailable")
	}

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	applied, err := migrations.Apply(startupCtx, pool)
	if err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	for _, name := range applied {
		logger.Printf("applied migration %s", name)
	}
	journal := postgres.NewSubmissionRepository(pool)

	clk := clock.NewSystem()
	var aggregates app.AggregateCache
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(startupCtx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("connect to redis: %v", err)
		}
		defer rdb.Close()
		aggregates = cache.NewRedisAggregates(rdb, deployment.ChainID, deployment.Address, cfg.AggregateTTL)
	} else {
		logger.Printf("WARN: REDIS_URL not set, caching aggregates in memory")
		aggregates = cache.NewMemoryAggregates(clk, cfg.AggregateTTL)
	}

	orchestrator := app.NewOrchestrator(signer, client, clk,
		app.WithConfirmationTimeout(cfg.ConfirmationTimeout),
		app.WithPollInterval(cfg.ReceiptPollInterval),
		app.WithJournal(journal),
		app.WithRevertExplainer(client),
		app.WithOrchestratorLogger(logger),
	)
	flowOpts := []app.FlowOption{app.WithAggregateCache(aggregates), app.WithFlowLogger(logger)}

	handler := transporthttp.NewRouter(transporthttp.Services{
		CreateEvent: app.NewCreateEventFlow(registry, signer, orchestrator, deployment, flowOpts...),
		Mint:        app.NewMintFlow(registry, signer, orchestrator, deployment, flowOpts...),
		Lookup:      app.NewEventLookup(registry, aggregates, logger),
		Inspector:   app.NewInspector(registry, deployment),
		Reconciler:  app.NewReconciler(journal, client, clk),
	}, cfg.CORSOrigins, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s (registry %s, chain %d)", cfg.Port, deployment.Address.Hex(), deployment.ChainID)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

// warnDefaults flags settings that fell back to local development values.
func warnDefaults(logger *log.Logger) {
	keys := []string{"PORT", "DATABASE_URL", "CORS_ORIGINS"}
	if os.Getenv("DEPLOYMENT_FILE") == "" {
		keys = append(keys, "RPC_URL", "CONTRACT_ADDRESS")
	}
	for _, key := range keys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			logger.Printf("WARN: %s not set, using default", key)
		}
	}
}
