// main wires configuration, stores, services, and the HTTP server. All
// business logic lives in the internal packages; this file only chooses
// implementations based on what is configured.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	accountservice "innkeeper/internal/account/service"
	accountstore "innkeeper/internal/account/store"
	"innkeeper/internal/audit"
	billingservice "innkeeper/internal/billing/service"
	billingstore "innkeeper/internal/billing/store"
	"innkeeper/internal/identity"
	"innkeeper/internal/platform/config"
	"innkeeper/internal/platform/httpserver"
	"innkeeper/internal/platform/logger"
	"innkeeper/internal/platform/metrics"
	platformredis "innkeeper/internal/platform/redis"
	"innkeeper/internal/session"
	"innkeeper/internal/token"
	httptransport "innkeeper/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Relational stores.
	var (
		profiles accountservice.ProfileStore
		bookings accountservice.BookingStore
		invoices billingservice.InvoiceStore
		methods  billingservice.PaymentMethodStore
		settings billingservice.SettingsStore
		reader   billingservice.ProfileReader
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		profileStore := accountstore.NewPostgresProfileStore(db)
		profiles = profileStore
		bookings = accountstore.NewPostgresBookingStore(db)
		invoices = billingstore.NewPostgresInvoiceStore(db)
		methods = billingstore.NewPostgresPaymentMethodStore(db)
		settings = billingstore.NewPostgresSettingsStore(db)
		reader = profileStore
		log.Info("using postgres stores")
	} else {
		profileStore := accountstore.NewInMemoryProfileStore()
		profiles = profileStore
		bookings = accountstore.NewInMemoryBookingStore()
		invoices = billingstore.NewInMemoryInvoiceStore()
		methods = billingstore.NewInMemoryPaymentMethodStore()
		settings = billingstore.NewInMemorySettingsStore()
		reader = profileStore
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
	}

	// Identity store. The same backend serves account provisioning and the
	// session login's credential check.
	var identities identity.Store
	if cfg.Identity.BaseURL != "" {
		identities = identity.NewHTTPClient(cfg.Identity.BaseURL, cfg.Identity.ServiceKey)
		log.Info("using identity admin API", "base_url", cfg.Identity.BaseURL)
	} else {
		identities = identity.NewInMemoryStore()
		log.Warn("IDENTITY_BASE_URL not set, using in-memory identity store")
	}

	// Revoked-token list.
	var revoked token.RevocationList
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		revoked = token.NewRedisRevocationList(redisClient.Client)
		log.Info("using redis revocation list")
	} else {
		revoked = token.NewInMemoryRevocationList()
		log.Warn("REDIS_URL not set, using in-memory revocation list")
	}

	// Audit sink.
	var sink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("using kafka audit sink", "topic", cfg.Kafka.Topic)
	} else {
		sink = audit.NewInMemoryStore()
		log.Warn("KAFKA_BROKERS not set, audit events stay in memory")
	}
	publisher := audit.NewPublisher(sink)

	accounts := accountservice.New(identities, profiles, bookings,
		accountservice.WithLogger(log),
		accountservice.WithAuditPublisher(publisher),
		accountservice.WithMetrics(m),
		accountservice.WithTokenRevoker(token.NewAccountRevoker(revoked)),
	)
	billing := billingservice.New(invoices, methods, settings, reader,
		billingservice.WithLogger(log),
		billingservice.WithAuditPublisher(publisher),
		billingservice.WithMetrics(m),
	)

	tokens := token.NewService(cfg.Server.JWTSigningKey, "innkeeper")
	sessions := session.New(identities, tokens, revoked, session.WithLogger(log))
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  m,
		Verifier: token.NewVerifier(tokens, revoked),
		Sessions: sessions,
		Accounts: accounts,
		Billing:  billing,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
