package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/advance"
	"payrun/internal/domain/audit"
	"payrun/internal/domain/compensation"
	"payrun/internal/domain/payroll"
	"payrun/internal/platform/config"
	"payrun/internal/platform/db"
	"payrun/internal/platform/metrics"
	advancehandler "payrun/internal/transport/http/handlers/advance"
	audithandler "payrun/internal/transport/http/handlers/audit"
	payrollhandler "payrun/internal/transport/http/handlers/payroll"
	"payrun/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	collector := metrics.New()

	compStore := compensation.NewStore(pool)
	auditor := audit.New(pool)

	advanceService := advance.NewService(advance.NewStore(pool))

	payrollService := payroll.NewService(payroll.NewStore(pool), compStore, advanceService, auditor)
	payrollService.Workers = cfg.SettlementWorkers
	payrollService.RecalcRetries = cfg.RecalcMaxRetries
	payrollService.OnClamp = collector.RecordClamp

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		payrollhandler.NewHandler(payrollService).RegisterRoutes(r)
		advancehandler.NewHandler(advanceService).RegisterRoutes(r)
		audithandler.NewHandler(auditor).RegisterRoutes(r)
	})

	log.Printf("payrun server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
