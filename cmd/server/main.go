package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/roulette/internal/auth"
	"github.com/mmynk/roulette/internal/config"
	"github.com/mmynk/roulette/internal/events"
	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/metrics"
	"github.com/mmynk/roulette/internal/middleware"
	"github.com/mmynk/roulette/internal/service"
	"github.com/mmynk/roulette/internal/storage"
	"github.com/mmynk/roulette/internal/storage/postgres"
	"github.com/mmynk/roulette/internal/storage/sqlite"
	"github.com/mmynk/roulette/internal/wheel"
	"github.com/mmynk/roulette/pkg/api/apiconnect"
	"github.com/mmynk/roulette/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.DBDriver)

	var gen wheel.Generator = wheel.NewRandom()
	if slot, ok := cfg.Forced(); ok {
		gen = wheel.Fixed(slot)
		slog.Warn("Wheel outcome is forced", "slot", slot)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hub := events.NewHub()
	engine := game.New(store, gen,
		game.WithObserver(metrics.New(registry)),
		game.WithObserver(hub),
	)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store, cfg.StartingBalance)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
			apiconnect.GameServiceGetWheelProcedure,
		),
		middleware.LoggingInterceptor(),
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(corsMiddleware)

	mount := func(path string, handler http.Handler) {
		r.Handle(path+"*", handler)
	}
	mount(apiconnect.NewGameServiceHandler(service.NewGameService(engine, cfg.TableID), interceptors))
	mount(apiconnect.NewWagerServiceHandler(service.NewWagerService(engine), interceptors))
	mount(apiconnect.NewBalanceServiceHandler(service.NewBalanceService(engine), interceptors))
	mount(apiconnect.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store, slog.Default()), interceptors))

	r.Handle("/ws/rounds", hub)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	// h2c serves HTTP/2 without TLS, which connect clients use by default
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Roulette server starting", "address", cfg.Addr, "table", cfg.TableID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.New(cfg.PostgresDSN)
	default:
		return sqlite.New(cfg.DBPath)
	}
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Error-Reason")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
