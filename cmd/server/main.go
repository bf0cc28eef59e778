package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/config"
	"github.com/Simplici0/scanquote/internal/db"
	"github.com/Simplici0/scanquote/internal/gates"
	"github.com/Simplici0/scanquote/internal/logging"
	"github.com/Simplici0/scanquote/internal/migrations"
	"github.com/Simplici0/scanquote/internal/pricing"
	"github.com/Simplici0/scanquote/internal/seed"
	"github.com/Simplici0/scanquote/internal/store"
)

const (
	maxBodySize     = 1 << 20
	shutdownTimeout = 10 * time.Second
)

type server struct {
	auth   *authService
	store  *store.Store
	engine *pricing.Engine
	policy gates.Policy
	log    *zap.Logger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings {
		logger.Warn("configuration incomplete", zap.String("detail", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database); err != nil {
			return err
		}
	}

	stats, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		DemoLead:      cfg.IsDev(),
	})
	if err != nil {
		return err
	}
	logger.Info("seed complete", zap.Int("inserts", stats.Inserts))

	auth, err := newAuthService(database, cfg.SessionSecret)
	if err != nil {
		return err
	}

	srv := &server{
		auth:   auth,
		store:  store.New(database),
		engine: pricing.NewDefault(),
		policy: gates.DefaultPolicy(),
		log:    logger,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/calculate", s.handleCalculate)
			r.Post("/import", s.handleImport)
			r.Post("/", s.handleSaveQuote)
			r.Get("/", s.handleListQuotes)
			r.Get("/{id}", s.handleGetQuote)
			r.Get("/{id}/text", s.handleQuoteText)
			r.Get("/{id}/export", s.handleQuoteExport)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Post("/", s.handleCreateLead)
			r.Get("/{id}", s.handleGetLead)
			r.Post("/{id}/proposal-gates", s.handleProposalGates)
			r.Post("/{id}/stage", s.handleStageTransition)
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.Error("handler panic", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, "internal server error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.auth.sessionUser(r); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
