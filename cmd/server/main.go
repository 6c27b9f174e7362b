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

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fischervincent/grow-journal-sub000/internal/auth"
	"github.com/fischervincent/grow-journal-sub000/internal/config"
	"github.com/fischervincent/grow-journal-sub000/internal/db"
	api "github.com/fischervincent/grow-journal-sub000/internal/http"
	"github.com/fischervincent/grow-journal-sub000/internal/repo"
	"github.com/fischervincent/grow-journal-sub000/internal/schedule"
	"github.com/fischervincent/grow-journal-sub000/internal/service"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	authManager := auth.NewManager(cfg.JWTSecret)
	repository := repo.New(pool)
	svc := service.New(repository, authManager)

	reconciler := schedule.NewReconciler(repository, repository)
	applicator := schedule.NewApplicator(repository, reconciler)
	postEvent := schedule.NewPostEventScheduler(repository, reconciler)

	if cfg.BootstrapInvite != "" {
		err := repository.CreateInvite(ctx, nil, cfg.BootstrapInvite, time.Now().Add(30*24*time.Hour))
		if err != nil && !isUniqueViolation(err) {
			log.Fatalf("failed to create bootstrap invite: %v", err)
		}
	}

	handler := &api.API{
		Repo:       repository,
		Service:    svc,
		Auth:       authManager,
		Applicator: applicator,
		PostEvent:  postEvent,
		Reconciler: reconciler,
		Origins:    splitOrigins(cfg.CORSOrigin),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}

func splitOrigins(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// isUniqueViolation lets a restart reuse an already-seeded bootstrap code.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
