package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/dew-13/solestyle/internal/auth"
	"github.com/dew-13/solestyle/internal/config"
	"github.com/dew-13/solestyle/internal/database"
	httpapi "github.com/dew-13/solestyle/internal/http"
	"github.com/dew-13/solestyle/internal/notify"
	"github.com/dew-13/solestyle/internal/orders"
	"github.com/dew-13/solestyle/internal/store"
)

// backend is everything the services need from storage.
type backend interface {
	orders.OrderStore
	orders.CatalogStore
	orders.UserStore
	httpapi.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load_config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	db, closeDB, err := openBackend(cfg)
	if err != nil {
		logger.Error("open_store", "driver", cfg.Database.Driver, "err", err)
		os.Exit(1)
	}
	defer closeDB()
	logger.Info("store_ready", "driver", cfg.Database.Driver)

	dispatcher := notify.NewDispatcher(newNotifier(cfg, logger), logger, cfg.Notify.Timeout)
	resolver := &auth.Resolver{Verifier: auth.NewVerifier(cfg.Auth.JWTSecret), Users: db}

	gin.SetMode(cfg.Server.GinMode)
	server := httpapi.NewServer(httpapi.Deps{
		Composer: orders.NewComposer(db, db, resolver, dispatcher, logger, cfg.Orders),
		Service:  orders.NewService(db, db, db, logger),
		Resolver: resolver,
		Store:    db,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server_starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server_stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown", "err", err)
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("notifications_abandoned", "err", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openBackend(cfg *config.Config) (backend, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		return store.NewMemory(), func() {}, nil
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgres(db), func() { _ = db.Close() }, nil
}

func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	if cfg.Notify.Driver != config.NotifySMTP {
		return &notify.LogNotifier{Logger: logger}
	}
	return &notify.MailNotifier{
		Mailer:      notify.NewSMTPMailer(cfg.Notify.SMTP),
		From:        cfg.Notify.SMTP.From,
		FromName:    cfg.Notify.SMTP.FromName,
		AdminEmails: cfg.Notify.AdminEmails,
	}
}
