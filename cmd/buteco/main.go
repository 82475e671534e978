package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/buteco-pos/buteco-pos/internal/app"
	"github.com/buteco-pos/buteco-pos/internal/auth"
	"github.com/buteco-pos/buteco-pos/internal/backup"
	"github.com/buteco-pos/buteco-pos/internal/catalog"
	"github.com/buteco-pos/buteco-pos/internal/closing"
	"github.com/buteco-pos/buteco-pos/internal/consol"
	"github.com/buteco-pos/buteco-pos/internal/contacts"
	"github.com/buteco-pos/buteco-pos/internal/events"
	"github.com/buteco-pos/buteco-pos/internal/expenses"
	"github.com/buteco-pos/buteco-pos/internal/orders"
	"github.com/buteco-pos/buteco-pos/internal/reports"
	"github.com/buteco-pos/buteco-pos/internal/sales"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	st := store.Open(logger, cfg.DataFile, cfg.BackupDir)

	guard, err := auth.NewGuard(logger, cfg.AdminPassword)
	if err != nil {
		logger.Error("init admin guard", slog.Any("error", err))
		os.Exit(1)
	}

	bus := events.NewBus()

	catalogService := catalog.NewService(logger, st)
	catalogHandler := catalog.NewHandler(logger, catalogService, bus, st)

	salesService := sales.NewService(logger, st)
	salesHandler := sales.NewHandler(logger, salesService, bus)

	expensesService := expenses.NewService(logger, st)
	expensesHandler := expenses.NewHandler(logger, expensesService, bus)

	ordersService := orders.NewService(logger, st)
	ordersHandler := orders.NewHandler(logger, ordersService, bus)

	contactsService := contacts.NewService(logger, st)
	contactsHandler := contacts.NewHandler(logger, contactsService)

	closingService := closing.NewService(logger, st)
	closingHandler := closing.NewHandler(logger, closingService)

	reportsService := reports.NewService(logger, st)
	reportsHandler := reports.NewHandler(logger, reportsService)

	eventsHandler := events.NewHandler(logger, bus)
	backupHandler := backup.NewHandler(logger, st)

	consolService := consol.NewService(logger, st)
	consolHandler := consol.NewHandler(logger, consolService, bus)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Store:           st,
		Guard:           guard,
		CatalogHandler:  catalogHandler,
		SalesHandler:    salesHandler,
		ExpensesHandler: expensesHandler,
		OrdersHandler:   ordersHandler,
		ContactsHandler: contactsHandler,
		ClosingHandler:  closingHandler,
		ReportsHandler:  reportsHandler,
		EventsHandler:   eventsHandler,
		BackupHandler:   backupHandler,
		ConsolHandler:   consolHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("data_file", cfg.DataFile))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
