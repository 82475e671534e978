package app

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/buteco-pos/buteco-pos/internal/auth"
	"github.com/buteco-pos/buteco-pos/internal/backup"
	"github.com/buteco-pos/buteco-pos/internal/catalog"
	"github.com/buteco-pos/buteco-pos/internal/closing"
	"github.com/buteco-pos/buteco-pos/internal/consol"
	"github.com/buteco-pos/buteco-pos/internal/contacts"
	"github.com/buteco-pos/buteco-pos/internal/events"
	"github.com/buteco-pos/buteco-pos/internal/expenses"
	"github.com/buteco-pos/buteco-pos/internal/orders"
	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/reports"
	"github.com/buteco-pos/buteco-pos/internal/sales"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Store           *store.Store
	Guard           *auth.Guard
	CatalogHandler  *catalog.Handler
	SalesHandler    *sales.Handler
	ExpensesHandler *expenses.Handler
	OrdersHandler   *orders.Handler
	ContactsHandler *contacts.Handler
	ClosingHandler  *closing.Handler
	ReportsHandler  *reports.Handler
	EventsHandler   *events.Handler
	BackupHandler   *backup.Handler
	ConsolHandler   *consol.Handler
}

// NewRouter constructs the chi.Router with the full API surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		today := time.Now().Format(store.LayoutDate)
		var total, todayCount int
		params.Store.View(func(st *store.State) {
			total = len(st.Sales)
			for _, sale := range st.Sales {
				if strings.HasPrefix(sale.Date, today) {
					todayCount++
				}
			}
		})
		httpx.JSON(w, http.StatusOK, httpx.Envelope{
			"status":       "online",
			"total_vendas": total,
			"vendas_hoje":  todayCount,
			"timestamp":    time.Now().Format(store.LayoutDateTimeSec),
		})
	})

	params.CatalogHandler.MountRoutes(r)
	params.SalesHandler.MountRoutes(r)
	params.ExpensesHandler.MountRoutes(r)
	params.OrdersHandler.MountRoutes(r)
	params.ContactsHandler.MountRoutes(r)
	params.ClosingHandler.MountRoutes(r)
	params.ReportsHandler.MountRoutes(r)
	params.EventsHandler.MountRoutes(r)

	// destructive surface sits behind the admin guard
	r.Group(func(r chi.Router) {
		r.Use(params.Guard.Middleware)
		params.BackupHandler.MountRoutes(r)
		params.ConsolHandler.MountRoutes(r)
	})

	return r
}
