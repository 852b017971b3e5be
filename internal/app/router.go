package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/medika-erp/medika-erp/internal/auth"
	"github.com/medika-erp/medika-erp/internal/dashboard"
	"github.com/medika-erp/medika-erp/internal/inventory"
	"github.com/medika-erp/medika-erp/internal/invoices"
	"github.com/medika-erp/medika-erp/internal/masterdata/categories"
	"github.com/medika-erp/medika-erp/internal/masterdata/products"
	"github.com/medika-erp/medika-erp/internal/masterdata/warehouses"
	"github.com/medika-erp/medika-erp/internal/observability"
	"github.com/medika-erp/medika-erp/internal/partners"
	"github.com/medika-erp/medika-erp/internal/printout"
	"github.com/medika-erp/medika-erp/internal/proposals"
	"github.com/medika-erp/medika-erp/internal/roles"
	"github.com/medika-erp/medika-erp/internal/shared"
	"github.com/medika-erp/medika-erp/internal/users"
	"github.com/medika-erp/medika-erp/internal/waybills"
	"github.com/medika-erp/medika-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	ProductHandler   *products.Handler
	CategoryHandler  *categories.Handler
	WarehouseHandler *warehouses.Handler
	PartnerHandler   *partners.Handler
	InvoiceHandler   *invoices.Handler
	WaybillHandler   *waybills.Handler
	ProposalHandler  *proposals.Handler
	InventoryHandler *inventory.Handler
	DashboardHandler *dashboard.Handler
	PrintoutHandler  *printout.Handler
	UsersHandler     *users.Handler
	RolesHandler     *roles.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Medika defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)
		api.Route("/products", params.ProductHandler.MountRoutes)
		api.Route("/categories", params.CategoryHandler.MountRoutes)
		api.Route("/warehouses", params.WarehouseHandler.MountRoutes)
		api.Route("/partners", params.PartnerHandler.MountRoutes)
		api.Route("/invoices", params.InvoiceHandler.MountRoutes)
		api.Route("/waybills", params.WaybillHandler.MountRoutes)
		api.Route("/proposals", params.ProposalHandler.MountRoutes)
		api.Route("/inventory", params.InventoryHandler.MountRoutes)
		api.Route("/dashboard", params.DashboardHandler.MountRoutes)
		api.Route("/printouts", params.PrintoutHandler.MountRoutes)
		api.Route("/users", params.UsersHandler.MountRoutes)
		api.Route("/roles", params.RolesHandler.MountRoutes)
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
