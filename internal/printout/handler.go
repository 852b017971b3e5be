package printout

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medika-erp/medika-erp/internal/invoices"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
	"github.com/medika-erp/medika-erp/internal/rbac"
	"github.com/medika-erp/medika-erp/internal/waybills"
)

// Handler serves print fragments for invoices and waybills.
type Handler struct {
	logger   *slog.Logger
	renderer *Renderer
	invoices *invoices.Service
	waybills *waybills.Service
	rbac     rbac.Middleware
}

func NewHandler(logger *slog.Logger, renderer *Renderer, inv *invoices.Service, wb *waybills.Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, renderer: renderer, invoices: inv, waybills: wb, rbac: rbac}
}

// MountRoutes registers printout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(rbac.RoleSales))
		r.Get("/invoices/{id}", h.invoice)
		r.Get("/waybills/{id}", h.waybill)
	})
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	fragment, err := h.renderer.RenderInvoice(inv)
	if err != nil {
		h.logger.Error("render invoice printout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(fragment)
}

func (h *Handler) waybill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid waybill id")
		return
	}
	wb, err := h.waybills.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	fragment, err := h.renderer.RenderWaybill(wb)
	if err != nil {
		h.logger.Error("render waybill printout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(fragment)
}
