package analytics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

const defaultWindowDays = 7

// Handler serves the sales dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.SalesOverview)
}

func (h *Handler) SalesOverview(w http.ResponseWriter, r *http.Request) {
	days := parseDays(r.URL.Query().Get("days"), defaultWindowDays)
	overview, err := h.service.SalesOverview(r.Context(), days)
	if err != nil {
		h.logger.Error("sales overview failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}
