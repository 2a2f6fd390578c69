package pos

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/shared"
)

// Handler serves the POS sale endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) StartSale(w http.ResponseWriter, r *http.Request) {
	// An empty body is fine here; customer and terminal are optional.
	var req StartSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	sale, err := h.service.StartSale(r.Context(), shared.IdentityFromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"sale": sale})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	item, sale, err := h.service.AddItem(r.Context(), shared.IdentityFromContext(r.Context()), saleID, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"item": item, "sale": sale})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "itemID must be an integer")
		return
	}

	sale, err := h.service.RemoveItem(r.Context(), shared.IdentityFromContext(r.Context()), saleID, itemID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (h *Handler) CompleteSale(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}

	var req CompleteSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.CompleteSale(r.Context(), shared.IdentityFromContext(r.Context()), saleID, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.saleID(w, r)
	if !ok {
		return
	}

	sale, err := h.service.GetSale(r.Context(), saleID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) saleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "saleID must be an integer")
		return 0, false
	}
	return id, true
}

// respondError maps engine errors onto the taxonomy: 404 for missing
// entities, 400 for state and business-rule violations, 500 otherwise. The
// detail always names the specific rule so terminals can react distinctly.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSaleNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrItemNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyCompleted):
		httpx.Problem(w, http.StatusBadRequest, "Already Completed", err.Error())
	case errors.Is(err, ErrSaleNotPending):
		httpx.Problem(w, http.StatusBadRequest, "Invalid State", err.Error())
	case errors.Is(err, ErrNoItems):
		httpx.Problem(w, http.StatusBadRequest, "No Items", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusBadRequest, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrInsufficientPayment):
		httpx.Problem(w, http.StatusBadRequest, "Insufficient Payment", err.Error())
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidDiscount),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidMethod):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("pos operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
