package pos

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the POS sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sale/start", h.StartSale)
	r.Get("/sale/{saleID}", h.GetSale)
	r.Post("/sale/{saleID}/items", h.AddItem)
	r.Delete("/sale/{saleID}/items/{itemID}", h.RemoveItem)
	r.Post("/sale/{saleID}/complete", h.CompleteSale)
}
