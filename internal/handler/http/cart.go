package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/cart"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/httputil"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/middleware"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. Every route expects
// middleware.RequireUser to have run.
type CartHandler struct {
	service *cart.Service
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *cart.Service, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cart.NewView(c))
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cart.AddItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	c, err := h.service.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cart.NewView(c))
}

// UpdateItemQuantity handles PUT /api/cart/items/{productId}/{size}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req cart.UpdateQuantityInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	c, err := h.service.UpdateQuantity(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "productId"),
		chi.URLParam(r, "size"),
		req.Quantity,
	)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cart.NewView(c))
}

// RemoveItem handles DELETE /api/cart/items/{productId}/{size}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.RemoveItem(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "productId"),
		chi.URLParam(r, "size"),
	)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cart.NewView(c))
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, r, err)
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}
