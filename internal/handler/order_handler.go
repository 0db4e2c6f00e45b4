package handler

import (
	"encoding/json"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Routes registers the order routes on the given router.
func (h *OrderHandler) Routes(r chi.Router) {
	r.Post("/api/orders/users/{userID}", h.Create)
	r.Get("/api/orders/users/{userID}", h.ListByUser)
	r.Get("/api/orders/{orderID}", h.GetByID)
	r.Patch("/api/orders/{orderID}/status", h.SetStatus)
	r.Post("/api/orders/{orderID}/cancel", h.Cancel)
	r.Delete("/api/orders/{orderID}/items/{itemID}", h.RemoveItem)
	r.Patch("/api/orders/{orderID}/items/{itemID}", h.ChangeItemQuantity)
}

type createOrderRequest struct {
	AddressID uuid.UUID `json:"address_id"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

// Create handles POST /api/orders/users/{userID}.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID", h.logger)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.AddressID == uuid.Nil {
		writeError(w, http.StatusUnprocessableEntity, "address_id is required", h.logger)
		return
	}

	detail, err := h.service.CreateOrder(r.Context(), userID, req.AddressID)
	middleware.RecordOrderOperation("create", err == nil)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, detail)
}

// GetByID handles GET /api/orders/{orderID}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID", h.logger)
	if !ok {
		return
	}

	detail, err := h.service.GetByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// ListByUser handles GET /api/orders/users/{userID}.
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID", h.logger)
	if !ok {
		return
	}

	details, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// SetStatus handles PATCH /api/orders/{orderID}/status.
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID", h.logger)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	detail, err := h.service.SetStatus(r.Context(), orderID, status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// Cancel handles POST /api/orders/{orderID}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID", h.logger)
	if !ok {
		return
	}

	detail, err := h.service.Cancel(r.Context(), orderID)
	middleware.RecordOrderOperation("cancel", err == nil)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// RemoveItem handles DELETE /api/orders/{orderID}/items/{itemID}.
func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID", h.logger)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	detail, err := h.service.RemoveItem(r.Context(), orderID, itemID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// ChangeItemQuantity handles PATCH /api/orders/{orderID}/items/{itemID}.
func (h *OrderHandler) ChangeItemQuantity(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID", h.logger)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	detail, err := h.service.ChangeItemQuantity(r.Context(), orderID, itemID, req.Delta)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// pathUUID parses a uuid path parameter, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, param string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+param+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}
