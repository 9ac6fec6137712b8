package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/goldvault/investor-dashboard/backend/internal/core/ports"
	"github.com/goldvault/investor-dashboard/backend/internal/entities"
	"github.com/goldvault/investor-dashboard/backend/internal/usecases"
)

var (
	_ OrderService    = (*usecases.OrderService)(nil)
	_ HoldingsService = (*usecases.HoldingsService)(nil)
	_ PriceService    = (*usecases.PriceService)(nil)
)

type HTTPHandler struct {
	logger          *slog.Logger
	orderService    OrderService
	holdingsService HoldingsService
	priceService    PriceService

	production bool
}

func NewHTTPHandler(logger *slog.Logger, orderService OrderService, holdingsService HoldingsService, priceService PriceService, production bool) *HTTPHandler {
	return &HTTPHandler{
		logger:          logger,
		orderService:    orderService,
		holdingsService: holdingsService,
		priceService:    priceService,
		production:      production,
	}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router, auth *AuthMiddleware) {
	router.HandleFunc("/health", h.Health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware)

	// Orders
	api.HandleFunc("/orders", h.ListOrders).Methods("GET")
	api.HandleFunc("/orders", h.CreateOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}/cancel", h.CancelOrder).Methods("PATCH")

	// Holdings
	api.HandleFunc("/holdings", h.GetHoldings).Methods("GET")
}

func (h *HTTPHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Missing credential")
		return
	}

	limit := ports.DefaultOrdersLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 || parsed > ports.MaxOrdersLimit {
			writeJSONError(w, http.StatusBadRequest, "limit must be an integer between 1 and 200")
			return
		}
		limit = parsed
	}

	orders, err := h.orderService.ListOrders(r.Context(), claims.InvestorID(), limit)
	if err != nil {
		writeServiceError(h.logger, w, r, err, h.production)
		return
	}

	if orders == nil {
		orders = []entities.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Missing credential")
		return
	}

	id := mux.Vars(r)["id"]
	if uuid.Validate(id) != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id, claims.InvestorID())
	if err != nil {
		writeServiceError(h.logger, w, r, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Missing credential")
		return
	}

	var input entities.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The live gold price is the execution price for market orders.
	price, err := h.priceService.CurrentPricePerGram(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err, h.production)
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), claims.InvestorID(), input, price)
	if err != nil {
		writeServiceError(h.logger, w, r, err, h.production)
		return
	}

	h.logger.Info("order accepted", "order_id", order.ID, "investor_id", claims.InvestorID(), "status", order.Status)

	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Missing credential")
		return
	}

	id := mux.Vars(r)["id"]
	if uuid.Validate(id) != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := h.orderService.CancelOrder(r.Context(), id, claims.InvestorID())
	if err != nil {
		writeServiceError(h.logger, w, r, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Missing credential")
		return
	}

	holdings, err := h.holdingsService.GetHoldings(r.Context(), claims.InvestorID())
	if err != nil {
		writeServiceError(h.logger, w, r, err, h.production)
		return
	}

	writeJSON(w, http.StatusOK, holdings)
}
