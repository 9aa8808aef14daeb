package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/paymongo"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/service"
)

type CheckoutHandler struct {
	svc     service.CheckoutService
	timeout time.Duration
}

func NewCheckoutHandler(svc service.CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, timeout: timeout}
}

func NewRouter(h *CheckoutHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(h.timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/v1/checkout", h.Checkout)
	r.Post("/api/v1/checkout/{order_id}/retry-payment", h.RetryPayment)
	r.Get("/payment/return", h.PaymentReturn)

	return r
}

type checkoutRequestDTO struct {
	CustomerID      string            `json:"customer_id"`
	Items           []domain.CartItem `json:"items"`
	DeliveryAddress string            `json:"delivery_address,omitempty"`
	Pickup          bool              `json:"pickup,omitempty"`
	PaymentMethod   string            `json:"payment_method"`
	PointsToRedeem  int               `json:"points_to_redeem"`
	Instructions    string            `json:"special_instructions,omitempty"`
	BillingName     string            `json:"billing_name,omitempty"`
	BillingEmail    string            `json:"billing_email,omitempty"`
}

type checkoutResponseDTO struct {
	OrderID        string  `json:"order_id"`
	BackendOrderID string  `json:"backend_order_id,omitempty"`
	Status         string  `json:"status"`
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	Total          float64 `json:"total"`
	PointsRedeemed int     `json:"points_redeemed"`
	PointsEarned   int     `json:"points_earned"`
	CheckoutURL    string  `json:"checkout_url,omitempty"`
	PendingSync    bool    `json:"pending_sync,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var dto checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}

	result, err := h.svc.Checkout(ctx, &service.CheckoutRequest{
		Draft: &domain.OrderDraft{
			CustomerID:      dto.CustomerID,
			Items:           dto.Items,
			DeliveryAddress: dto.DeliveryAddress,
			Pickup:          dto.Pickup,
			PaymentMethod:   domain.PaymentMethod(dto.PaymentMethod),
			PointsToRedeem:  dto.PointsToRedeem,
			Instructions:    dto.Instructions,
		},
		Billing: paymongo.Billing{Name: dto.BillingName, Email: dto.BillingEmail},
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertResult(result))
}

type retryPaymentRequestDTO struct {
	BillingName  string `json:"billing_name,omitempty"`
	BillingEmail string `json:"billing_email,omitempty"`
}

// POST /api/v1/checkout/{order_id}/retry-payment
//
// Re-initiates payment for an order whose previous attempt failed. The
// stored draft and its discount are reused; only the payment stage runs
// again.
func (h *CheckoutHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	var dto retryPaymentRequestDTO
	if r.Body != nil {
		// The billing body is optional; an empty or absent body is fine.
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	result, err := h.svc.RetryPayment(ctx, orderID, paymongo.Billing{Name: dto.BillingName, Email: dto.BillingEmail})
	if err != nil {
		if errors.Is(err, service.ErrNotRetryable) {
			respondError(w, http.StatusConflict, "not_retryable", err.Error())
			return
		}
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertResult(result))
}

// GET /payment/return?order=&payment=
//
// The gateway redirects the customer here after the hosted checkout.
// The payment query parameter is advertising, not evidence: the service
// polls the gateway for the real outcome regardless of what it says.
func (h *CheckoutHandler) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := r.URL.Query().Get("order")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order", "order query parameter is required")
		return
	}

	result, err := h.svc.CompletePayment(ctx, orderID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertResult(result))
}

func convertResult(result *service.CheckoutResult) checkoutResponseDTO {
	dto := checkoutResponseDTO{
		OrderID:        result.LocalOrderID,
		BackendOrderID: result.BackendOrderID,
		Status:         result.Status.String(),
		Subtotal:       result.Subtotal,
		Discount:       result.Discount,
		Total:          result.Total,
		PointsRedeemed: result.PointsRedeemed,
		PointsEarned:   result.PointsEarned,
		PendingSync:    result.PendingSync,
	}
	if result.Source != nil {
		dto.CheckoutURL = result.Source.CheckoutURL
	}
	return dto
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUnknownOrder) {
		respondError(w, http.StatusNotFound, "unknown_order", err.Error())
		return
	}

	var stageErr *service.StageError
	if errors.As(err, &stageErr) {
		status := statusForKind(httpx.KindOf(err))
		if stageErr.Stage == service.StageValidate {
			status = http.StatusBadRequest
		}
		if len(stageErr.Unavailable) > 0 {
			status = http.StatusConflict
		}
		respondJSON(w, status, map[string]any{
			"error":             string(stageErr.Stage),
			"message":           stageErr.Error(),
			"unavailable_items": stageErr.Unavailable,
			"points_moved":      stageErr.PointsMoved,
			"money_moved":       stageErr.MoneyMoved,
		})
		return
	}

	respondError(w, http.StatusInternalServerError, "internal", err.Error())
}

func statusForKind(kind httpx.Kind) int {
	switch kind {
	case httpx.KindValidation:
		return http.StatusBadRequest
	case httpx.KindAvailability:
		return http.StatusConflict
	case httpx.KindGateway:
		return http.StatusBadGateway
	case httpx.KindTransient, httpx.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}
