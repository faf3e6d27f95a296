package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/velora-shop/storefront-api/internal/domain/order"
	"github.com/velora-shop/storefront-api/internal/domain/payment"
	"github.com/velora-shop/storefront-api/internal/gateway"
)

type createGatewayOrderRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
	OrderID          *int64 `json:"order_id"`
}

// createGatewayOrder handles POST /api/payment/create-order: registers an
// order with the payment gateway and writes a best-effort transaction audit
// record.
func (h *Handler) createGatewayOrder(c *gin.Context) {
	var req createGatewayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "Amount must be greater than 0")
		return
	}

	ctx := c.Request.Context()
	gwOrder, err := h.gateway.CreateOrder(ctx, req.Amount, req.Currency, req.Receipt)
	if err != nil {
		respondInternal(c, errors.Wrap(err, "create gateway order"))
		return
	}

	// The audit record must not fail the payment flow.
	raw, _ := json.Marshal(gwOrder)
	txn := &payment.Transaction{
		Gateway:         gateway.Name,
		GatewayOrderID:  gwOrder.ID,
		Amount:          req.Amount,
		Currency:        gwOrder.Currency,
		Status:          "created",
		GatewayResponse: raw,
	}
	if err := h.transactions.Create(ctx, txn); err != nil {
		zctx.From(ctx).Warn("transaction audit write failed",
			zap.String("gateway_order_id", gwOrder.ID),
			zap.Error(err),
		)
	}

	respond(c, http.StatusOK, "Gateway order created", gwOrder)
}

// verifyPayment handles POST /api/payment/verify-payment: authenticates the
// gateway callback signature and, when the caller names a local order,
// reconciles its payment status.
func (h *Handler) verifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.verifier.Verify(req.GatewayOrderID, req.GatewayPaymentID, req.Signature); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid signature sent!")
		return
	}

	if req.OrderID != nil {
		err := h.orders.MarkPaid(c.Request.Context(), *req.OrderID, req.GatewayPaymentID)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				respondError(c, http.StatusNotFound, "Order not found")
				return
			}
			respondInternal(c, err)
			return
		}
	}

	respond(c, http.StatusOK, "Payment verified successfully", nil)
}
