package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-api/internal/domain/order"
	"github.com/velora-shop/storefront-api/internal/domain/product"
)

type orderItemRequest struct {
	ProductID int64           `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

type placeOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	ShippingAddress order.Address      `json:"shipping_address" binding:"required"`
	BillingAddress  *order.Address     `json:"billing_address"`
	CustomerEmail   string             `json:"customer_email" binding:"omitempty,email"`
	PaymentMethod   string             `json:"payment_method" binding:"required"`
	TransactionID   string             `json:"transaction_id"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	DeliveryFee     decimal.Decimal    `json:"delivery_fee"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	CouponID        *int64             `json:"coupon_id"`
	CouponCode      string             `json:"coupon_code"`
	Notes           string             `json:"notes"`
}

type updateStatusRequest struct {
	OrderStatus string `json:"order_status" binding:"required"`
}

// placeOrder handles POST /api/orders. The purchaser comes from the bearer
// identity; customer_email is a guest fallback.
func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]order.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Total,
		}
	}

	var userID int64
	if id := identityFrom(c); id != nil {
		userID = id.UserID
	}

	o, err := h.orders.PlaceOrder(c.Request.Context(), order.PlaceOrderRequest{
		UserID:          userID,
		CustomerEmail:   req.CustomerEmail,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		TransactionID:   req.TransactionID,
		Subtotal:        req.Subtotal,
		DeliveryFee:     req.DeliveryFee,
		TaxAmount:       req.TaxAmount,
		DiscountAmount:  req.DiscountAmount,
		TotalAmount:     req.TotalAmount,
		CouponID:        req.CouponID,
		CouponCode:      req.CouponCode,
		Notes:           req.Notes,
	})
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Order placed successfully", o)
}

// getOrder handles GET /api/orders/:id.
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order found successfully", o)
}

// listOrders handles GET /api/orders with an optional ?status= filter.
func (h *Handler) listOrders(c *gin.Context) {
	status := order.Status(c.Query("status"))
	if status != "" && !order.ValidStatus(status) {
		respondError(c, http.StatusBadRequest, "Unknown order status")
		return
	}

	orders, total, err := h.orders.List(c.Request.Context(), status)
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondList(c, "Orders fetched successfully", orders, total)
}

// listUserOrders handles GET /api/users/:userId/orders.
func (h *Handler) listUserOrders(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondInternal(c, err)
		return
	}
	respond(c, http.StatusOK, "User orders fetched successfully", orders)
}

// updateOrderStatus handles PUT /api/orders/:id/status. Transitions are
// checked against the order lifecycle; repeating the current status is a
// successful no-op.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), id, order.Status(req.OrderStatus))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated successfully", o)
}

// respondOrderError maps order workflow errors to envelope responses.
func (h *Handler) respondOrderError(c *gin.Context, err error) {
	var (
		iqErr  *order.InvalidQuantityError
		pnfErr *product.NotFoundError
		itErr  *order.InvalidTransitionError
	)

	switch {
	case errors.Is(err, order.ErrEmptyItems):
		respondError(c, http.StatusBadRequest, "No items in order")
	case errors.As(err, &iqErr):
		respondError(c, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &pnfErr):
		respondError(c, http.StatusNotFound, pnfErr.Error())
	case errors.Is(err, order.ErrNotFound):
		respondError(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrDuplicateNumber):
		respondError(c, http.StatusConflict, "Duplicate order number")
	case errors.As(err, &itErr):
		respondError(c, http.StatusConflict, itErr.Error())
	default:
		respondInternal(c, err)
	}
}

// pathID parses an int64 path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
