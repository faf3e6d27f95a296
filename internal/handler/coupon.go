package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-api/internal/domain/coupon"
)

type validateCouponRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// validateCoupon handles POST /api/coupons/validate: a read-only discount
// quote. Nothing is consumed; used_count does not move.
func (h *Handler) validateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := h.coupons.Validate(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		switch {
		case errors.Is(err, coupon.ErrInvalidCoupon):
			respondError(c, http.StatusBadRequest, "Invalid coupon code")
		case errors.Is(err, coupon.ErrCouponExpired):
			respondError(c, http.StatusBadRequest, "Coupon expired")
		case errors.Is(err, coupon.ErrUsageLimitReached):
			respondError(c, http.StatusBadRequest, "Coupon usage limit reached")
		case errors.Is(err, coupon.ErrMinOrderNotMet):
			respondError(c, http.StatusBadRequest, "Minimum order amount not met")
		default:
			respondInternal(c, err)
		}
		return
	}

	respond(c, http.StatusOK, "Coupon is valid", gin.H{
		"coupon_id":       d.CouponID,
		"code":            d.Code,
		"discount_amount": d.Amount,
	})
}
