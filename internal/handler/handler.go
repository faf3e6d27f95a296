// Package handler exposes the order, payment, stock, coupon, and dashboard
// operations as a JSON REST API.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/velora-shop/storefront-api/internal/domain/coupon"
	"github.com/velora-shop/storefront-api/internal/domain/order"
	"github.com/velora-shop/storefront-api/internal/domain/payment"
	"github.com/velora-shop/storefront-api/internal/domain/product"
	"github.com/velora-shop/storefront-api/internal/domain/report"
)

// Handler holds the domain dependencies behind the HTTP surface.
type Handler struct {
	orders       *order.Service
	products     product.Repository
	coupons      coupon.Validator
	reports      *report.Service
	verifier     *payment.Verifier
	gateway      payment.Gateway
	transactions payment.TransactionRepository
	tokens       TokenVerifier
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	products product.Repository,
	coupons coupon.Validator,
	reports *report.Service,
	verifier *payment.Verifier,
	gw payment.Gateway,
	transactions payment.TransactionRepository,
	tokens TokenVerifier,
) *Handler {
	return &Handler{
		orders:       orders,
		products:     products,
		coupons:      coupons,
		reports:      reports,
		verifier:     verifier,
		gateway:      gw,
		transactions: transactions,
		tokens:       tokens,
	}
}

// Router builds the gin engine with all routes registered under /api.
// Recovery, CORS, rate limiting, and logging are handled by the outer
// net/http middleware stack, so the engine itself stays bare.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	api := r.Group("/api")

	authed := api.Group("", AuthRequired(h.tokens))
	{
		authed.POST("/orders", h.placeOrder)
		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.PUT("/orders/:id/status", h.updateOrderStatus)
		authed.GET("/users/:userId/orders", h.listUserOrders)
		authed.PATCH("/products/:id/stock", h.updateProductStock)
		authed.POST("/coupons/validate", h.validateCoupon)
		authed.GET("/dashboard/stats", h.dashboardStats)
	}

	pay := api.Group("/payment")
	{
		pay.POST("/create-order", h.createGatewayOrder)
		pay.POST("/verify-payment", h.verifyPayment)
	}

	return r
}
