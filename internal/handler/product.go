package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"github.com/velora-shop/storefront-api/internal/domain/product"
)

type updateStockRequest struct {
	Quantity int    `json:"quantity" binding:"min=0"`
	Action   string `json:"action" binding:"omitempty,oneof=set add subtract"`
}

// updateProductStock handles PATCH /api/products/:id/stock. The action is
// set, add, or subtract; subtraction never goes below zero. Stock moves only
// through this operation, never as a side effect of order placement.
func (h *Handler) updateProductStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Action == "" {
		req.Action = string(product.StockSet)
	}

	ctx := c.Request.Context()
	p, err := h.products.GetByID(ctx, id)
	if err != nil {
		h.respondProductError(c, err)
		return
	}

	newStock := product.ApplyStock(p.Stock, req.Quantity, product.StockAction(req.Action))
	if err := h.products.SetStock(ctx, id, newStock); err != nil {
		h.respondProductError(c, err)
		return
	}

	respond(c, http.StatusOK, "Product stock updated successfully", gin.H{"stock": newStock})
}

func (h *Handler) respondProductError(c *gin.Context, err error) {
	var nfErr *product.NotFoundError
	if errors.As(err, &nfErr) {
		respondError(c, http.StatusNotFound, "Product not found")
		return
	}
	respondInternal(c, err)
}
