package handler

import (
	"github.com/gin-gonic/gin"

	"shopsync/internal/domain"
	syncsvc "shopsync/internal/sync"
)

// Admin bundles the management surface: catalog CRUD, the external feed
// import, and order fulfilment.
type Admin struct {
	products *syncsvc.Products
	orders   *syncsvc.Orders
}

func NewAdmin(products *syncsvc.Products, orders *syncsvc.Orders) *Admin {
	return &Admin{products: products, orders: orders}
}

func (h *Admin) CreateProduct(c *gin.Context) {
	var in domain.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	p, err := h.products.Create(c.Request.Context(), &in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

func (h *Admin) UpdateProduct(c *gin.Context) {
	var in domain.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	in.ID = c.Param("id")
	p, err := h.products.Update(c.Request.Context(), &in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

func (h *Admin) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}

func (h *Admin) ImportProducts(c *gin.Context) {
	n, err := h.products.ImportExternal(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"imported": n})
}

func (h *Admin) ListOrders(c *gin.Context) {
	os, err := h.orders.History(c.Request.Context(), "")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, os)
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *Admin) UpdateOrderStatus(c *gin.Context) {
	var in statusReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "status is required")
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(in.Status))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, o)
}

func (h *Admin) DeleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}
