package handler

import (
	"github.com/gin-gonic/gin"

	"shopsync/internal/domain"
	syncsvc "shopsync/internal/sync"
)

type Orders struct {
	orders *syncsvc.Orders
}

func NewOrders(orders *syncsvc.Orders) *Orders {
	return &Orders{orders: orders}
}

func (h *Orders) History(c *gin.Context) {
	os, err := h.orders.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, os)
}

func (h *Orders) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	// Users only see their own orders; admins go through the admin routes.
	if o.UserID != currentUserID(c) {
		fail(c, domain.ErrNotFound)
		return
	}
	ok(c, o)
}

type checkoutReq struct {
	ShippingAddress string `json:"shippingAddress" binding:"required"`
	Notes           string `json:"notes"`
}

func (h *Orders) Checkout(c *gin.Context) {
	var in checkoutReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "shippingAddress is required")
		return
	}
	o, err := h.orders.Checkout(c.Request.Context(), currentUserID(c), in.ShippingAddress, in.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, o)
}

func (h *Orders) Cancel(c *gin.Context) {
	o, err := h.orders.Cancel(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, o)
}
