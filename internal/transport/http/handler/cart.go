package handler

import (
	"github.com/gin-gonic/gin"

	"shopsync/internal/domain"
	syncsvc "shopsync/internal/sync"
)

type Cart struct {
	cart *syncsvc.Cart
}

func NewCart(cart *syncsvc.Cart) *Cart {
	return &Cart{cart: cart}
}

type cartView struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func (h *Cart) List(c *gin.Context) {
	items, err := h.cart.Items(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cartView{Items: items, Total: syncsvc.Total(items), Count: syncsvc.Count(items)})
}

type addItemReq struct {
	ProductID    string  `json:"productId" binding:"required"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	ProductImage string  `json:"productImage"`
	SelectedSize string  `json:"selectedSize" binding:"required"`
	Quantity     int     `json:"quantity"`
}

func (h *Cart) Add(c *gin.Context) {
	var in addItemReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "productId and selectedSize are required")
		return
	}
	item := &domain.CartItem{
		UserID:       currentUserID(c),
		ProductID:    in.ProductID,
		ProductName:  in.ProductName,
		ProductPrice: in.ProductPrice,
		ProductImage: in.ProductImage,
		SelectedSize: in.SelectedSize,
		Quantity:     in.Quantity,
	}
	out, err := h.cart.Add(c.Request.Context(), item)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type setQtyReq struct {
	Quantity int `json:"quantity"`
}

func (h *Cart) SetQuantity(c *gin.Context) {
	var in setQtyReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	k := domain.CartKey{
		UserID:    currentUserID(c),
		ProductID: c.Param("productId"),
		Size:      c.Param("size"),
	}
	out, err := h.cart.SetQuantity(c.Request.Context(), k, in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	// A zero quantity removed the row; the envelope carries no item then.
	if out == nil {
		ok(c, gin.H{"removed": true})
		return
	}
	ok(c, out)
}

func (h *Cart) Remove(c *gin.Context) {
	k := domain.CartKey{
		UserID:    currentUserID(c),
		ProductID: c.Param("productId"),
		Size:      c.Param("size"),
	}
	if err := h.cart.Remove(c.Request.Context(), k); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"removed": true})
}

func (h *Cart) Clear(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"cleared": true})
}
