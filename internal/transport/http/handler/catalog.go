package handler

import (
	"github.com/gin-gonic/gin"

	"shopsync/internal/domain"
	"shopsync/internal/query"
	syncsvc "shopsync/internal/sync"
)

// Catalog serves product reads: each list refreshes best-effort from the
// remote and then answers from local rows through the query layer.
type Catalog struct {
	products *syncsvc.Products
	facade   *query.Catalog
}

func NewCatalog(products *syncsvc.Products, facade *query.Catalog) *Catalog {
	return &Catalog{products: products, facade: facade}
}

func (h *Catalog) List(c *gin.Context) {
	category := c.Query("category")
	text := c.Query("q")

	ps, err := h.products.Refresh(c.Request.Context(), category)
	if err != nil {
		fail(c, err)
		return
	}
	ps = query.Filter(ps, domain.ProductFilter{Category: category, Query: text, ActiveOnly: true})
	ok(c, ps)
}

func (h *Catalog) Get(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

func (h *Catalog) Categories(c *gin.Context) {
	cats, err := h.facade.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cats)
}
