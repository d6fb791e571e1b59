package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopsync/internal/domain"
)

func product(name, desc, category string, active bool) domain.Product {
	return domain.Product{
		ID: name, Name: name, Description: desc, Category: category,
		Active: active, Sizes: []string{"M"},
	}
}

func TestMatchesInactiveNeverShown(t *testing.T) {
	p := product("Hoodie", "", "Hoodies", false)
	assert.False(t, Matches(&p, domain.ProductFilter{}))
}

func TestMatchesCategory(t *testing.T) {
	p := product("Hoodie", "", "Hoodies", true)
	assert.True(t, Matches(&p, domain.ProductFilter{Category: "Hoodies"}))
	assert.False(t, Matches(&p, domain.ProductFilter{Category: "Jeans"}))
	assert.True(t, Matches(&p, domain.ProductFilter{}))
}

func TestMatchesTextIsCaseInsensitiveOverNameAndDescription(t *testing.T) {
	p := product("Classic White Tee", "heavyweight cotton", "T-Shirts", true)
	assert.True(t, Matches(&p, domain.ProductFilter{Query: "white"}))
	assert.True(t, Matches(&p, domain.ProductFilter{Query: "COTTON"}))
	assert.False(t, Matches(&p, domain.ProductFilter{Query: "denim"}))
	// Surrounding whitespace is not significant.
	assert.True(t, Matches(&p, domain.ProductFilter{Query: "  tee  "}))
}

func TestMatchesCategoryAndTextCombineWithAnd(t *testing.T) {
	p := product("Slim Fit Jeans", "stretch denim", "Jeans", true)
	assert.True(t, Matches(&p, domain.ProductFilter{Category: "Jeans", Query: "denim"}))
	assert.False(t, Matches(&p, domain.ProductFilter{Category: "Jeans", Query: "cotton"}))
	assert.False(t, Matches(&p, domain.ProductFilter{Category: "Coats", Query: "denim"}))
}

func TestFilter(t *testing.T) {
	ps := []domain.Product{
		product("Classic White Tee", "", "T-Shirts", true),
		product("Slim Fit Jeans", "", "Jeans", true),
		product("Retired Tee", "", "T-Shirts", false),
	}
	out := Filter(ps, domain.ProductFilter{Query: "tee"})
	assert.Len(t, out, 1)
	assert.Equal(t, "Classic White Tee", out[0].Name)

	assert.Len(t, Filter(ps, domain.ProductFilter{}), 2)
	assert.Empty(t, Filter(nil, domain.ProductFilter{}))
}
