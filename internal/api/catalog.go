package api

import (
	"context"
	"net/http"
	"strings"
)

// ProductQuery filters the product listing.
type ProductQuery struct {
	PageQuery
	Category string
	Keyword  string
}

// Products lists products.
func (g *Gateway) Products(ctx context.Context, q ProductQuery) Result[[]Product] {
	query := pageQuery(q.PageQuery)
	if c := strings.TrimSpace(q.Category); c != "" {
		query.Set("category", c)
	}
	if k := strings.TrimSpace(q.Keyword); k != "" {
		query.Set("keyword", k)
	}
	return invoke[[]Product](ctx, g, request{
		op:       "products",
		method:   http.MethodGet,
		path:     "/products",
		query:    query,
		pluck:    []string{"products", "items"},
		fallback: "Could not load products.",
	})
}

// Product fetches one product.
func (g *Gateway) Product(ctx context.Context, id string) Result[Product] {
	return invoke[Product](ctx, g, request{
		op:       "product",
		method:   http.MethodGet,
		path:     "/products/" + escape(id),
		pluck:    []string{"product"},
		fallback: "Could not load the product.",
	})
}

// TopProducts lists the best-rated products.
func (g *Gateway) TopProducts(ctx context.Context) Result[[]Product] {
	return invoke[[]Product](ctx, g, request{
		op:       "top_products",
		method:   http.MethodGet,
		path:     "/products/top",
		pluck:    []string{"products"},
		fallback: "Could not load top products.",
	})
}
