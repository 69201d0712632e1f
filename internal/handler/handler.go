// Package handler maps HTTP routes onto the domain services. Every
// persistence entity has an explicit conversion function to its wire
// representation; nothing is mapped by reflection.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamfit/storefront/internal/domain/auth"
	"github.com/teamfit/storefront/internal/domain/cart"
	"github.com/teamfit/storefront/internal/domain/category"
	"github.com/teamfit/storefront/internal/domain/coupon"
	"github.com/teamfit/storefront/internal/domain/member"
	"github.com/teamfit/storefront/internal/domain/order"
	"github.com/teamfit/storefront/internal/domain/product"
)

// Handler holds the domain dependencies behind the HTTP API.
type Handler struct {
	tokens     *auth.Tokens
	members    member.Repository
	catalog    *product.Service
	categories category.Repository
	carts      *cart.Service
	coupons    *coupon.Service
	orders     *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	tokens *auth.Tokens,
	members member.Repository,
	catalog *product.Service,
	categories category.Repository,
	carts *cart.Service,
	coupons *coupon.Service,
	orders *order.Service,
) *Handler {
	return &Handler{
		tokens:     tokens,
		members:    members,
		catalog:    catalog,
		categories: categories,
		carts:      carts,
		coupons:    coupons,
		orders:     orders,
	}
}

// Routes registers every API route on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh", h.refresh)

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Get("/categories", h.listCategories)
	r.Get("/categories/parents", h.listParentCategories)
	r.Get("/categories/{id}/children", h.listChildCategories)
	r.Get("/categories/{id}", h.getCategory)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/members/me", h.me)

		r.Get("/carts", h.listCarts)
		r.Get("/carts/products", h.listCartProducts)
		r.Post("/carts", h.addCart)
		r.Put("/carts", h.updateCart)
		r.Delete("/carts/{productId}", h.removeCart)
		r.Delete("/carts", h.clearCart)

		r.Get("/coupons", h.listCoupons)

		r.Post("/orders", h.createOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}", h.updateOrder)
		r.Delete("/orders/{id}", h.cancelOrder)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
