package handler

import (
	"net/http"

	"github.com/teamfit/storefront/internal/domain/cart"
)

type cartResponse struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type cartProductResponse struct {
	CartID       int64   `json:"cartId"`
	ProductID    int64   `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	Stock        int     `json:"stock"`
	Quantity     int     `json:"quantity"`
}

type cartWriteRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	return cartResponse{ID: c.ID, ProductID: c.ProductID, Quantity: c.Quantity}
}

func toCartProductResponse(l *cart.ProductLine) cartProductResponse {
	return cartProductResponse{
		CartID:       l.CartID,
		ProductID:    l.ProductID,
		ProductName:  l.ProductName,
		ProductPrice: l.ProductPrice.InexactFloat64(),
		Stock:        l.Stock,
		Quantity:     l.Quantity,
	}
}

func (h *Handler) listCarts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.carts.List(r.Context(), memberID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]cartResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, toCartResponse(&rows[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listCartProducts(w http.ResponseWriter, r *http.Request) {
	lines, err := h.carts.ListWithProduct(r.Context(), memberID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]cartProductResponse, 0, len(lines))
	for i := range lines {
		resp = append(resp, toCartProductResponse(&lines[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addCart(w http.ResponseWriter, r *http.Request) {
	var req cartWriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.ProductID <= 0 {
		writeBadRequest(w, "productId is required")
		return
	}

	if err := h.carts.Add(r.Context(), memberID(r), req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) updateCart(w http.ResponseWriter, r *http.Request) {
	var req cartWriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.ProductID <= 0 {
		writeBadRequest(w, "productId is required")
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), memberID(r), req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productId")
	if !ok {
		writeBadRequest(w, "invalid product id")
		return
	}

	if err := h.carts.Remove(r.Context(), memberID(r), productID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), memberID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
