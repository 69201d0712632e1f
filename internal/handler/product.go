package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teamfit/storefront/internal/domain/product"
)

type productResponse struct {
	ID           int64   `json:"id"`
	CategoryID   int64   `json:"categoryId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Info         string  `json:"info,omitempty"`
	Stock        int     `json:"stock"`
	Manufacturer string  `json:"manufacturer,omitempty"`
}

type productPageResponse struct {
	Items      []productResponse `json:"items"`
	TotalPages int               `json:"totalPages"`
	TotalItems int64             `json:"totalItems"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		CategoryID:   p.CategoryID,
		Name:         p.Name,
		Price:        p.Price.InexactFloat64(),
		Info:         p.Info,
		Stock:        p.Stock,
		Manufacturer: p.Manufacturer,
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// listProducts serves the paged catalog listing with optional keyword
// search, category scoping and sorting.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := product.ListParams{
		Page:      queryInt(r, "page"),
		Size:      queryInt(r, "size"),
		SortField: q.Get("sort"),
		SortDir:   product.SortDir(q.Get("dir")),
		Keyword:   q.Get("keyword"),
	}
	if categoryID, err := strconv.ParseInt(q.Get("categoryId"), 10, 64); err == nil {
		params.CategoryID = categoryID
	}

	page, err := h.catalog.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := productPageResponse{
		Items:      make([]productResponse, 0, len(page.Items)),
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
	}
	for i := range page.Items {
		resp.Items = append(resp.Items, toProductResponse(&page.Items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid product id")
		return
	}

	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}
