package handler

import (
	"net/http"

	"github.com/teamfit/storefront/internal/domain/category"
)

type categoryResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ParentID     *int64 `json:"parentId,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

func toCategoryResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		ParentID:     c.ParentID,
		DisplayOrder: c.DisplayOrder,
	}
}

func toCategoryResponses(cats []category.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cats))
	for i := range cats {
		out = append(out, toCategoryResponse(&cats[i]))
	}
	return out
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponses(cats))
}

func (h *Handler) listParentCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListParents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponses(cats))
}

func (h *Handler) listChildCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid category id")
		return
	}

	cats, err := h.categories.ListChildren(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponses(cats))
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid category id")
		return
	}

	c, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}
