package handler

import (
	"net/http"
	"time"

	"github.com/teamfit/storefront/internal/domain/coupon"
)

type couponResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCouponResponse(g *coupon.Grant) couponResponse {
	return couponResponse{
		ID:        g.ID,
		Name:      g.Name,
		Used:      g.Used,
		CreatedAt: g.CreatedAt,
	}
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	grants, err := h.coupons.ListForMember(r.Context(), memberID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]couponResponse, 0, len(grants))
	for i := range grants {
		resp = append(resp, toCouponResponse(&grants[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
