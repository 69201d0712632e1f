package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teamfit/storefront/internal/domain/order"
)

type orderItemRequest struct {
	ProductID       int64           `json:"productId"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	CouponGrantID   *int64          `json:"couponGrantId,omitempty"`
}

type deliveryRequest struct {
	Address  string          `json:"address"`
	Receiver string          `json:"receiver"`
	Phone    string          `json:"phone"`
	Fee      decimal.Decimal `json:"fee"`
}

type createOrderRequest struct {
	Delivery deliveryRequest    `json:"delivery"`
	Items    []orderItemRequest `json:"items"`
}

type orderProductResponse struct {
	ProductID       int64   `json:"productId"`
	ProductName     string  `json:"productName"`
	ProductPrice    float64 `json:"productPrice"`
	Quantity        int     `json:"quantity"`
	CouponGrantID   *int64  `json:"couponGrantId,omitempty"`
	DiscountedPrice float64 `json:"discountedPrice"`
}

type orderResponse struct {
	ID               int64                  `json:"id"`
	DeliveryAddress  string                 `json:"deliveryAddress"`
	DeliveryReceiver string                 `json:"deliveryReceiver"`
	DeliveryPhone    string                 `json:"deliveryPhone"`
	DeliveryFee      float64                `json:"deliveryFee"`
	Status           string                 `json:"status"`
	TotalPrice       float64                `json:"totalPrice"`
	CreatedAt        time.Time              `json:"createdAt"`
	Products         []orderProductResponse `json:"products"`
}

type orderPageResponse struct {
	Orders     []orderResponse `json:"orders"`
	TotalPages int             `json:"totalPages"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:               o.ID,
		DeliveryAddress:  o.DeliveryAddress,
		DeliveryReceiver: o.DeliveryReceiver,
		DeliveryPhone:    o.DeliveryPhone,
		DeliveryFee:      o.DeliveryFee.InexactFloat64(),
		Status:           string(o.Status),
		TotalPrice:       o.TotalPrice.InexactFloat64(),
		CreatedAt:        o.CreatedAt,
		Products:         make([]orderProductResponse, 0, len(o.Products)),
	}
	for _, p := range o.Products {
		resp.Products = append(resp.Products, orderProductResponse{
			ProductID:       p.ProductID,
			ProductName:     p.ProductName,
			ProductPrice:    p.ProductPrice.InexactFloat64(),
			Quantity:        p.Quantity,
			CouponGrantID:   p.CouponGrantID,
			DiscountedPrice: p.DiscountedPrice.InexactFloat64(),
		})
	}
	return resp
}

func toCreateRequest(req createOrderRequest) order.CreateRequest {
	out := order.CreateRequest{
		Delivery: order.DeliveryInfo{
			Address:  req.Delivery.Address,
			Receiver: req.Delivery.Receiver,
			Phone:    req.Delivery.Phone,
			Fee:      req.Delivery.Fee,
		},
		Items: make([]order.ItemRequest, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		out.Items = append(out.Items, order.ItemRequest{
			ProductID:       item.ProductID,
			DiscountedPrice: item.DiscountedPrice,
			CouponGrantID:   item.CouponGrantID,
		})
	}
	return out
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Delivery.Address == "" || req.Delivery.Receiver == "" {
		writeBadRequest(w, "delivery address and receiver are required")
		return
	}

	o, err := h.orders.Create(r.Context(), memberID(r), toCreateRequest(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	page, err := h.orders.List(r.Context(), memberID(r), queryInt(r, "page"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := orderPageResponse{
		Orders:     make([]orderResponse, 0, len(page.Orders)),
		TotalPages: page.TotalPages,
	}
	for i := range page.Orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&page.Orders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid order id")
		return
	}

	o, err := h.orders.Get(r.Context(), memberID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid order id")
		return
	}

	var req deliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Address == "" || req.Receiver == "" {
		writeBadRequest(w, "delivery address and receiver are required")
		return
	}

	o, err := h.orders.UpdateDelivery(r.Context(), memberID(r), id, order.DeliveryInfo{
		Address:  req.Address,
		Receiver: req.Receiver,
		Phone:    req.Phone,
		Fee:      req.Fee,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "invalid order id")
		return
	}

	if err := h.orders.Cancel(r.Context(), memberID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
