//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

func placeOrder(t *testing.T, token string, req createOrderRequest) orderResponse {
	t.Helper()

	resp := do(t, http.MethodPost, "/api/orders", token, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", resp.StatusCode)
	}
	return decodeBody[orderResponse](t, resp)
}

// unusedCoupon returns a coupon grant of the member that has not been
// redeemed yet.
func unusedCoupon(t *testing.T, token string) couponResponse {
	t.Helper()

	resp := doGet(t, "/api/coupons", token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list coupons: expected 200, got %d", resp.StatusCode)
	}

	for _, c := range decodeBody[[]couponResponse](t, resp) {
		if !c.Used {
			return c
		}
	}
	t.Fatal("no unused coupon grant left")
	return couponResponse{}
}

func delivery() deliveryRequest {
	return deliveryRequest{
		Address:  "12 Harbor Street",
		Receiver: "Demo Member",
		Phone:    "010-1234-5678",
		Fee:      3000,
	}
}

func TestOrder_RequiresAuth(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/orders", "", createOrderRequest{Delivery: delivery()})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestOrder_EmptyCart(t *testing.T) {
	token := login(t)
	clearCart(t, token)

	resp := do(t, http.MethodPost, "/api/orders", token, createOrderRequest{Delivery: delivery()})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	apiErr := decodeBody[errorResponse](t, resp)
	if apiErr.Code != "CART_EMPTY" {
		t.Errorf("code: got %q, want CART_EMPTY", apiErr.Code)
	}
}

func TestOrder_MissingOrderItem(t *testing.T) {
	token := login(t)
	clearCart(t, token)
	p := firstProduct(t)
	addToCart(t, token, p.ID, 1)

	// The cart has a product but the request names none of it.
	resp := do(t, http.MethodPost, "/api/orders", token, createOrderRequest{Delivery: delivery()})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	apiErr := decodeBody[errorResponse](t, resp)
	if apiErr.Code != "ORDER_PRODUCT_NOT_FOUND" {
		t.Errorf("code: got %q, want ORDER_PRODUCT_NOT_FOUND", apiErr.Code)
	}
}

func TestOrder_CreateGetAndList(t *testing.T) {
	token := login(t)
	clearCart(t, token)
	p := firstProduct(t)
	addToCart(t, token, p.ID, 2)

	lineTotal := p.Price * 2
	created := placeOrder(t, token, createOrderRequest{
		Delivery: delivery(),
		Items:    []orderItemRequest{{ProductID: p.ID, DiscountedPrice: lineTotal}},
	})

	if created.Status != "ORDERED" {
		t.Errorf("status: got %q, want ORDERED", created.Status)
	}
	if created.TotalPrice != lineTotal {
		t.Errorf("total price: got %v, want %v", created.TotalPrice, lineTotal)
	}
	if len(created.Products) != 1 {
		t.Fatalf("expected 1 line, got %d", len(created.Products))
	}
	if created.Products[0].ProductName != p.Name {
		t.Errorf("snapshot name: got %q, want %q", created.Products[0].ProductName, p.Name)
	}

	// The cart must be consumed by the order.
	carts := doGet(t, "/api/carts/products", token)
	defer carts.Body.Close()
	if rows := decodeBody[[]cartProductResponse](t, carts); len(rows) != 0 {
		t.Errorf("cart not emptied: %d rows left", len(rows))
	}

	single := doGet(t, fmt.Sprintf("/api/orders/%d", created.ID), token)
	defer single.Body.Close()

	if single.StatusCode != http.StatusOK {
		t.Fatalf("get order: expected 200, got %d", single.StatusCode)
	}
	got := decodeBody[orderResponse](t, single)
	if got.ID != created.ID {
		t.Errorf("order id: got %d, want %d", got.ID, created.ID)
	}

	list := doGet(t, "/api/orders?page=1", token)
	defer list.Body.Close()

	if list.StatusCode != http.StatusOK {
		t.Fatalf("list orders: expected 200, got %d", list.StatusCode)
	}
	page := decodeBody[orderPageResponse](t, list)
	if len(page.Orders) == 0 {
		t.Fatal("expected at least one order")
	}
	if page.Orders[0].ID != created.ID {
		t.Errorf("newest order first: got %d, want %d", page.Orders[0].ID, created.ID)
	}
}

func TestOrder_UpdateDeliveryAndCancel(t *testing.T) {
	token := login(t)
	clearCart(t, token)
	p := firstProduct(t)
	addToCart(t, token, p.ID, 1)

	created := placeOrder(t, token, createOrderRequest{
		Delivery: delivery(),
		Items:    []orderItemRequest{{ProductID: p.ID, DiscountedPrice: p.Price}},
	})

	newDelivery := delivery()
	newDelivery.Address = "99 New Avenue"
	update := do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d", created.ID), token, newDelivery)
	defer update.Body.Close()

	if update.StatusCode != http.StatusOK {
		t.Fatalf("update order: expected 200, got %d", update.StatusCode)
	}
	if got := decodeBody[orderResponse](t, update); got.DeliveryAddress != "99 New Avenue" {
		t.Errorf("address: got %q, want %q", got.DeliveryAddress, "99 New Avenue")
	}

	cancel := do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", created.ID), token, nil)
	defer cancel.Body.Close()

	if cancel.StatusCode != http.StatusNoContent {
		t.Fatalf("cancel order: expected 204, got %d", cancel.StatusCode)
	}

	// A cancelled order rejects further changes.
	again := do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d", created.ID), token, newDelivery)
	defer again.Body.Close()

	if again.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", again.StatusCode)
	}
	apiErr := decodeBody[errorResponse](t, again)
	if apiErr.Code != "ORDER_MODIFICATION_NOT_ALLOWED" {
		t.Errorf("code: got %q, want ORDER_MODIFICATION_NOT_ALLOWED", apiErr.Code)
	}
}

func listOrdersPage(t *testing.T, token string, page int) orderPageResponse {
	t.Helper()

	resp := doGet(t, fmt.Sprintf("/api/orders?page=%d", page), token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list orders page %d: expected 200, got %d", page, resp.StatusCode)
	}
	return decodeBody[orderPageResponse](t, resp)
}

func TestOrder_Pagination(t *testing.T) {
	token := login(t)
	p := firstProduct(t)

	// Six fresh orders guarantee at least two pages regardless of what
	// earlier tests placed.
	var newest int64
	for range 6 {
		clearCart(t, token)
		addToCart(t, token, p.ID, 1)
		created := placeOrder(t, token, createOrderRequest{
			Delivery: delivery(),
			Items:    []orderItemRequest{{ProductID: p.ID, DiscountedPrice: p.Price}},
		})
		newest = created.ID
	}

	first := listOrdersPage(t, token, 1)
	if len(first.Orders) != 5 {
		t.Fatalf("page 1 size: got %d, want 5", len(first.Orders))
	}
	if first.Orders[0].ID != newest {
		t.Errorf("newest first: got %d, want %d", first.Orders[0].ID, newest)
	}
	if first.TotalPages < 2 {
		t.Fatalf("total pages: got %d, want >= 2", first.TotalPages)
	}

	// Walk every page: full pages carry exactly 5 orders, the last one
	// 1 to 5, and the page count matches ceil(total/5).
	total := 0
	for page := 1; page <= first.TotalPages; page++ {
		got := listOrdersPage(t, token, page)
		if got.TotalPages != first.TotalPages {
			t.Errorf("page %d reports %d total pages, want %d", page, got.TotalPages, first.TotalPages)
		}
		if page < first.TotalPages && len(got.Orders) != 5 {
			t.Errorf("page %d size: got %d, want 5", page, len(got.Orders))
		}
		if page == first.TotalPages && (len(got.Orders) < 1 || len(got.Orders) > 5) {
			t.Errorf("last page size: got %d, want 1..5", len(got.Orders))
		}
		total += len(got.Orders)
	}
	if want := (total + 4) / 5; first.TotalPages != want {
		t.Errorf("total pages: got %d, want ceil(%d/5)=%d", first.TotalPages, total, want)
	}

	// Soft-deleted orders vanish from the listing and the detail view.
	execSQL(t, fmt.Sprintf("UPDATE orders SET is_deleted = TRUE WHERE id = %d", newest))

	after := listOrdersPage(t, token, 1)
	for _, o := range after.Orders {
		if o.ID == newest {
			t.Fatalf("soft-deleted order %d still listed", newest)
		}
	}

	detail := doGet(t, fmt.Sprintf("/api/orders/%d", newest), token)
	defer detail.Body.Close()
	if detail.StatusCode != http.StatusNotFound {
		t.Errorf("soft-deleted order detail: expected 404, got %d", detail.StatusCode)
	}
}

func TestOrder_CouponRedeemedOnce(t *testing.T) {
	token := login(t)
	clearCart(t, token)
	p := firstProduct(t)
	grant := unusedCoupon(t, token)

	addToCart(t, token, p.ID, 1)

	// Two racing order placements share one coupon grant. At most one may
	// succeed; the loser sees either the used coupon or the emptied cart.
	req := createOrderRequest{
		Delivery: delivery(),
		Items: []orderItemRequest{{
			ProductID:       p.ID,
			DiscountedPrice: p.Price - 1000,
			CouponGrantID:   &grant.ID,
		}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}

	var created atomic.Int32
	var g errgroup.Group
	for range 2 {
		g.Go(func() error {
			httpReq, err := http.NewRequestWithContext(context.Background(),
				http.MethodPost, baseURL+"/api/orders", bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+token)

			resp, err := httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				created.Add(1)
				return nil
			case http.StatusConflict, http.StatusUnprocessableEntity:
				return nil
			default:
				return fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := created.Load(); got != 1 {
		t.Fatalf("expected exactly 1 created order, got %d", got)
	}

	// The grant must now be spent.
	resp := doGet(t, "/api/coupons", token)
	defer resp.Body.Close()

	for _, c := range decodeBody[[]couponResponse](t, resp) {
		if c.ID == grant.ID && !c.Used {
			t.Fatal("coupon grant still unused after redemption")
		}
	}
}
