//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCatalog_ListAndGet(t *testing.T) {
	resp := doGet(t, "/api/products?size=2&sort=name&dir=asc", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeBody[productPageResponse](t, resp)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items per page, got %d", len(page.Items))
	}
	if page.TotalPages != 2 {
		t.Errorf("total pages: got %d, want 2", page.TotalPages)
	}

	single := doGet(t, fmt.Sprintf("/api/products/%d", page.Items[0].ID), "")
	defer single.Body.Close()

	if single.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", single.StatusCode)
	}
	got := decodeBody[productResponse](t, single)
	if got.Name != page.Items[0].Name {
		t.Errorf("name: got %q, want %q", got.Name, page.Items[0].Name)
	}
}

func TestCatalog_KeywordSearch(t *testing.T) {
	resp := doGet(t, "/api/products?keyword=protein", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeBody[productPageResponse](t, resp)
	if page.TotalItems != 2 {
		t.Errorf("total items: got %d, want 2", page.TotalItems)
	}
}

func TestCatalog_MissingProduct(t *testing.T) {
	resp := doGet(t, "/api/products/99999", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	apiErr := decodeBody[errorResponse](t, resp)
	if apiErr.Code != "PRODUCT_NOT_FOUND" {
		t.Errorf("code: got %q, want PRODUCT_NOT_FOUND", apiErr.Code)
	}
}

func TestCategories(t *testing.T) {
	resp := doGet(t, "/api/categories/parents", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	parents := decodeBody[[]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}](t, resp)
	if len(parents) != 2 {
		t.Fatalf("expected 2 parent categories, got %d", len(parents))
	}

	children := doGet(t, fmt.Sprintf("/api/categories/%d/children", parents[0].ID), "")
	defer children.Body.Close()

	if children.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", children.StatusCode)
	}
}

func TestCart_RequiresAuth(t *testing.T) {
	resp := doGet(t, "/api/carts", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	apiErr := decodeBody[errorResponse](t, resp)
	if apiErr.Code != "USER_NOT_AUTHORIZED" {
		t.Errorf("code: got %q, want USER_NOT_AUTHORIZED", apiErr.Code)
	}
}

func TestCart_AddMergeAndRemove(t *testing.T) {
	token := login(t)
	clearCart(t, token)
	p := firstProduct(t)

	addToCart(t, token, p.ID, 2)
	addToCart(t, token, p.ID, 3)

	resp := doGet(t, "/api/carts/products", token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	lines := decodeBody[[]cartProductResponse](t, resp)
	if len(lines) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("quantity: got %d, want 5", lines[0].Quantity)
	}
	if lines[0].ProductName != p.Name {
		t.Errorf("product name: got %q, want %q", lines[0].ProductName, p.Name)
	}

	del := do(t, http.MethodDelete, fmt.Sprintf("/api/carts/%d", p.ID), token, nil)
	defer del.Body.Close()

	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.StatusCode)
	}
}

func TestCart_QuantityOutOfRange(t *testing.T) {
	token := login(t)
	clearCart(t, token)
	p := firstProduct(t)

	resp := do(t, http.MethodPost, "/api/carts", token, cartWriteRequest{ProductID: p.ID, Quantity: 21})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	apiErr := decodeBody[errorResponse](t, resp)
	if apiErr.Code != "CART_OUT_OF_RANGE" {
		t.Errorf("code: got %q, want CART_OUT_OF_RANGE", apiErr.Code)
	}
}
