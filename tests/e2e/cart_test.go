package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

type cartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type cartResponse struct {
	Items      []cartItemResponse `json:"items"`
	TotalItems int64              `json:"total_items"`
	Total      int64              `json:"total"`
}

type addCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func mustDecodeCart(t *testing.T, body []byte) cartResponse {
	t.Helper()
	var v cartResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(cartResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func addToCart(t *testing.T, c *TestClient, ctx context.Context, productID string, qty int64) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(addCartRequest{ProductID: productID, Quantity: qty})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return c.doJSON(ctx, t, http.MethodPost, "/cart/items", "", b)
}

func Test_Cart_AddAndMerge(t *testing.T) {
	admin := NewTestClient(t)
	c := NewTestClient(t)
	ctx := context.Background()

	access := adminLogin(t, admin, ctx)
	p := createTestProduct(t, admin, ctx, access, 5000, 10)

	resp, body := addToCart(t, c, ctx, p.ID, 2)
	requireStatus(t, resp, http.StatusOK, body)
	cart := mustDecodeCart(t, body)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("cart=%+v", cart)
	}
	if cart.Total != 10000 || cart.TotalItems != 2 {
		t.Fatalf("total=%d total_items=%d", cart.Total, cart.TotalItems)
	}

	//同じ商品を追加すると行がマージされる
	resp, body = addToCart(t, c, ctx, p.ID, 3)
	requireStatus(t, resp, http.StatusOK, body)
	cart = mustDecodeCart(t, body)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("merge failed: cart=%+v", cart)
	}
	if cart.Items[0].Subtotal != 25000 {
		t.Fatalf("subtotal=%d want=25000", cart.Items[0].Subtotal)
	}
}

func Test_Cart_StockExceeded(t *testing.T) {
	admin := NewTestClient(t)
	c := NewTestClient(t)
	ctx := context.Background()

	access := adminLogin(t, admin, ctx)
	p := createTestProduct(t, admin, ctx, access, 5000, 3)

	resp, body := addToCart(t, c, ctx, p.ID, 4)
	requireStatus(t, resp, http.StatusBadRequest, body)

	//失敗してもカートは変わらない
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/cart", "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cart := mustDecodeCart(t, body)
	if len(cart.Items) != 0 {
		t.Fatalf("cart should be empty: %+v", cart)
	}
}

func Test_Cart_UpdateQuantity(t *testing.T) {
	admin := NewTestClient(t)
	c := NewTestClient(t)
	ctx := context.Background()

	access := adminLogin(t, admin, ctx)
	p := createTestProduct(t, admin, ctx, access, 3000, 10)

	resp, body := addToCart(t, c, ctx, p.ID, 2)
	requireStatus(t, resp, http.StatusOK, body)

	//数量は絶対値で上書き
	b, err := json.Marshal(updateCartItemRequest{Quantity: 7})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	resp, body = c.doJSON(ctx, t, http.MethodPatch, "/cart/items/"+p.ID, "", b)
	requireStatus(t, resp, http.StatusOK, body)
	cart := mustDecodeCart(t, body)
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("quantity=%d want=7", cart.Items[0].Quantity)
	}

	//0以下は行の削除
	b, err = json.Marshal(updateCartItemRequest{Quantity: 0})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	resp, body = c.doJSON(ctx, t, http.MethodPatch, "/cart/items/"+p.ID, "", b)
	requireStatus(t, resp, http.StatusOK, body)
	cart = mustDecodeCart(t, body)
	if len(cart.Items) != 0 {
		t.Fatalf("line should be removed: %+v", cart)
	}
}

func Test_Cart_RemoveIsIdempotent(t *testing.T) {
	admin := NewTestClient(t)
	c := NewTestClient(t)
	ctx := context.Background()

	access := adminLogin(t, admin, ctx)
	p := createTestProduct(t, admin, ctx, access, 3000, 10)

	resp, body := addToCart(t, c, ctx, p.ID, 1)
	requireStatus(t, resp, http.StatusOK, body)

	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/cart/items/"+p.ID, "", nil)
	requireStatus(t, resp, http.StatusOK, body)

	//2回目も200
	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/cart/items/"+p.ID, "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cart := mustDecodeCart(t, body)
	if len(cart.Items) != 0 {
		t.Fatalf("cart should be empty: %+v", cart)
	}
}

func Test_Cart_Clear(t *testing.T) {
	admin := NewTestClient(t)
	c := NewTestClient(t)
	ctx := context.Background()

	access := adminLogin(t, admin, ctx)
	p1 := createTestProduct(t, admin, ctx, access, 1000, 10)
	p2 := createTestProduct(t, admin, ctx, access, 2000, 10)

	resp, body := addToCart(t, c, ctx, p1.ID, 1)
	requireStatus(t, resp, http.StatusOK, body)
	resp, body = addToCart(t, c, ctx, p2.ID, 2)
	requireStatus(t, resp, http.StatusOK, body)

	clearCart(t, c, ctx)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/cart", "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cart := mustDecodeCart(t, body)
	if len(cart.Items) != 0 || cart.Total != 0 {
		t.Fatalf("cart should be empty: %+v", cart)
	}
}

func Test_Cart_SessionIsolation(t *testing.T) {
	admin := NewTestClient(t)
	a := NewTestClient(t)
	b := NewTestClient(t)
	ctx := context.Background()

	access := adminLogin(t, admin, ctx)
	p := createTestProduct(t, admin, ctx, access, 1000, 10)

	resp, body := addToCart(t, a, ctx, p.ID, 1)
	requireStatus(t, resp, http.StatusOK, body)

	//別のcookie jar（別端末相当）には見えない
	resp, body = b.doJSON(ctx, t, http.MethodGet, "/cart", "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cart := mustDecodeCart(t, body)
	if len(cart.Items) != 0 {
		t.Fatalf("cart leaked across sessions: %+v", cart)
	}
}

func Test_Cart_UnknownProduct(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := addToCart(t, c, ctx, "7b0d1dc4-0000-0000-0000-000000000000", 1)
	requireStatus(t, resp, http.StatusBadRequest, body)
}
