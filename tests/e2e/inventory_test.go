package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

type inventoryUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

func putInventory(t *testing.T, c *TestClient, ctx context.Context, access string, productID string, stock int64, reason string) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(inventoryUpdateRequest{Stock: stock, Reason: reason})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return c.doJSON(ctx, t, http.MethodPut, "/admin/inventory/"+productID, access, b)
}

func Test_Inventory_Update(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := adminLogin(t, c, ctx)
	p := createTestProduct(t, c, ctx, access, 5000, 3)

	resp, body := putInventory(t, c, ctx, access, p.ID, 10, "restock")
	requireStatus(t, resp, http.StatusOK, body)

	//在庫は絶対値で上書き
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/products/"+p.ID, "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	got := mustDecodeProduct(t, body)
	if got.Stock != 10 {
		t.Fatalf("stock=%d want=10", got.Stock)
	}
}

func Test_Inventory_Validation(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := adminLogin(t, c, ctx)
	p := createTestProduct(t, c, ctx, access, 5000, 3)

	//負の在庫は不可
	resp, body := putInventory(t, c, ctx, access, p.ID, -1, "oops")
	requireStatus(t, resp, http.StatusBadRequest, body)

	//理由は必須
	resp, body = putInventory(t, c, ctx, access, p.ID, 5, "")
	requireStatus(t, resp, http.StatusBadRequest, body)

	//存在しない商品は404
	resp, body = putInventory(t, c, ctx, access, "7b0d1dc4-0000-0000-0000-000000000000", 5, "restock")
	requireStatus(t, resp, http.StatusNotFound, body)
}
