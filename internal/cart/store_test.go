package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func productA() Product {
	return Product{ID: "a0000000-0000-0000-0000-000000000001", Name: "Silk Scarf", Price: 1000, Category: "Accessories", Stock: 10}
}

func productB() Product {
	return Product{ID: "b0000000-0000-0000-0000-000000000002", Name: "Leather Belt", Price: 500, Category: "Accessories", Stock: 5}
}

// 集計値が常に行と一致しているかを確認するヘルパー
func assertConsistent(t *testing.T, st State) {
	t.Helper()

	var items int64 = 0
	var price int64 = 0
	for _, l := range st.Lines {
		items += l.Quantity
		price += l.Product.Price * l.Quantity
	}

	assert.Equal(t, items, st.TotalItems)
	assert.Equal(t, price, st.TotalPrice)
}

// Test: 同一商品の追加は行をまとめて数量加算
func TestAddSameProductMergesLine(t *testing.T) {
	s := NewStore(nil)

	s.AddItem(productA(), 1)
	st := s.AddItem(productA(), 2)

	assert.Len(t, st.Lines, 1)
	assert.Equal(t, int64(3), st.Lines[0].Quantity)
	assert.Equal(t, int64(3), st.TotalItems)
	assert.Equal(t, int64(3000), st.TotalPrice)
	assertConsistent(t, st)
}

// Test: 別商品は挿入順で末尾に追加
func TestAddKeepsInsertionOrder(t *testing.T) {
	s := NewStore(nil)

	s.AddItem(productB(), 1)
	st := s.AddItem(productA(), 2)

	assert.Len(t, st.Lines, 2)
	assert.Equal(t, productB().ID, st.Lines[0].Product.ID)
	assert.Equal(t, productA().ID, st.Lines[1].Product.ID)
	assertConsistent(t, st)
}

// Test: 不正入力（ID無し・数量0以下・負の価格）は黙って無視
func TestAddItemInvalidInputIsNoOp(t *testing.T) {
	s := NewStore(nil)
	s.AddItem(productA(), 1)

	notified := 0
	s.Subscribe(func(State) { notified++ })

	s.AddItem(Product{Name: "no id", Price: 100}, 1)
	s.AddItem(productB(), 0)
	s.AddItem(productB(), -3)
	s.AddItem(Product{ID: "x", Price: -1}, 1)

	st := s.State()
	assert.Len(t, st.Lines, 1)
	assert.Equal(t, int64(1), st.TotalItems)
	assert.Equal(t, 0, notified)
}

// Test: A追加→B追加→A削除でBだけが残る
func TestRemoveItem(t *testing.T) {
	s := NewStore(nil)
	s.AddItem(productA(), 1)
	s.AddItem(productB(), 1)

	st := s.RemoveItem(productA().ID)

	assert.Len(t, st.Lines, 1)
	assert.Equal(t, productB().ID, st.Lines[0].Product.ID)
	assert.Equal(t, int64(1), st.TotalItems)
	assert.Equal(t, int64(500), st.TotalPrice)
	assertConsistent(t, st)
}

// Test: 存在しないIDの削除は何もしない（冪等・通知もしない）
func TestRemoveMissingItemIsNoOp(t *testing.T) {
	s := NewStore(nil)
	s.AddItem(productA(), 2)

	notified := 0
	s.Subscribe(func(State) { notified++ })

	st := s.RemoveItem("missing")

	assert.Equal(t, int64(2), st.TotalItems)
	assert.Equal(t, int64(2000), st.TotalPrice)
	assert.Equal(t, 0, notified)
}

// Test: 数量は絶対値で設定（加算ではない）
func TestUpdateQuantitySetsAbsolute(t *testing.T) {
	s := NewStore(nil)
	s.AddItem(productA(), 3)

	st := s.UpdateQuantity(productA().ID, 5)

	assert.Equal(t, int64(5), st.Lines[0].Quantity)
	assert.Equal(t, int64(5), st.TotalItems)
	assert.Equal(t, int64(5000), st.TotalPrice)
	assertConsistent(t, st)
}

// Test: 数量0・負数は行ごと削除
func TestUpdateQuantityZeroOrNegativeRemovesLine(t *testing.T) {
	for _, qty := range []int64{0, -1} {
		s := NewStore(nil)
		s.AddItem(productA(), 2)
		s.AddItem(productB(), 1)

		st := s.UpdateQuantity(productA().ID, qty)

		assert.Len(t, st.Lines, 1)
		assert.Equal(t, productB().ID, st.Lines[0].Product.ID)
		assertConsistent(t, st)
	}
}

// Test: Clearで全行削除・集計ゼロ
func TestClear(t *testing.T) {
	s := NewStore(nil)
	s.AddItem(productA(), 2)
	s.AddItem(productB(), 1)

	st := s.Clear()

	assert.Empty(t, st.Lines)
	assert.Equal(t, int64(0), st.TotalItems)
	assert.Equal(t, int64(0), st.TotalPrice)
}

// Test: 購読者は変更のたびに登録順・同期で呼ばれ、整合した状態を受け取る
func TestSubscribersNotifiedInOrder(t *testing.T) {
	s := NewStore(nil)

	var order []string
	s.Subscribe(func(st State) {
		order = append(order, "first")
		assertConsistent(t, st)
	})
	s.Subscribe(func(st State) {
		order = append(order, "second")
		assertConsistent(t, st)
	})

	s.AddItem(productA(), 1)
	s.UpdateQuantity(productA().ID, 4)
	s.RemoveItem(productA().ID)

	assert.Equal(t, []string{"first", "second", "first", "second", "first", "second"}, order)
}

// Test: Stateはコピーなので呼び出し側が書き換えても内部に影響しない
func TestStateIsACopy(t *testing.T) {
	s := NewStore(nil)
	s.AddItem(productA(), 1)

	st := s.State()
	st.Lines[0].Quantity = 99

	assert.Equal(t, int64(1), s.State().Lines[0].Quantity)
}

// Test: 復元時に不正な行は落とす
func TestNewStoreDropsInvalidLines(t *testing.T) {
	s := NewStore([]Line{
		{Product: productA(), Quantity: 2},
		{Product: Product{Name: "no id"}, Quantity: 1},
		{Product: productB(), Quantity: 0},
	})

	st := s.State()
	assert.Len(t, st.Lines, 1)
	assert.Equal(t, productA().ID, st.Lines[0].Product.ID)
}

// Test: シリアライズ往復で行・数量・集計が一致する
func TestSnapshotRoundTrip(t *testing.T) {
	s := NewStore(nil)
	s.AddItem(productA(), 3)
	s.AddItem(productB(), 1)
	before := s.State()

	payload, err := encodeLines(before.Lines)
	assert.NoError(t, err)

	lines, err := decodeLines(payload)
	assert.NoError(t, err)

	after := NewStore(lines).State()
	assert.Equal(t, before.Lines, after.Lines)
	assert.Equal(t, before.TotalItems, after.TotalItems)
	assert.Equal(t, before.TotalPrice, after.TotalPrice)
}

// Test: 壊れたJSONと未知バージョンはエラー
func TestDecodeRejectsBadPayload(t *testing.T) {
	_, err := decodeLines([]byte("{not json"))
	assert.ErrorIs(t, err, ErrBadSnapshot)

	_, err = decodeLines([]byte(`{"version":99,"lines":[]}`))
	assert.ErrorIs(t, err, ErrBadSnapshot)
}
