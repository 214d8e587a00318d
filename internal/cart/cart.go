package cart

// Product はカートに入れた時点の商品スナップショット。
// カタログ側で価格が変わっても、カート内の価格は追加時点のまま。
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url"`
	Category string `json:"category"`
	Stock    int64  `json:"stock"`
}

// Line は商品1つ＋数量。同じ商品IDの行はカート内に1つだけ。
type Line struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

// State はカートの現在状態。集計値はLinesから毎回再計算するので
// 行とズレることはない。
type State struct {
	Lines      []Line `json:"lines"`
	TotalItems int64  `json:"total_items"`
	TotalPrice int64  `json:"total_price"`
}

// LinesからStateを組み立てる。O(行数)だがカートは高々数十行。
func buildState(lines []Line) State {
	copied := make([]Line, len(lines))
	copy(copied, lines)

	var items int64 = 0
	var price int64 = 0
	for _, l := range lines {
		items += l.Quantity
		price += l.Product.Price * l.Quantity
	}

	return State{
		Lines:      copied,
		TotalItems: items,
		TotalPrice: price,
	}
}
