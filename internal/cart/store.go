package cart

import "sync"

// Store はカート内容の唯一の持ち主。
// 変更は必ずここのメソッド経由で行い、変更のたびに購読者へ通知する。
// 画面側は読み取り＋購読のみで、行を直接書き換えない。
type Store struct {
	mu    sync.Mutex
	lines []Line
	subs  []func(State)
}

// NewStore は初期行つきでStoreを作る（復元用）。空ならnilでよい。
func NewStore(initial []Line) *Store {
	lines := make([]Line, 0, len(initial))
	for _, l := range initial {
		if l.Product.ID == "" || l.Quantity < 1 {
			continue
		}
		lines = append(lines, l)
	}
	return &Store{lines: lines}
}

// Subscribe は変更通知のコールバックを登録する。
// 通知は変更完了後に同期で、登録順に呼ばれる。
// コールバック内からStoreを変更してはいけない。
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// State は現在状態のコピーを返す。
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildState(s.lines)
}

// AddItem は商品を追加する。同じ商品IDが既にあれば数量を加算、
// 無ければ末尾に行を追加する。
// ID無し・数量0以下・負の価格は呼び出し側のバグ扱いで黙って無視する。
func (s *Store) AddItem(p Product, qty int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" || qty < 1 || p.Price < 0 {
		return buildState(s.lines)
	}

	for i, l := range s.lines {
		if l.Product.ID == p.ID {
			s.lines[i].Quantity += qty
			return s.changed()
		}
	}

	s.lines = append(s.lines, Line{Product: p, Quantity: qty})
	return s.changed()
}

// RemoveItem は行を削除する。無ければ何もしない（冪等）。
func (s *Store) RemoveItem(productID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.lines {
		if l.Product.ID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.changed()
		}
	}
	return buildState(s.lines)
}

// UpdateQuantity は数量を絶対値で設定する（加算ではない）。
// 0以下は「行ごと削除」。数量0の行は存在させない方針。
func (s *Store) UpdateQuantity(productID string, qty int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		for i, l := range s.lines {
			if l.Product.ID == productID {
				s.lines = append(s.lines[:i], s.lines[i+1:]...)
				return s.changed()
			}
		}
		return buildState(s.lines)
	}

	for i, l := range s.lines {
		if l.Product.ID == productID {
			s.lines[i].Quantity = qty
			return s.changed()
		}
	}
	return buildState(s.lines)
}

// Clear は全行を削除する。注文確定の成功後にだけ呼ぶこと。
func (s *Store) Clear() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = s.lines[:0]
	return s.changed()
}

// 変更後の状態を作り、購読者へ同期通知して返す。ロック保持中に呼ぶ。
func (s *Store) changed() State {
	st := buildState(s.lines)
	for _, fn := range s.subs {
		fn(st)
	}
	return st
}
