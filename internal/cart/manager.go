package cart

import (
	"context"
	"log/slog"
	"sync"
)

// Persister はカートスナップショットの保存先。
// Loadはキーが無いときfound=falseを返す（エラーではない）。
type Persister interface {
	Load(ctx context.Context, sessionID string) (payload []byte, found bool, err error)
	Save(ctx context.Context, sessionID string, payload []byte) error
}

// Manager はセッション（端末）ごとにStoreを1つだけ持つ。
// アプリ全体で1インスタンスを生成してDIする。隠れグローバルにしない。
type Manager struct {
	mu        sync.Mutex
	persister Persister
	log       *slog.Logger
	stores    map[string]*Store
}

func NewManager(p Persister, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		persister: p,
		log:       log,
		stores:    make(map[string]*Store),
	}
}

// Get はセッションのStoreを返す。初回は保存済みスナップショットから復元する。
// レコード無し・壊れたJSON・未知バージョンはすべて「前回カート無し」扱いで空から始める。
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[sessionID]; ok {
		return s
	}

	s := NewStore(m.rehydrate(ctx, sessionID))

	//永続化は購読者として配線する。変更のたびに全状態を書き戻す。
	//保存に失敗してもメモリ上の状態が正で、操作は失敗させない（永続性だけ落ちる）。
	s.Subscribe(func(st State) {
		payload, err := encodeLines(st.Lines)
		if err == nil {
			err = m.persister.Save(context.Background(), sessionID, payload)
		}
		if err != nil {
			m.log.Warn("cart snapshot save failed", "session_id", sessionID, "error", err)
		}
	})

	m.stores[sessionID] = s
	return s
}

func (m *Manager) rehydrate(ctx context.Context, sessionID string) []Line {
	payload, found, err := m.persister.Load(ctx, sessionID)
	if err != nil {
		m.log.Warn("cart snapshot load failed", "session_id", sessionID, "error", err)
		return nil
	}
	if !found {
		return nil
	}

	lines, err := decodeLines(payload)
	if err != nil {
		m.log.Warn("cart snapshot unreadable, starting empty", "session_id", sessionID, "error", err)
		return nil
	}
	return lines
}
