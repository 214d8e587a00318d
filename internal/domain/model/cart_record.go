package model

import "time"

// カートの永続スナップショット。端末ごとのセッションIDをキーに、
// バージョン付きJSONをそのまま保存する（中身はinternal/cartが管理）。
type CartRecord struct {
	SessionID string    `gorm:"type:uuid;primaryKey" json:"session_id"`
	Payload   []byte    `gorm:"type:bytea;not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
