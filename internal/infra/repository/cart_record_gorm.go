package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

// cart.Persister のGORM実装。
// セッションIDごとに1行、バージョン付きJSONをそのまま持つ。
// ブラウザ側のlocalStorage相当をサーバーで受け持つ形。
type CartRecordGormRepository struct {
	db *gorm.DB
}

func NewCartRecordGormRepository(db *gorm.DB) *CartRecordGormRepository {
	return &CartRecordGormRepository{db: db}
}

// Load はスナップショットを読む。レコード無しはfound=false（エラーではない）。
func (r *CartRecordGormRepository) Load(ctx context.Context, sessionID string) ([]byte, bool, error) {
	var rec model.CartRecord

	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Payload, true, nil
}

// Save は全状態を書き戻す（upsert）。
func (r *CartRecordGormRepository) Save(ctx context.Context, sessionID string, payload []byte) error {
	rec := model.CartRecord{
		SessionID: sessionID,
		Payload:   payload,
	}

	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Assign(map[string]interface{}{"payload": payload}).
		FirstOrCreate(&rec).Error
}
