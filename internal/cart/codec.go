package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 保存形式のスキーマバージョン。互換性が壊れる変更をしたら必ず上げる。
const schemaVersion = 1

var ErrBadSnapshot = errors.New("bad cart snapshot")

// 保存レコード。商品IDだけでなくスナップショットごと保存するので、
// のちにカタログの価格が変わっても追加時点の価格が残る。
type snapshotEnvelope struct {
	Version int    `json:"version"`
	Lines   []Line `json:"lines"`
}

// encodeLines は行一覧をバージョン付きJSONにする。
func encodeLines(lines []Line) ([]byte, error) {
	return json.Marshal(snapshotEnvelope{
		Version: schemaVersion,
		Lines:   lines,
	})
}

// decodeLines は保存レコードを行一覧に戻す。
// 壊れたJSON・未知のバージョンはエラー（読み手は空カートとして扱う）。
// 不正な行（ID無し・数量0以下）はここで落とす。
func decodeLines(data []byte) ([]Line, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	if env.Version != schemaVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrBadSnapshot, env.Version)
	}

	lines := make([]Line, 0, len(env.Lines))
	for _, l := range env.Lines {
		if l.Product.ID == "" || l.Quantity < 1 || l.Product.Price < 0 {
			continue
		}
		lines = append(lines, l)
	}
	return lines, nil
}
