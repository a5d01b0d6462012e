package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/campman/internal/flash"
)

// FlashHandler は保留中のフラッシュ通知を返すワンショットのエンドポイント。
//
// リダイレクト後のビュー描画時に呼ばれ、読み取った通知はその場で破棄される。
// 通知が無い場合はnullを返す。
// GET /api/flash
func FlashHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message := flash.Take(w, r)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"flash": message,
		})
	}
}
