package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// DBPinger はヘルスチェックがDB疎通確認に使うインターフェース。
// *sql.DBのPingContextを満たす。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はサービスの生存確認エンドポイント。
// DB疎通に失敗した場合は503を返す。
// GET /health
func HealthHandler(db DBPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check db ping failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
