// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層から利用する。
type MetricsCollector interface {
	RecordCampgroundCreated()
	RecordCampgroundDeleted(reviewCount int)
	RecordReviewCreated()
	RecordReviewDeleted()
	RecordValidationFailure(entity string)
	RecordPermissionDenied()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	campgroundsCreated prometheus.Counter
	campgroundsDeleted prometheus.Counter
	reviewsCascaded    prometheus.Counter
	reviewsCreated     prometheus.Counter
	reviewsDeleted     prometheus.Counter
	validationFail     *prometheus.CounterVec
	permissionDenied   prometheus.Counter
	httpStatus         *prometheus.CounterVec
	requestLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		campgroundsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campman_campgrounds_created_total",
			Help: "作成されたキャンプ場の合計数",
		}),
		campgroundsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campman_campgrounds_deleted_total",
			Help: "削除されたキャンプ場の合計数",
		}),
		reviewsCascaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campman_reviews_cascade_deleted_total",
			Help: "キャンプ場削除に連動して削除されたレビューの合計数",
		}),
		reviewsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campman_reviews_created_total",
			Help: "作成されたレビューの合計数",
		}),
		reviewsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campman_reviews_deleted_total",
			Help: "単独で削除されたレビューの合計数",
		}),
		validationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campman_validation_fail_total",
			Help: "エンティティ種別ごとのバリデーション失敗数",
		}, []string{"entity"}),
		permissionDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campman_permission_denied_total",
			Help: "所有権チェックで拒否された操作の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campman_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.campgroundsCreated,
		c.campgroundsDeleted,
		c.reviewsCascaded,
		c.reviewsCreated,
		c.reviewsDeleted,
		c.validationFail,
		c.permissionDenied,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordCampgroundCreated はキャンプ場作成を記録する。
func (c *Collector) RecordCampgroundCreated() {
	c.campgroundsCreated.Inc()
}

// RecordCampgroundDeleted はキャンプ場削除と、連動して削除された
// レビュー数を記録する。
func (c *Collector) RecordCampgroundDeleted(reviewCount int) {
	c.campgroundsDeleted.Inc()
	if reviewCount > 0 {
		c.reviewsCascaded.Add(float64(reviewCount))
	}
}

// RecordReviewCreated はレビュー作成を記録する。
func (c *Collector) RecordReviewCreated() {
	c.reviewsCreated.Inc()
}

// RecordReviewDeleted はレビュー単独削除を記録する。
func (c *Collector) RecordReviewDeleted() {
	c.reviewsDeleted.Inc()
}

// RecordValidationFailure はバリデーション失敗を記録する。
func (c *Collector) RecordValidationFailure(entity string) {
	c.validationFail.WithLabelValues(entity).Inc()
}

// RecordPermissionDenied は所有権チェックによる拒否を記録する。
func (c *Collector) RecordPermissionDenied() {
	c.permissionDenied.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
