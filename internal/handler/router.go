package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/campman/internal/middleware"
)

// SetupAuthRoutes は認証関連のルーティングを設定したchi.Routerを返す。
func SetupAuthRoutes(service AuthServiceInterface, config AuthHandlerConfig) http.Handler {
	r := chi.NewRouter()
	h := NewAuthHandler(service, config)

	r.Route("/auth", func(r chi.Router) {
		// OAuthフロー。/auth/loginは未認証リダイレクトの着地点
		r.Get("/login", h.Login)
		r.Get("/google/login", h.Login)
		r.Get("/google/callback", h.Callback)

		// セッション管理
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	return r
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder   middleware.SessionFinder
	RateLimiter     *middleware.RateLimiter
	CSRFConfig      middleware.CSRFConfig
	MetricsRecorder middleware.HTTPMetricsRecorder
	Logger          *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// キャンプ場・レビュー
	CampgroundService CampgroundServiceInterface
	ReviewService     ReviewServiceInterface

	// ユーザー
	UserService UserServiceInterface

	// 運用エンドポイント
	DB             DBPinger
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → Metrics（全ルート）
//	Session → CSRF → RateLimit(General)（保護ルートのみ）
//
// 書き込みルートには変更系専用のレート制限を追加で適用する。
// 認証ルート（/auth/*）と公開の読み取りルートはセッション検証の外に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	campHandler := NewCampgroundHandler(deps.CampgroundService)
	reviewHandler := NewReviewHandler(deps.ReviewService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// 公開の読み取りルート
	r.Get("/campgrounds", campHandler.ListCampgrounds)

	// フラッシュ通知・CSRFトークン（ビュー描画の補助）
	r.Get("/api/flash", FlashHandler())
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 運用エンドポイント
	r.Get("/health", HealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		mutation := deps.RateLimiter.MutationMiddleware()

		// キャンプ場管理
		r.Get("/campgrounds/new", campHandler.NewCampground)
		r.Get("/campgrounds/{id}/edit", campHandler.EditCampground)
		r.With(mutation).Post("/campgrounds", campHandler.CreateCampground)
		r.With(mutation).Put("/campgrounds/{id}", campHandler.UpdateCampground)
		r.With(mutation).Delete("/campgrounds/{id}", campHandler.DeleteCampground)

		// レビュー管理
		r.With(mutation).Post("/campgrounds/{id}/reviews", reviewHandler.CreateReview)
		r.With(mutation).Delete("/campgrounds/{id}/reviews/{reviewID}", reviewHandler.DeleteReview)

		// プロフィール
		r.Get("/api/profile", userHandler.GetProfile)
	})

	// 詳細表示は公開ルート。同一パターンの変更系メソッドは保護グループ側で登録済み
	r.Get("/campgrounds/{id}", campHandler.GetCampground)

	return r
}
