package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/campman/internal/authz"
	"github.com/hitoshi/campman/internal/flash"
	"github.com/hitoshi/campman/internal/middleware"
	"github.com/hitoshi/campman/internal/model"
)

// CampgroundServiceInterface はキャンプ場ハンドラーが必要とするサービスインターフェース。
type CampgroundServiceInterface interface {
	// List は全キャンプ場を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Campground, error)
	// Get はキャンプ場をレビュー一覧付きで取得する。
	Get(ctx context.Context, id string) (*model.CampgroundWithReviews, error)
	// Create はキャンプ場を新規作成する。作成者はsubjectから設定される。
	Create(ctx context.Context, subject string, payload map[string]any) (*model.Campground, error)
	// Update は既存キャンプ場を更新する。作成者本人のみ。
	Update(ctx context.Context, subject, id string, payload map[string]any) (*model.Campground, error)
	// Delete はキャンプ場と紐付くレビューを削除する。作成者本人のみ。
	Delete(ctx context.Context, subject, id string) error
}

// CampgroundHandler はキャンプ場CRUDのHTTPハンドラー。
type CampgroundHandler struct {
	service CampgroundServiceInterface
}

// NewCampgroundHandler はCampgroundHandlerを生成する。
func NewCampgroundHandler(service CampgroundServiceInterface) *CampgroundHandler {
	return &CampgroundHandler{
		service: service,
	}
}

// campgroundResponse はキャンプ場のAPIレスポンス。
type campgroundResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	AuthorID    string  `json:"author_id"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// reviewResponse はレビューのAPIレスポンス。
type reviewResponse struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	Rating    int    `json:"rating"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

// campgroundDetailResponse はレビュー一覧付きのキャンプ場レスポンス。
type campgroundDetailResponse struct {
	campgroundResponse
	Reviews []reviewResponse `json:"reviews"`
}

// formContextResponse はフォーム描画用のコンテキストレスポンス。
// 新規作成時はゼロ値、編集時は既存の値が入る。
type formContextResponse struct {
	Campground campgroundFormFields `json:"campground"`
}

// campgroundFormFields はフォームの初期値。
type campgroundFormFields struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
}

// ListCampgrounds は全キャンプ場の一覧を返す。
// GET /campgrounds
func (h *CampgroundHandler) ListCampgrounds(w http.ResponseWriter, r *http.Request) {
	campgrounds, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]campgroundResponse, 0, len(campgrounds))
	for _, c := range campgrounds {
		items = append(items, toCampgroundResponse(c))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"campgrounds": items,
	})
}

// GetCampground はキャンプ場の詳細をレビュー一覧付きで返す。
// GET /campgrounds/{id}
func (h *CampgroundHandler) GetCampground(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toCampgroundDetailResponse(detail))
}

// NewCampground は新規作成フォームのコンテキストを返す。
// GET /campgrounds/new
//
// 認証必須。未認証の場合はセッションミドルウェアがログインへ誘導し、
// ログイン完了後にこのパスへ復帰する。
func (h *CampgroundHandler) NewCampground(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formContextResponse{})
}

// EditCampground は編集フォームのコンテキストを既存の値付きで返す。
// GET /campgrounds/{id}/edit
//
// 作成者本人のみがアクセスできる。他人のリソースの場合は詳細ページへ
// エラーフラッシュ付きでリダイレクトする。
func (h *CampgroundHandler) EditCampground(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationRequiredError())
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleMutationError(w, r, err, "/campgrounds/"+id, "/campgrounds")
		return
	}

	if apiErr := authz.RequireOwner(subject, &detail.Campground); apiErr != nil {
		flash.Set(w, flash.KindError, apiErr.Message)
		http.Redirect(w, r, "/campgrounds/"+id, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formContextResponse{
		Campground: campgroundFormFields{
			Title:       detail.Title,
			Description: detail.Description,
			Location:    detail.Location,
			ImageURL:    detail.ImageURL,
			Price:       detail.Price,
		},
	})
}

// CreateCampground はキャンプ場を新規作成する。
// POST /campgrounds
//
// 成功時は作成した詳細ページへ303リダイレクトし、成功フラッシュを設定する。
func (h *CampgroundHandler) CreateCampground(w http.ResponseWriter, r *http.Request) {
	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationRequiredError())
		return
	}

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	campground, err := h.service.Create(r.Context(), subject, payload)
	if err != nil {
		handleMutationError(w, r, err, "/campgrounds", "/campgrounds")
		return
	}

	flash.Set(w, flash.KindSuccess, "キャンプ場を登録しました。")
	http.Redirect(w, r, "/campgrounds/"+campground.ID, http.StatusSeeOther)
}

// UpdateCampground は既存キャンプ場を更新する。
// PUT /campgrounds/{id}
func (h *CampgroundHandler) UpdateCampground(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationRequiredError())
		return
	}

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	campground, err := h.service.Update(r.Context(), subject, id, payload)
	if err != nil {
		handleMutationError(w, r, err, "/campgrounds/"+id, "/campgrounds")
		return
	}

	flash.Set(w, flash.KindSuccess, "キャンプ場を更新しました。")
	http.Redirect(w, r, "/campgrounds/"+campground.ID, http.StatusSeeOther)
}

// DeleteCampground はキャンプ場と紐付くレビューを削除する。
// DELETE /campgrounds/{id}
func (h *CampgroundHandler) DeleteCampground(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationRequiredError())
		return
	}

	if err := h.service.Delete(r.Context(), subject, id); err != nil {
		handleMutationError(w, r, err, "/campgrounds/"+id, "/campgrounds")
		return
	}

	flash.Set(w, flash.KindSuccess, "キャンプ場を削除しました。")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

// --- ヘルパー関数 ---

// decodePayload はリクエストボディをネスト形式のペイロードとして読み取る。
// 解析に失敗した場合はエラーレスポンスを書き込み、falseを返す。
func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return nil, false
	}
	return payload, true
}

// toCampgroundResponse はmodel.CampgroundからAPIレスポンスに変換する。
func toCampgroundResponse(c *model.Campground) campgroundResponse {
	return campgroundResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Location:    c.Location,
		ImageURL:    c.ImageURL,
		Price:       c.Price,
		AuthorID:    c.AuthorID,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

// toCampgroundDetailResponse はレビュー一覧付きのレスポンスに変換する。
// レビューが無い場合も空配列を返す（nullにしない）。
func toCampgroundDetailResponse(detail *model.CampgroundWithReviews) campgroundDetailResponse {
	reviews := make([]reviewResponse, 0, len(detail.Reviews))
	for _, rv := range detail.Reviews {
		reviews = append(reviews, reviewResponse{
			ID:        rv.ID,
			Body:      rv.Body,
			Rating:    rv.Rating,
			AuthorID:  rv.AuthorID,
			CreatedAt: rv.CreatedAt.Format(time.RFC3339),
		})
	}
	return campgroundDetailResponse{
		campgroundResponse: toCampgroundResponse(&detail.Campground),
		Reviews:            reviews,
	}
}
