package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/campman/internal/flash"
	"github.com/hitoshi/campman/internal/middleware"
	"github.com/hitoshi/campman/internal/model"
)

// ReviewServiceInterface はレビューハンドラーが必要とするサービスインターフェース。
type ReviewServiceInterface interface {
	// Create はキャンプ場にレビューを追加する。作成者はsubjectから設定される。
	Create(ctx context.Context, subject, campgroundID string, payload map[string]any) (*model.Review, error)
	// Delete はレビューをキャンプ場の一覧から外して削除する。レビュー作成者本人のみ。
	Delete(ctx context.Context, subject, campgroundID, reviewID string) error
}

// ReviewHandler はレビューのHTTPハンドラー。
type ReviewHandler struct {
	service ReviewServiceInterface
}

// NewReviewHandler はReviewHandlerを生成する。
func NewReviewHandler(service ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

// CreateReview はキャンプ場にレビューを投稿する。
// POST /campgrounds/{id}/reviews
//
// 成功時はキャンプ場の詳細ページへ303リダイレクトし、成功フラッシュを設定する。
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	campgroundID := chi.URLParam(r, "id")
	detailPath := "/campgrounds/" + campgroundID

	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationRequiredError())
		return
	}

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Create(r.Context(), subject, campgroundID, payload); err != nil {
		handleMutationError(w, r, err, detailPath, "/campgrounds")
		return
	}

	flash.Set(w, flash.KindSuccess, "レビューを投稿しました。")
	http.Redirect(w, r, detailPath, http.StatusSeeOther)
}

// DeleteReview はレビューを削除する。
// DELETE /campgrounds/{id}/reviews/{reviewID}
//
// 削除できるのはレビューの作成者本人のみ。キャンプ場の作成者であっても
// 他人のレビューは削除できない。
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	campgroundID := chi.URLParam(r, "id")
	reviewID := chi.URLParam(r, "reviewID")
	detailPath := "/campgrounds/" + campgroundID

	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationRequiredError())
		return
	}

	if err := h.service.Delete(r.Context(), subject, campgroundID, reviewID); err != nil {
		handleMutationError(w, r, err, detailPath, detailPath)
		return
	}

	flash.Set(w, flash.KindSuccess, "レビューを削除しました。")
	http.Redirect(w, r, detailPath, http.StatusSeeOther)
}
