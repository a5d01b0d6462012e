// Package review はレビューのドメインロジックを提供する。
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/campman/internal/authz"
	"github.com/hitoshi/campman/internal/metrics"
	"github.com/hitoshi/campman/internal/model"
	"github.com/hitoshi/campman/internal/repository"
	"github.com/hitoshi/campman/internal/security"
	"github.com/hitoshi/campman/internal/validation"
)

// Service はレビューの作成・削除のサービス層。
type Service struct {
	reviewRepo repository.ReviewRepository
	campRepo   repository.CampgroundRepository
	sanitizer  security.ContentSanitizerService
	collector  metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	reviewRepo repository.ReviewRepository,
	campRepo repository.CampgroundRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		reviewRepo: reviewRepo,
		campRepo:   campRepo,
		sanitizer:  sanitizer,
		collector:  collector,
	}
}

// Create はキャンプ場にレビューを追加する。
//
// レビュー本体の作成と参照シーケンスへの追加は2段階で行う。
// 参照の追加に失敗した場合は作成済みレビューを取り除いてから
// エラーを返し、どこからも参照されないレビューを残さない。
// 作成者は認証済みsubjectから設定する。
func (s *Service) Create(ctx context.Context, subject, campgroundID string, payload map[string]any) (*model.Review, error) {
	campground, err := s.campRepo.FindByID(ctx, campgroundID)
	if err != nil {
		return nil, fmt.Errorf("キャンプ場の取得に失敗しました: %w", err)
	}
	if campground == nil {
		return nil, model.NewCampgroundNotFoundError(campgroundID)
	}

	if apiErr := validation.ReviewSchema.ValidateOrError(payload); apiErr != nil {
		s.collector.RecordValidationFailure("review")
		return nil, apiErr
	}

	draft := validation.ReviewDraftFromPayload(payload)

	review := &model.Review{
		ID:        uuid.New().String(),
		Body:      s.sanitizer.Sanitize(draft.Body),
		Rating:    draft.Rating,
		AuthorID:  subject,
		CreatedAt: time.Now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("レビューの作成に失敗しました: %w", err)
	}

	if err := s.campRepo.AppendReview(ctx, campgroundID, review.ID); err != nil {
		// 参照に失敗したレビューは削除を試みる。削除自体の失敗は
		// ログに残すのみで、呼び出し元には参照失敗を返す。
		if delErr := s.reviewRepo.Delete(ctx, review.ID); delErr != nil {
			slog.Error("failed to clean up unreferenced review",
				slog.String("review_id", review.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("レビューの紐付けに失敗しました: %w", err)
	}

	s.collector.RecordReviewCreated()
	slog.Info("review created",
		slog.String("review_id", review.ID),
		slog.String("campground_id", campgroundID),
		slog.String("author", subject),
	)

	return review, nil
}

// Delete はレビューを削除する。レビューの作成者本人のみが実行できる。
// キャンプ場の所有者であってもレビューの作成者でなければ削除できない。
//
// 参照シーケンスからの取り外しとレビュー本体の削除は2段階で行う。
// 取り外しに失敗してもログに残して削除を続行する。取り外しだけが
// 成功して本体が残った場合も、参照の検証で孤児として扱われる。
func (s *Service) Delete(ctx context.Context, subject, campgroundID, reviewID string) error {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("レビューの取得に失敗しました: %w", err)
	}
	if review == nil {
		return model.NewReviewNotFoundError(reviewID)
	}

	if apiErr := authz.RequireOwner(subject, review); apiErr != nil {
		s.collector.RecordPermissionDenied()
		return apiErr
	}

	if err := s.campRepo.RemoveReview(ctx, campgroundID, reviewID); err != nil {
		slog.Error("failed to detach review from campground",
			slog.String("review_id", reviewID),
			slog.String("campground_id", campgroundID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("レビューの削除に失敗しました: %w", err)
	}

	s.collector.RecordReviewDeleted()
	slog.Info("review deleted",
		slog.String("review_id", reviewID),
		slog.String("campground_id", campgroundID),
		slog.String("author", subject),
	)

	return nil
}
