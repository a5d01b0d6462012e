// Package campground はキャンプ場リスティングのドメインロジックを提供する。
package campground

import (
	"context"
	"errors"
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

// Service はキャンプ場のCRUDのサービス層。
// バリデーション、サニタイズ、画像URL検証、所有権チェックを
// 永続化の前段に集約する。
type Service struct {
	campRepo   repository.CampgroundRepository
	sanitizer  security.ContentSanitizerService
	imageGuard security.ImageGuardService
	collector  metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	campRepo repository.CampgroundRepository,
	sanitizer security.ContentSanitizerService,
	imageGuard security.ImageGuardService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		campRepo:   campRepo,
		sanitizer:  sanitizer,
		imageGuard: imageGuard,
		collector:  collector,
	}
}

// List は全キャンプ場を作成日時の降順で返す。認証不要の公開操作。
func (s *Service) List(ctx context.Context) ([]*model.Campground, error) {
	campgrounds, err := s.campRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("キャンプ場一覧の取得に失敗しました: %w", err)
	}
	return campgrounds, nil
}

// Get は指定IDのキャンプ場をレビュー一覧付きで返す。認証不要の公開操作。
// 存在しない場合はCAMPGROUND_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.CampgroundWithReviews, error) {
	campground, err := s.campRepo.FindByIDWithReviews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("キャンプ場の取得に失敗しました: %w", err)
	}
	if campground == nil {
		return nil, model.NewCampgroundNotFoundError(id)
	}
	return campground, nil
}

// Create はキャンプ場を新規作成する。
//
// ペイロードはスキーマ検証を通過した場合のみ受け入れる。作成者は
// 認証済みsubjectから設定し、ペイロードのauthorフィールドは無視する。
// 本文系フィールドはサニタイズし、画像URLはSSRF対策の検証を通す。
func (s *Service) Create(ctx context.Context, subject string, payload map[string]any) (*model.Campground, error) {
	if apiErr := validation.CampgroundSchema.ValidateOrError(payload); apiErr != nil {
		s.collector.RecordValidationFailure("campground")
		return nil, apiErr
	}

	draft := validation.CampgroundDraftFromPayload(payload)

	if err := s.validateImage(ctx, draft.ImageURL); err != nil {
		return nil, err
	}

	now := time.Now()
	campground := &model.Campground{
		ID:          uuid.New().String(),
		Title:       s.sanitizer.Sanitize(draft.Title),
		Description: s.sanitizer.Sanitize(draft.Description),
		Location:    s.sanitizer.Sanitize(draft.Location),
		ImageURL:    draft.ImageURL,
		Price:       draft.Price,
		AuthorID:    subject,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.campRepo.Create(ctx, campground); err != nil {
		return nil, fmt.Errorf("キャンプ場の作成に失敗しました: %w", err)
	}

	s.collector.RecordCampgroundCreated()
	slog.Info("campground created",
		slog.String("campground_id", campground.ID),
		slog.String("author", subject),
	)

	return campground, nil
}

// Update は既存キャンプ場を更新する。作成者本人のみが実行できる。
// author_idは更新対象に含めない。
func (s *Service) Update(ctx context.Context, subject, id string, payload map[string]any) (*model.Campground, error) {
	campground, err := s.campRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("キャンプ場の取得に失敗しました: %w", err)
	}
	if campground == nil {
		return nil, model.NewCampgroundNotFoundError(id)
	}

	if apiErr := authz.RequireOwner(subject, campground); apiErr != nil {
		s.collector.RecordPermissionDenied()
		return nil, apiErr
	}

	if apiErr := validation.CampgroundSchema.ValidateOrError(payload); apiErr != nil {
		s.collector.RecordValidationFailure("campground")
		return nil, apiErr
	}

	draft := validation.CampgroundDraftFromPayload(payload)

	if err := s.validateImage(ctx, draft.ImageURL); err != nil {
		return nil, err
	}

	campground.Title = s.sanitizer.Sanitize(draft.Title)
	campground.Description = s.sanitizer.Sanitize(draft.Description)
	campground.Location = s.sanitizer.Sanitize(draft.Location)
	campground.ImageURL = draft.ImageURL
	campground.Price = draft.Price
	campground.UpdatedAt = time.Now()

	if err := s.campRepo.Update(ctx, campground); err != nil {
		return nil, fmt.Errorf("キャンプ場の更新に失敗しました: %w", err)
	}

	slog.Info("campground updated",
		slog.String("campground_id", campground.ID),
		slog.String("author", subject),
	)

	return campground, nil
}

// Delete はキャンプ場と紐付く全レビューを削除する。作成者本人のみが実行できる。
// レビューの連動削除は同一トランザクションで行われ、孤児レビューを残さない。
func (s *Service) Delete(ctx context.Context, subject, id string) error {
	campground, err := s.campRepo.FindByIDWithReviews(ctx, id)
	if err != nil {
		return fmt.Errorf("キャンプ場の取得に失敗しました: %w", err)
	}
	if campground == nil {
		return model.NewCampgroundNotFoundError(id)
	}

	if apiErr := authz.RequireOwner(subject, &campground.Campground); apiErr != nil {
		s.collector.RecordPermissionDenied()
		return apiErr
	}

	if err := s.campRepo.DeleteWithReviews(ctx, id); err != nil {
		return fmt.Errorf("キャンプ場の削除に失敗しました: %w", err)
	}

	s.collector.RecordCampgroundDeleted(len(campground.Reviews))
	slog.Info("campground deleted",
		slog.String("campground_id", id),
		slog.String("author", subject),
		slog.Int("cascaded_reviews", len(campground.Reviews)),
	)

	return nil
}

// validateImage は画像URLの静的検証とHEADプローブを行う。
//
// 静的検証の違反とContent-Type違反はINVALID_IMAGE_URLエラーになる。
// タイムアウトや接続失敗などネットワーク起因のプローブ失敗は
// 拒否せず、ログに残して受け入れる。
func (s *Service) validateImage(ctx context.Context, rawURL string) error {
	if err := s.imageGuard.ValidateURL(rawURL); err != nil {
		return model.NewInvalidImageURLError(err.Error())
	}
	if err := s.imageGuard.Probe(ctx, rawURL); err != nil {
		if errors.Is(err, security.ErrNotImage) {
			return model.NewInvalidImageURLError(err.Error())
		}
		slog.Warn("image probe failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
