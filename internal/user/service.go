// Package user はユーザープロフィールのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"

	"github.com/hitoshi/campman/internal/model"
	"github.com/hitoshi/campman/internal/repository"
)

// Profile は画面表示用のユーザープロフィール。
// ローカル投影のname/emailは認証のたびにIdPの最新値へ同期されるため、
// ここで返る値は直近ログイン時点のIdPの値と一致する。
type Profile struct {
	ID    string
	Name  string
	Email string
}

// Service はユーザープロフィールのサービス層。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// GetProfile は指定ユーザーのプロフィールを返す。
// ユーザーが存在しない場合はUSER_NOT_FOUNDエラーを返す。
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}

	return &Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}, nil
}
