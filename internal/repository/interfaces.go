// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/campman/internal/model"
)

// CampgroundRepository はキャンプ場データの永続化インターフェース。
type CampgroundRepository interface {
	// FindByID は指定IDのキャンプ場を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Campground, error)

	// FindByIDWithReviews は指定IDのキャンプ場をレビュー一覧付きで取得する。
	// レビューは参照シーケンスの挿入順に並ぶ。見つからない場合はnilを返す。
	FindByIDWithReviews(ctx context.Context, id string) (*model.CampgroundWithReviews, error)

	// List は全キャンプ場を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Campground, error)

	// Create はキャンプ場を作成する。
	Create(ctx context.Context, campground *model.Campground) error

	// Update はキャンプ場の編集可能フィールドを更新する。
	// author_idは決して更新しない（作成時に一度だけ設定される）。
	Update(ctx context.Context, campground *model.Campground) error

	// DeleteWithReviews はキャンプ場と、その参照シーケンスおよび
	// 参照されている全レビューを同一トランザクションで削除する。
	DeleteWithReviews(ctx context.Context, id string) error

	// AppendReview はキャンプ場の参照シーケンス末尾にレビュー参照を追加する。
	AppendReview(ctx context.Context, campgroundID, reviewID string) error

	// RemoveReview はキャンプ場の参照シーケンスからレビュー参照を取り除く。
	// 参照が存在しない場合もエラーにしない（冪等）。
	RemoveReview(ctx context.Context, campgroundID, reviewID string) error
}

// ReviewRepository はレビューデータの永続化インターフェース。
type ReviewRepository interface {
	// FindByID は指定IDのレビューを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Review, error)

	// ListByCampgroundID はキャンプ場に紐付くレビューを表示順で返す。
	ListByCampgroundID(ctx context.Context, campgroundID string) ([]*model.Review, error)

	// Create はレビューを作成する。
	Create(ctx context.Context, review *model.Review) error

	// Delete は指定IDのレビューを削除する。
	// レビューが存在しない場合もエラーにしない（冪等）。
	Delete(ctx context.Context, id string) error
}

// UserRepository はユーザー投影データの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// UpdateProfile はユーザーのname/emailをIdPの最新値で上書きする。
	// 認証コールバックごとに呼ばれる冪等な同期処理。
	UpdateProfile(ctx context.Context, id, name, email string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
