// Package model はドメインモデルを定義する。
package model

import "time"

// Campground はキャンプ場のリスティングを表す。
// AuthorIDには外部IdPのsubject識別子（文字列）を保持する。
// 作成時に認証済みユーザーのsubjectから一度だけ設定され、以降は変更されない。
type Campground struct {
	ID          string
	Title       string
	Description string
	Location    string
	ImageURL    string
	Price       float64
	AuthorID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID は作成者のsubject識別子を返す。
// 所有権チェック（authz.Owned）の実装。
func (c *Campground) OwnerID() string {
	return c.AuthorID
}

// CampgroundWithReviews はキャンプ場と紐付くレビュー一覧を結合したモデル。
// Reviewsは参照シーケンスの挿入順（＝表示順）で並ぶ。
type CampgroundWithReviews struct {
	Campground
	Reviews []*Review
}

// CampgroundDraft はバリデーション通過後の作成・更新ペイロードを表す。
// AuthorIDを含まない点に注意。作成者はリクエストボディからは決して採らない。
type CampgroundDraft struct {
	Title       string
	Description string
	Location    string
	ImageURL    string
	Price       float64
}
