// Package model はドメインモデルを定義する。
package model

import "time"

// Review はキャンプ場へのレビュー（評価＋本文）を表す。
// 1件のReviewは同時に1つのCampgroundからのみ参照される。
type Review struct {
	ID        string
	Body      string
	Rating    int // 1〜5の整数
	AuthorID  string
	CreatedAt time.Time
}

// OwnerID は作成者のsubject識別子を返す。
// レビューの削除可否はレビュー自身の作成者のみで判定する。
// キャンプ場の所有権はレビューに継承されない。
func (r *Review) OwnerID() string {
	return r.AuthorID
}

// ReviewDraft はバリデーション通過後のレビュー作成ペイロードを表す。
type ReviewDraft struct {
	Body   string
	Rating int
}
