// Package model はドメインモデルを定義する。
package model

import "time"

// User は外部IdPで認証されたユーザーのローカル投影を表す。
// 認証情報の正はあくまで外部IdP側にあり、コールバックのたびに
// Name/Emailが最新値で上書きされる（冪等な同期）。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// (Provider, ProviderUserID)の組が外部subjectを一意に識別する。
// 複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// Subjectには外部IdPのsubject識別子を保持し、所有権チェックに使用する。
type Session struct {
	ID        string
	UserID    string
	Subject   string
	ExpiresAt time.Time
	CreatedAt time.Time
}
