// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, campground, review, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrCodePermissionDenied       = "PERMISSION_DENIED"
	ErrCodeCampgroundNotFound     = "CAMPGROUND_NOT_FOUND"
	ErrCodeReviewNotFound         = "REVIEW_NOT_FOUND"
	ErrCodeInvalidImageURL        = "INVALID_IMAGE_URL"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
)

// NewValidationFailedError はバリデーション違反エラーを生成する。
// detailには各フィールド違反メッセージをカンマ区切りで連結した文字列を渡す。
func NewValidationFailedError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", detail),
		Category: "validation",
		Action:   "入力内容を確認して再度送信してください。",
	}
}

// NewAuthenticationRequiredError は未認証エラーを生成する。
func NewAuthenticationRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationRequired,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewPermissionDeniedError は所有権チェック失敗エラーを生成する。
// 作成者以外によるリソースの変更・削除要求に対して返す。
func NewPermissionDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "自分が作成したリソースに対してのみ変更・削除ができます。",
	}
}

// NewCampgroundNotFoundError はキャンプ場未検出エラーを生成する。
func NewCampgroundNotFoundError(campgroundID string) *APIError {
	return &APIError{
		Code:     ErrCodeCampgroundNotFound,
		Message:  fmt.Sprintf("指定されたキャンプ場が見つかりません: %s", campgroundID),
		Category: "campground",
		Action:   "キャンプ場一覧から選び直してください。",
	}
}

// NewReviewNotFoundError はレビュー未検出エラーを生成する。
func NewReviewNotFoundError(reviewID string) *APIError {
	return &APIError{
		Code:     ErrCodeReviewNotFound,
		Message:  fmt.Sprintf("指定されたレビューが見つかりません: %s", reviewID),
		Category: "review",
		Action:   "キャンプ場の詳細ページを再読み込みしてください。",
	}
}

// NewInvalidImageURLError は画像URL検証失敗エラーを生成する。
func NewInvalidImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageURL,
		Message:  fmt.Sprintf("画像URLが無効です: %s", reason),
		Category: "validation",
		Action:   "http:// または https:// で始まる公開画像のURLを入力してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
