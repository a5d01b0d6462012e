// Package flash はリダイレクトをまたぐワンショット通知を提供する。
//
// 通知はCookieに載せて次のリクエストまで運び、読み取った時点で破棄する。
// セッションストアのような共有状態は持たず、リクエストごとに完結する。
package flash

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const cookieName = "flash"

// Kind は通知の種別を表す。
type Kind string

const (
	// KindSuccess は成功通知。
	KindSuccess Kind = "success"
	// KindError はエラー通知。
	KindError Kind = "error"
)

// Message は1件のワンショット通知。
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Set は次のレスポンス描画で1回だけ表示される通知を設定する。
// メッセージはCookieセーフにするためbase64urlでエンコードする。
func Set(w http.ResponseWriter, kind Kind, text string) {
	value := string(kind) + ":" + base64.RawURLEncoding.EncodeToString([]byte(text))
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   300, // 5分。リダイレクト直後に消費される想定
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Take は保留中の通知を取り出し、Cookieを破棄する。
// 通知が無い場合はnilを返す。壊れたCookieは黙って破棄する。
func Take(w http.ResponseWriter, r *http.Request) *Message {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	// 読み取りと同時にCookieをクリアする
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	kind, encoded, ok := strings.Cut(cookie.Value, ":")
	if !ok {
		return nil
	}
	text, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}

	switch Kind(kind) {
	case KindSuccess, KindError:
		return &Message{Kind: Kind(kind), Text: string(text)}
	default:
		return nil
	}
}
