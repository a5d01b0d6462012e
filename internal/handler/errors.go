package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/campman/internal/flash"
	"github.com/hitoshi/campman/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// 読み取り系ハンドラー向け。変更系はhandleMutationErrorを使う。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidImageURL:
		return http.StatusBadRequest
	case model.ErrCodeAuthenticationRequired:
		return http.StatusUnauthorized
	case model.ErrCodePermissionDenied:
		return http.StatusForbidden
	case model.ErrCodeCampgroundNotFound, model.ErrCodeReviewNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleMutationError は変更系操作のエラーをフラッシュ付きリダイレクトまたは
// エラーレスポンスに変換する。
//
//   - 所有権エラー: リソース詳細ページへ303 + エラーフラッシュ。
//     エラーページを出さず、元のビューに通知を載せて戻す。
//   - 未検出エラー: フォールバック先（一覧または詳細）へ303 + エラーフラッシュ。
//     二重送信の後半などで起こるため利用者の失敗として扱わない。
//   - バリデーション・画像URLエラー: 400のJSONを返し、フォーム再表示に使わせる。
//
// detailPath は対象リソースの詳細ページ、fallbackPath は対象が消えていた
// 場合の戻り先を指定する。
func handleMutationError(w http.ResponseWriter, r *http.Request, err error, detailPath, fallbackPath string) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		handleServiceError(w, err)
		return
	}

	switch apiErr.Code {
	case model.ErrCodePermissionDenied:
		flash.Set(w, flash.KindError, apiErr.Message)
		http.Redirect(w, r, detailPath, http.StatusSeeOther)
	case model.ErrCodeCampgroundNotFound, model.ErrCodeReviewNotFound:
		flash.Set(w, flash.KindError, apiErr.Message)
		http.Redirect(w, r, fallbackPath, http.StatusSeeOther)
	default:
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
	}
}
