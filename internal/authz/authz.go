// Package authz はリソースの所有権チェックを提供する。
//
// 変更・削除の可否は「リクエストの認証済みsubject」と「リソースに保存された
// 作成者のsubject」の文字列一致のみで判定する。ルートごとに重複しがちな
// チェックを単一のcapabilityチェックに集約している。
package authz

import "github.com/hitoshi/campman/internal/model"

// Owned は作成者を持つリソースのインターフェース。
// OwnerIDは作成時に設定された外部IdPのsubject識別子を返す。
type Owned interface {
	OwnerID() string
}

// CanMutate はsubjectがリソースを変更・削除できるかを判定する。
// subjectが空の場合は常にfalse。
func CanMutate(subject string, resource Owned) bool {
	if subject == "" || resource == nil {
		return false
	}
	return resource.OwnerID() == subject
}

// RequireOwner はsubjectがリソースの作成者でない場合に
// PERMISSION_DENIEDエラーを返す。作成者であればnilを返す。
func RequireOwner(subject string, resource Owned) *model.APIError {
	if !CanMutate(subject, resource) {
		return model.NewPermissionDeniedError()
	}
	return nil
}
