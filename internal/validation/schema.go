// Package validation はミューテーションペイロードの宣言的バリデーションを提供する。
//
// エンティティごとのスキーマを「データ」として定義し、汎用のバリデータが
// 評価する。違反はフィールド単位で全件収集され、永続化層に到達する前に
// リクエスト全体が拒否される（all-or-nothing）。スキーマに無い余分な
// フィールドは拒否せず無視する。
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/hitoshi/campman/internal/model"
)

// FieldKind はフィールドの期待型を表す。
type FieldKind string

const (
	// KindString は文字列フィールド。
	KindString FieldKind = "string"
	// KindNumber は数値フィールド（小数可）。
	KindNumber FieldKind = "number"
	// KindInteger は整数フィールド。
	KindInteger FieldKind = "integer"
)

// FieldRule は1フィールド分のバリデーションルール。
type FieldRule struct {
	Name     string
	Kind     FieldKind
	Required bool
	NonEmpty bool     // KindStringのみ: 空文字・空白のみを拒否する
	Min      *float64 // KindNumber/KindIntegerのみ: 下限（含む）
	Max      *float64 // KindNumber/KindIntegerのみ: 上限（含む）
}

// Schema はエンティティ1種類分のバリデーションスキーマ。
type Schema struct {
	Entity string // ペイロードのトップレベルキー（"campground", "review"）
	Fields []FieldRule
}

// Violation は1件のフィールド違反を表す。
type Violation struct {
	Field   string
	Message string
}

func minOf(v float64) *float64 { return &v }
func maxOf(v float64) *float64 { return &v }

// CampgroundSchema はキャンプ場の作成・更新ペイロードのスキーマ。
// title, image, price, description, locationの全てが必須。
var CampgroundSchema = Schema{
	Entity: "campground",
	Fields: []FieldRule{
		{Name: "title", Kind: KindString, Required: true, NonEmpty: true},
		{Name: "image", Kind: KindString, Required: true, NonEmpty: true},
		{Name: "price", Kind: KindNumber, Required: true, Min: minOf(0)},
		{Name: "description", Kind: KindString, Required: true, NonEmpty: true},
		{Name: "location", Kind: KindString, Required: true, NonEmpty: true},
	},
}

// ReviewSchema はレビュー作成ペイロードのスキーマ。
// ratingは1〜5の整数のみ許可する。
var ReviewSchema = Schema{
	Entity: "review",
	Fields: []FieldRule{
		{Name: "body", Kind: KindString, Required: true},
		{Name: "rating", Kind: KindInteger, Required: true, Min: minOf(1), Max: maxOf(5)},
	},
}

// Validate はペイロードをスキーマに対して検証し、全違反を返す。
// payloadには `{"campground": {...}}` のようなトップレベルのJSONオブジェクトを
// デコードしたmapを渡す。違反が無ければnilを返す。副作用は持たない。
func (s Schema) Validate(payload map[string]any) []Violation {
	var violations []Violation

	raw, ok := payload[s.Entity]
	if !ok || raw == nil {
		violations = append(violations, Violation{
			Field:   s.Entity,
			Message: fmt.Sprintf("%q は必須です", s.Entity),
		})
		return violations
	}

	entity, ok := raw.(map[string]any)
	if !ok {
		violations = append(violations, Violation{
			Field:   s.Entity,
			Message: fmt.Sprintf("%q はオブジェクトである必要があります", s.Entity),
		})
		return violations
	}

	for _, rule := range s.Fields {
		violations = append(violations, rule.check(entity)...)
	}

	return violations
}

// check は1ルール分の検証を行う。
func (r FieldRule) check(entity map[string]any) []Violation {
	value, present := entity[r.Name]
	if !present || value == nil {
		if r.Required {
			return []Violation{{Field: r.Name, Message: fmt.Sprintf("%q は必須です", r.Name)}}
		}
		return nil
	}

	switch r.Kind {
	case KindString:
		return r.checkString(value)
	case KindNumber, KindInteger:
		return r.checkNumber(value)
	default:
		return nil
	}
}

func (r FieldRule) checkString(value any) []Violation {
	s, ok := value.(string)
	if !ok {
		return []Violation{{Field: r.Name, Message: fmt.Sprintf("%q は文字列である必要があります", r.Name)}}
	}
	if r.NonEmpty && strings.TrimSpace(s) == "" {
		return []Violation{{Field: r.Name, Message: fmt.Sprintf("%q を空にすることはできません", r.Name)}}
	}
	return nil
}

func (r FieldRule) checkNumber(value any) []Violation {
	// encoding/jsonは数値をfloat64にデコードする
	n, ok := value.(float64)
	if !ok {
		// テストコードなどGoのリテラルから構築されたペイロードも受け付ける
		switch v := value.(type) {
		case int:
			n = float64(v)
		case int64:
			n = float64(v)
		default:
			return []Violation{{Field: r.Name, Message: fmt.Sprintf("%q は数値である必要があります", r.Name)}}
		}
	}

	if r.Kind == KindInteger && n != math.Trunc(n) {
		return []Violation{{Field: r.Name, Message: fmt.Sprintf("%q は整数である必要があります", r.Name)}}
	}
	if r.Min != nil && n < *r.Min {
		return []Violation{{Field: r.Name, Message: fmt.Sprintf("%q は %v 以上である必要があります", r.Name, *r.Min)}}
	}
	if r.Max != nil && n > *r.Max {
		return []Violation{{Field: r.Name, Message: fmt.Sprintf("%q は %v 以下である必要があります", r.Name, *r.Max)}}
	}
	return nil
}

// JoinViolations は違反メッセージをカンマ区切りで連結する。
func JoinViolations(violations []Violation) string {
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, ", ")
}

// ValidateOrError はスキーマ検証を行い、違反があれば全メッセージを
// カンマ区切りで連結したVALIDATION_FAILEDエラーを返す。
func (s Schema) ValidateOrError(payload map[string]any) *model.APIError {
	violations := s.Validate(payload)
	if len(violations) == 0 {
		return nil
	}
	return model.NewValidationFailedError(JoinViolations(violations))
}
