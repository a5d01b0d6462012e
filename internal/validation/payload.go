package validation

import "github.com/hitoshi/campman/internal/model"

// CampgroundDraftFromPayload はバリデーション通過済みのペイロードから
// CampgroundDraftを構築する。スキーマ外のフィールド（author等）は
// 一切読み取らない。Validateが違反なしを返した後にのみ呼ぶこと。
func CampgroundDraftFromPayload(payload map[string]any) model.CampgroundDraft {
	entity, _ := payload["campground"].(map[string]any)
	return model.CampgroundDraft{
		Title:       stringField(entity, "title"),
		Description: stringField(entity, "description"),
		Location:    stringField(entity, "location"),
		ImageURL:    stringField(entity, "image"),
		Price:       numberField(entity, "price"),
	}
}

// ReviewDraftFromPayload はバリデーション通過済みのペイロードから
// ReviewDraftを構築する。作成者はペイロードからは決して採らない。
func ReviewDraftFromPayload(payload map[string]any) model.ReviewDraft {
	entity, _ := payload["review"].(map[string]any)
	return model.ReviewDraft{
		Body:   stringField(entity, "body"),
		Rating: int(numberField(entity, "rating")),
	}
}

func stringField(entity map[string]any, name string) string {
	s, _ := entity[name].(string)
	return s
}

func numberField(entity map[string]any, name string) float64 {
	switch v := entity[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
