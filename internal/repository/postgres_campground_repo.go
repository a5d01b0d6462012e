package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/campman/internal/model"
)

// PostgresCampgroundRepo はPostgreSQLを使用したキャンプ場リポジトリ。
//
// レビューの参照シーケンスはcampground_reviewsテーブルのposition列で
// 挿入順を保持する。review_idのUNIQUE制約により、1件のレビューが
// 同時に複数のキャンプ場から参照されることはない。
type PostgresCampgroundRepo struct {
	db *sql.DB
}

// NewPostgresCampgroundRepo はPostgresCampgroundRepoを生成する。
func NewPostgresCampgroundRepo(db *sql.DB) *PostgresCampgroundRepo {
	return &PostgresCampgroundRepo{db: db}
}

// FindByID は指定IDのキャンプ場を取得する。見つからない場合はnilを返す。
func (r *PostgresCampgroundRepo) FindByID(ctx context.Context, id string) (*model.Campground, error) {
	campground := &model.Campground{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, location, image_url, price, author_id, created_at, updated_at
		 FROM campgrounds WHERE id = $1`,
		id,
	).Scan(
		&campground.ID, &campground.Title, &campground.Description, &campground.Location,
		&campground.ImageURL, &campground.Price, &campground.AuthorID,
		&campground.CreatedAt, &campground.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find campground by ID: %w", err)
	}

	return campground, nil
}

// FindByIDWithReviews は指定IDのキャンプ場をレビュー一覧付きで取得する。
// レビューはcampground_reviews.positionの昇順（＝挿入順）で並ぶ。
func (r *PostgresCampgroundRepo) FindByIDWithReviews(ctx context.Context, id string) (*model.CampgroundWithReviews, error) {
	campground, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campground == nil {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT rv.id, rv.body, rv.rating, rv.author_id, rv.created_at
		 FROM reviews rv
		 JOIN campground_reviews cr ON cr.review_id = rv.id
		 WHERE cr.campground_id = $1
		 ORDER BY cr.position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list campground reviews: %w", err)
	}
	defer rows.Close()

	result := &model.CampgroundWithReviews{Campground: *campground, Reviews: []*model.Review{}}
	for rows.Next() {
		review := &model.Review{}
		if err := rows.Scan(&review.ID, &review.Body, &review.Rating, &review.AuthorID, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		result.Reviews = append(result.Reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return result, nil
}

// List は全キャンプ場を作成日時の降順で返す。
func (r *PostgresCampgroundRepo) List(ctx context.Context) ([]*model.Campground, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, location, image_url, price, author_id, created_at, updated_at
		 FROM campgrounds
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list campgrounds: %w", err)
	}
	defer rows.Close()

	campgrounds := []*model.Campground{}
	for rows.Next() {
		c := &model.Campground{}
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Location,
			&c.ImageURL, &c.Price, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan campground: %w", err)
		}
		campgrounds = append(campgrounds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate campgrounds: %w", err)
	}

	return campgrounds, nil
}

// Create はキャンプ場を作成する。
func (r *PostgresCampgroundRepo) Create(ctx context.Context, campground *model.Campground) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campgrounds (id, title, description, location, image_url, price, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		campground.ID, campground.Title, campground.Description, campground.Location,
		campground.ImageURL, campground.Price, campground.AuthorID,
		campground.CreatedAt, campground.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert campground: %w", err)
	}
	return nil
}

// Update はキャンプ場の編集可能フィールドを更新する。
// author_idは更新対象に含めない。
func (r *PostgresCampgroundRepo) Update(ctx context.Context, campground *model.Campground) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE campgrounds
		 SET title = $2, description = $3, location = $4, image_url = $5, price = $6, updated_at = $7
		 WHERE id = $1`,
		campground.ID, campground.Title, campground.Description, campground.Location,
		campground.ImageURL, campground.Price, campground.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update campground: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("campground not found: %s", campground.ID)
	}
	return nil
}

// DeleteWithReviews はキャンプ場と、その参照シーケンスおよび参照されている
// 全レビューを同一トランザクションで削除する。
// カスケード削除により孤児レビューは残らない。
func (r *PostgresCampgroundRepo) DeleteWithReviews(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 参照されているレビュー本体を削除
	_, err = tx.ExecContext(ctx,
		`DELETE FROM reviews
		 WHERE id IN (SELECT review_id FROM campground_reviews WHERE campground_id = $1)`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete referenced reviews: %w", err)
	}

	// 参照シーケンスを削除
	_, err = tx.ExecContext(ctx,
		`DELETE FROM campground_reviews WHERE campground_id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete review references: %w", err)
	}

	// キャンプ場本体を削除
	result, err := tx.ExecContext(ctx,
		`DELETE FROM campgrounds WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete campground: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("campground not found: %s", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AppendReview はキャンプ場の参照シーケンス末尾にレビュー参照を追加する。
// positionは既存の最大値+1（空なら0）で採番され、挿入順＝表示順となる。
func (r *PostgresCampgroundRepo) AppendReview(ctx context.Context, campgroundID, reviewID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campground_reviews (campground_id, review_id, position)
		 SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
		 FROM campground_reviews WHERE campground_id = $1`,
		campgroundID, reviewID,
	)
	if err != nil {
		return fmt.Errorf("failed to append review reference: %w", err)
	}
	return nil
}

// RemoveReview はキャンプ場の参照シーケンスからレビュー参照を取り除く。
func (r *PostgresCampgroundRepo) RemoveReview(ctx context.Context, campgroundID, reviewID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM campground_reviews WHERE campground_id = $1 AND review_id = $2`,
		campgroundID, reviewID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove review reference: %w", err)
	}
	return nil
}

// compile-time interface check
var _ CampgroundRepository = (*PostgresCampgroundRepo)(nil)
