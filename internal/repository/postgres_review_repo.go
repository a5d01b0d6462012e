package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/campman/internal/model"
)

// PostgresReviewRepo はPostgreSQLを使用したレビューリポジトリ。
type PostgresReviewRepo struct {
	db *sql.DB
}

// NewPostgresReviewRepo はPostgresReviewRepoを生成する。
func NewPostgresReviewRepo(db *sql.DB) *PostgresReviewRepo {
	return &PostgresReviewRepo{db: db}
}

// FindByID は指定IDのレビューを取得する。見つからない場合はnilを返す。
func (r *PostgresReviewRepo) FindByID(ctx context.Context, id string) (*model.Review, error) {
	review := &model.Review{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, body, rating, author_id, created_at FROM reviews WHERE id = $1`,
		id,
	).Scan(&review.ID, &review.Body, &review.Rating, &review.AuthorID, &review.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}

	return review, nil
}

// ListByCampgroundID はキャンプ場に紐付くレビューを表示順（position昇順）で返す。
func (r *PostgresReviewRepo) ListByCampgroundID(ctx context.Context, campgroundID string) ([]*model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rv.id, rv.body, rv.rating, rv.author_id, rv.created_at
		 FROM reviews rv
		 JOIN campground_reviews cr ON cr.review_id = rv.id
		 WHERE cr.campground_id = $1
		 ORDER BY cr.position ASC`,
		campgroundID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*model.Review{}
	for rows.Next() {
		review := &model.Review{}
		if err := rows.Scan(&review.ID, &review.Body, &review.Rating, &review.AuthorID, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// Create はレビューを作成する。
func (r *PostgresReviewRepo) Create(ctx context.Context, review *model.Review) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, body, rating, author_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		review.ID, review.Body, review.Rating, review.AuthorID, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// Delete は指定IDのレビューを削除する。存在しない場合もエラーにしない。
func (r *PostgresReviewRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ReviewRepository = (*PostgresReviewRepo)(nil)
