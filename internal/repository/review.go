package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"biteclub/internal/model"
)

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts the review and bumps the commenter's review counter in one
// transaction.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reviews (user_id, business_id, business_title, content, image_key, image_b64, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	row := tx.QueryRowxContext(ctx, query,
		review.UserID,
		review.BusinessID,
		review.BusinessTitle,
		review.Content,
		review.ImageKey,
		review.ImageB64,
	)

	if err := row.Scan(&review.ID, &review.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	countQuery := `UPDATE users SET review_count = review_count + 1 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, countQuery, review.UserID); err != nil {
		return fmt.Errorf("failed to update review count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByUser lists a commenter's reviews newest first with cursor pagination
// (same limit+1 scheme as the follow listings).
func (r *reviewRepository) GetByUser(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.Review, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT rv.id, rv.user_id, u.username, rv.business_id, rv.business_title,
			       rv.content, rv.image_b64, rv.created_at
			FROM reviews rv
			JOIN users u ON u.id = rv.user_id
			WHERE rv.user_id = $1
			ORDER BY rv.created_at DESC
			LIMIT $2
		`
		args = []interface{}{userID, limit + 1}
	} else {
		query = `
			SELECT rv.id, rv.user_id, u.username, rv.business_id, rv.business_title,
			       rv.content, rv.image_b64, rv.created_at
			FROM reviews rv
			JOIN users u ON u.id = rv.user_id
			WHERE rv.user_id = $1 AND rv.created_at < $2
			ORDER BY rv.created_at DESC
			LIMIT $3
		`
		args = []interface{}{userID, cursor, limit + 1}
	}

	return r.selectReviews(ctx, query, args, limit)
}

// GetByBusiness lists reviews for a restaurant detail page, newest first.
func (r *reviewRepository) GetByBusiness(ctx context.Context, businessID string, cursor *time.Time, limit int) ([]model.Review, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT rv.id, rv.user_id, u.username, rv.business_id, rv.business_title,
			       rv.content, rv.image_b64, rv.created_at
			FROM reviews rv
			JOIN users u ON u.id = rv.user_id
			WHERE rv.business_id = $1
			ORDER BY rv.created_at DESC
			LIMIT $2
		`
		args = []interface{}{businessID, limit + 1}
	} else {
		query = `
			SELECT rv.id, rv.user_id, u.username, rv.business_id, rv.business_title,
			       rv.content, rv.image_b64, rv.created_at
			FROM reviews rv
			JOIN users u ON u.id = rv.user_id
			WHERE rv.business_id = $1 AND rv.created_at < $2
			ORDER BY rv.created_at DESC
			LIMIT $3
		`
		args = []interface{}{businessID, cursor, limit + 1}
	}

	return r.selectReviews(ctx, query, args, limit)
}

func (r *reviewRepository) selectReviews(ctx context.Context, query string, args []interface{}, limit int) ([]model.Review, *time.Time, error) {
	var reviews []model.Review
	err := r.db.SelectContext(ctx, &reviews, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	var nextCursor *time.Time
	if len(reviews) > limit {
		reviews = reviews[:limit]
		nextCursor = &reviews[len(reviews)-1].CreatedAt
	}

	return reviews, nextCursor, nil
}
