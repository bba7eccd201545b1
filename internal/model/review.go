package model

import (
	"errors"
	"time"
)

// Content length limits for a review body.
const (
	ReviewMinLen = 5
	ReviewMaxLen = 500
)

// Review is a restaurant review attributed to exactly one commenter.
// Reviews are immutable once created.
type Review struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Username      string    `db:"username" json:"username"`
	BusinessID    string    `db:"business_id" json:"business_id"`
	BusinessTitle string    `db:"business_title" json:"business_title"`
	Content       string    `db:"content" json:"content"`
	ImageKey      *string   `db:"image_key" json:"-"`
	ImageB64      *string   `db:"image_b64" json:"image_b64"` // display cache, computed at write time
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// CreateReviewRequest carries the form fields of a review submission.
// The image, if any, arrives as a separate multipart part.
type CreateReviewRequest struct {
	BusinessID    string `json:"business_id" validate:"required"`
	BusinessTitle string `json:"business_title" validate:"required"`
	Content       string `json:"content" validate:"required,min=5,max=500"`
}

type ReviewListResponse struct {
	Reviews    []Review `json:"reviews"`
	NextCursor *string  `json:"next_cursor,omitempty"`
	HasMore    bool     `json:"has_more"`
}

// ErrReviewContentLength is returned when content is outside the 5-500 range
var ErrReviewContentLength = errors.New("review content must be between 5 and 500 characters")
