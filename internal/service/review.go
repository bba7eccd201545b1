package service

import (
	"context"
	"mime/multipart"
	"strings"
	"time"
	"unicode/utf8"

	"biteclub/internal/model"
	"biteclub/internal/repository"
)

// ReviewService creates and lists restaurant reviews.
type ReviewService struct {
	repo     repository.ReviewRepository
	userRepo repository.UserRepository
	images   ImageStore
}

func NewReviewService(repo repository.ReviewRepository, userRepo repository.UserRepository, images ImageStore) *ReviewService {
	return &ReviewService{
		repo:     repo,
		userRepo: userRepo,
		images:   images,
	}
}

// Create posts a review attributed to the authenticated actor. Content must
// be 5-500 characters. If an image part is present it is stored and its
// base64 display cache computed before the review row is written, so a review
// never references a half-finished upload. file may be nil.
func (s *ReviewService) Create(ctx context.Context, actorID int64, req *model.CreateReviewRequest, file multipart.File, header *multipart.FileHeader) (*model.Review, error) {
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.BusinessTitle = strings.TrimSpace(req.BusinessTitle)

	if req.BusinessID == "" {
		return nil, model.NewValidationError("business_id is required")
	}
	if req.BusinessTitle == "" {
		return nil, model.NewValidationError("business_title is required")
	}
	// Length is counted in characters, matching the schema's char_length CHECK.
	if n := utf8.RuneCountInString(req.Content); n < model.ReviewMinLen || n > model.ReviewMaxLen {
		return nil, model.ErrReviewContentLength
	}

	review := &model.Review{
		UserID:        actorID,
		BusinessID:    req.BusinessID,
		BusinessTitle: req.BusinessTitle,
		Content:       req.Content,
	}

	if file != nil {
		stored, err := s.images.StoreReviewImage(ctx, file, header)
		if err != nil {
			return nil, err
		}
		review.ImageKey = &stored.Key
		review.ImageB64 = &stored.B64
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	if user, err := s.userRepo.GetByID(ctx, actorID); err == nil {
		review.Username = user.Username
	}

	return review, nil
}

// ListByUser returns the named commenter's reviews, newest first.
func (s *ReviewService) ListByUser(ctx context.Context, username string, cursor *time.Time, limit int) (*model.ReviewListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	reviews, nextCursor, err := s.repo.GetByUser(ctx, user.ID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return buildReviewListResponse(reviews, nextCursor), nil
}

// ListByBusiness returns reviews for one restaurant, newest first.
func (s *ReviewService) ListByBusiness(ctx context.Context, businessID string, cursor *time.Time, limit int) (*model.ReviewListResponse, error) {
	reviews, nextCursor, err := s.repo.GetByBusiness(ctx, businessID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return buildReviewListResponse(reviews, nextCursor), nil
}

func buildReviewListResponse(reviews []model.Review, nextCursor *time.Time) *model.ReviewListResponse {
	var nextCursorStr *string
	if nextCursor != nil {
		str := nextCursor.Format(time.RFC3339Nano)
		nextCursorStr = &str
	}

	return &model.ReviewListResponse{
		Reviews:    reviews,
		NextCursor: nextCursorStr,
		HasMore:    nextCursor != nil,
	}
}
