package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"biteclub/internal/model"
)

type mockReviewRepository struct {
	createFn        func(ctx context.Context, review *model.Review) error
	getByUserFn     func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.Review, *time.Time, error)
	getByBusinessFn func(ctx context.Context, businessID string, cursor *time.Time, limit int) ([]model.Review, *time.Time, error)

	createCalls []*model.Review
}

func (m *mockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	m.createCalls = append(m.createCalls, review)
	if m.createFn != nil {
		return m.createFn(ctx, review)
	}
	review.ID = int64(len(m.createCalls))
	review.CreatedAt = time.Now()
	return nil
}

func (m *mockReviewRepository) GetByUser(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.Review, *time.Time, error) {
	if m.getByUserFn != nil {
		return m.getByUserFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockReviewRepository) GetByBusiness(ctx context.Context, businessID string, cursor *time.Time, limit int) ([]model.Review, *time.Time, error) {
	if m.getByBusinessFn != nil {
		return m.getByBusinessFn(ctx, businessID, cursor, limit)
	}
	return nil, nil, nil
}

// nopFile satisfies multipart.File for tests that only need a non-nil handle.
type nopFile struct{}

func (nopFile) Read(p []byte) (int, error)                   { return 0, nil }
func (nopFile) ReadAt(p []byte, off int64) (int, error)      { return 0, nil }
func (nopFile) Seek(offset int64, whence int) (int64, error) { return 0, nil }
func (nopFile) Close() error                                 { return nil }

func newTestReviewService(repo *mockReviewRepository, images ImageStore) *ReviewService {
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 1, Username: username}, nil
		},
	}
	return NewReviewService(repo, userRepo, images)
}

func TestReviewService_Create_ContentLength(t *testing.T) {
	// Limits count characters, not bytes: a multibyte rune is one character.
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"below minimum", strings.Repeat("x", 4), true},
		{"at minimum", strings.Repeat("x", 5), false},
		{"at maximum", strings.Repeat("x", 500), false},
		{"above maximum", strings.Repeat("x", 501), true},
		{"multibyte below minimum", strings.Repeat("é", 3), true},
		{"multibyte at minimum", strings.Repeat("é", 5), false},
		{"multibyte within maximum", strings.Repeat("é", 300), false},
		{"multibyte above maximum", strings.Repeat("é", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockReviewRepository{}
			svc := newTestReviewService(repo, &mockImageStore{})

			req := &model.CreateReviewRequest{
				BusinessID:    "yelp-biz-1",
				BusinessTitle: "Taco Palace",
				Content:       tt.content,
			}

			_, err := svc.Create(context.Background(), 1, req, nil, nil)

			if tt.wantErr {
				if !errors.Is(err, model.ErrReviewContentLength) {
					t.Errorf("error = %v, want %v", err, model.ErrReviewContentLength)
				}
				if len(repo.createCalls) != 0 {
					t.Error("invalid review must not be persisted")
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if len(repo.createCalls) != 1 {
				t.Errorf("Create called %d times, want 1", len(repo.createCalls))
			}
		})
	}
}

func TestReviewService_Create_RequiresBusiness(t *testing.T) {
	tests := []struct {
		name string
		req  *model.CreateReviewRequest
	}{
		{"missing business id", &model.CreateReviewRequest{BusinessTitle: "Taco Palace", Content: "decent tacos"}},
		{"missing business title", &model.CreateReviewRequest{BusinessID: "yelp-biz-1", Content: "decent tacos"}},
		{"whitespace business id", &model.CreateReviewRequest{BusinessID: "   ", BusinessTitle: "Taco Palace", Content: "decent tacos"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockReviewRepository{}
			svc := newTestReviewService(repo, &mockImageStore{})

			_, err := svc.Create(context.Background(), 1, tt.req, nil, nil)

			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error = %v, want a ValidationError", err)
			}
		})
	}
}

func TestReviewService_Create_Attribution(t *testing.T) {
	repo := &mockReviewRepository{}
	svc := newTestReviewService(repo, &mockImageStore{})

	req := &model.CreateReviewRequest{
		BusinessID:    "yelp-biz-1",
		BusinessTitle: "Taco Palace",
		Content:       "best al pastor in town",
	}

	review, err := svc.Create(context.Background(), 42, req, nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if review.UserID != 42 {
		t.Errorf("review.UserID = %d, want 42", review.UserID)
	}
	if review.Username != "alice" {
		t.Errorf("review.Username = %q, want the author's username", review.Username)
	}
	if review.BusinessID != "yelp-biz-1" || review.BusinessTitle != "Taco Palace" {
		t.Errorf("business fields = (%q, %q), want the submitted values", review.BusinessID, review.BusinessTitle)
	}
	if review.ImageKey != nil {
		t.Error("review without an upload must not carry an image key")
	}
}

func TestReviewService_Create_WithImage(t *testing.T) {
	repo := &mockReviewRepository{}
	svc := newTestReviewService(repo, &mockImageStore{})

	req := &model.CreateReviewRequest{
		BusinessID:    "yelp-biz-1",
		BusinessTitle: "Taco Palace",
		Content:       "photogenic plating",
	}

	review, err := svc.Create(context.Background(), 1, req, nopFile{}, &multipart.FileHeader{Filename: "plate.jpg"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if review.ImageKey == nil || *review.ImageKey != "reviews/test.jpg" {
		t.Errorf("image key = %v, want reviews/test.jpg", review.ImageKey)
	}
	if review.ImageB64 == nil || *review.ImageB64 == "" {
		t.Error("expected a base64 display cache alongside the stored image")
	}
}

func TestReviewService_Create_ImageStoreFailure(t *testing.T) {
	repo := &mockReviewRepository{}
	images := &mockImageStore{
		storeReviewImageFn: func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.StoredImage, error) {
			return nil, model.ErrInvalidImageType
		},
	}
	svc := newTestReviewService(repo, images)

	req := &model.CreateReviewRequest{
		BusinessID:    "yelp-biz-1",
		BusinessTitle: "Taco Palace",
		Content:       "photogenic plating",
	}

	_, err := svc.Create(context.Background(), 1, req, nopFile{}, &multipart.FileHeader{Filename: "plate.bmp"})
	if !errors.Is(err, model.ErrInvalidImageType) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidImageType)
	}
	if len(repo.createCalls) != 0 {
		t.Error("review must not be persisted when the image upload fails")
	}
}

func TestReviewService_ListByUser_Order(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockReviewRepository{
		getByUserFn: func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.Review, *time.Time, error) {
			return []model.Review{
				{ID: 2, Content: "newer review", CreatedAt: base.Add(time.Hour)},
				{ID: 1, Content: "older review", CreatedAt: base},
			}, nil, nil
		},
	}
	svc := newTestReviewService(repo, &mockImageStore{})

	result, err := svc.ListByUser(context.Background(), "alice", nil, 20)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(result.Reviews) != 2 {
		t.Fatalf("review count = %d, want 2", len(result.Reviews))
	}
	if !result.Reviews[0].CreatedAt.After(result.Reviews[1].CreatedAt) {
		t.Error("reviews must be ordered newest first")
	}
	if result.HasMore {
		t.Error("HasMore must be false without a next cursor")
	}
}

func TestReviewService_ListByUser_UnknownUser(t *testing.T) {
	repo := &mockReviewRepository{}
	userRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewReviewService(repo, userRepo, &mockImageStore{})

	_, err := svc.ListByUser(context.Background(), "ghost", nil, 20)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
}

func TestReviewService_ListByBusiness_Cursor(t *testing.T) {
	next := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockReviewRepository{
		getByBusinessFn: func(ctx context.Context, businessID string, cursor *time.Time, limit int) ([]model.Review, *time.Time, error) {
			if businessID != "yelp-biz-1" {
				t.Errorf("businessID = %q, want yelp-biz-1", businessID)
			}
			return []model.Review{{ID: 1, Content: "still open cursor"}}, &next, nil
		},
	}
	svc := newTestReviewService(repo, &mockImageStore{})

	result, err := svc.ListByBusiness(context.Background(), "yelp-biz-1", nil, 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !result.HasMore {
		t.Error("HasMore must be true when a next cursor is returned")
	}
	if result.NextCursor == nil || *result.NextCursor != next.Format(time.RFC3339Nano) {
		t.Errorf("next cursor = %v, want %s", result.NextCursor, next.Format(time.RFC3339Nano))
	}
}
