package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"biteclub/internal/model"
	"biteclub/internal/repository"
)

// UserService handles registration, login, and profile edits.
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
	images     ImageStore
	validate   *validator.Validate
}

func NewUserService(repo repository.UserRepository, followRepo repository.FollowRepository, images ImageStore) *UserService {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
		images:     images,
		validate:   validator.New(),
	}
}

// Register creates a new account. Registering does not log the user in; the
// caller goes through Login afterwards.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validate.Struct(req); err != nil {
		return nil, registerValidationError(err)
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// registerValidationError turns validator output into a caller-facing message.
func registerValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return model.NewValidationError("invalid registration data")
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Username":
		return model.NewValidationError(fmt.Sprintf("username must be %d-%d characters", model.UsernameMinLen, model.UsernameMaxLen))
	case "Email":
		return model.NewValidationError("a valid email address is required")
	case "Password":
		return model.NewValidationError("password must be at least 8 characters")
	default:
		return model.NewValidationError("invalid registration data")
	}
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether the username exists
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a public profile by username, with the follow
// relationship from the viewer's side when a viewer is authenticated.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileResponse{
		User:        user,
		IsFollowing: false,
	}

	if viewerID != nil && *viewerID != user.ID {
		isFollowing, err := s.followRepo.Exists(ctx, *viewerID, user.ID)
		if err == nil {
			profile.IsFollowing = isFollowing
		}
	}

	return profile, nil
}

// UpdateBio overwrites the caller's bio.
func (s *UserService) UpdateBio(ctx context.Context, userID int64, bio string) error {
	// Counted in characters, matching the schema's char_length CHECK.
	if utf8.RuneCountInString(bio) > model.BioMaxLen {
		return model.NewValidationError(fmt.Sprintf("bio must be at most %d characters", model.BioMaxLen))
	}
	return s.repo.UpdateBio(ctx, userID, bio)
}

// UpdateProfilePicture stores the upload, swaps the key and its base64 cache
// on the user row, and garbage-collects the displaced object.
func (s *UserService) UpdateProfilePicture(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (*model.User, error) {
	stored, err := s.images.StoreAvatar(ctx, file, header)
	if err != nil {
		return nil, err
	}

	prevKey, err := s.repo.UpdateAvatar(ctx, userID, stored.Key, stored.B64)
	if err != nil {
		// The new object is orphaned; clean it up best effort.
		if delErr := s.images.DeleteObject(ctx, stored.Key); delErr != nil {
			slog.Error("failed to delete orphaned avatar object", "key", stored.Key, "error", delErr)
		}
		return nil, err
	}

	if prevKey != nil && *prevKey != stored.Key {
		if err := s.images.DeleteObject(ctx, *prevKey); err != nil {
			slog.Error("failed to delete previous avatar object", "key", *prevKey, "error", err)
		}
	}

	return s.repo.GetByID(ctx, userID)
}

// Search finds users by username prefix with follow status enrichment for an
// authenticated viewer. Uses one batch query instead of a check per row.
func (s *UserService) Search(ctx context.Context, query string, limit int, viewerID *int64) ([]model.UserSummary, error) {
	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && len(users) > 0 {
		userIDs := make([]int64, len(users))
		for i, user := range users {
			userIDs[i] = user.ID
		}

		followMap, err := s.followRepo.CheckFollows(ctx, *viewerID, userIDs)
		if err == nil {
			for i := range users {
				users[i].IsFollowing = followMap[users[i].ID]
			}
		}
	}

	return users, nil
}
