package repository

import (
	"context"
	"time"

	"biteclub/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateBio(ctx context.Context, userID int64, bio string) error
	// UpdateAvatar swaps the stored object key and display cache, returning
	// the previous object key so the caller can garbage-collect it.
	UpdateAvatar(ctx context.Context, userID int64, key, b64 string) (prevKey *string, err error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
}

// FollowRepository manages directed edges in the social graph. Follow and
// Unfollow run the edge write and both counter updates in a single
// transaction, so the graph can never hold a half-written relationship.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.FollowEdge, *time.Time, error)
	GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.FollowEdge, *time.Time, error)
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByUser(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.Review, *time.Time, error)
	GetByBusiness(ctx context.Context, businessID string, cursor *time.Time, limit int) ([]model.Review, *time.Time, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
