package service

import (
	"context"
	"time"

	"biteclub/internal/model"
	"biteclub/internal/repository"
)

// FollowService owns the social graph operations. Targets are addressed by
// username, the account's public identity key.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow creates the edge actor -> target. Self-follows are rejected and a
// repeated follow surfaces as ErrAlreadyFollowing rather than a second edge.
func (s *FollowService) Follow(ctx context.Context, actorID int64, targetUsername string) error {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}

	if actorID == target.ID {
		return model.ErrCannotFollowSelf
	}

	return s.followRepo.Follow(ctx, actorID, target.ID)
}

// Unfollow removes the edge actor -> target. A missing edge is a defined
// outcome (ErrNotFollowing), never a fault.
func (s *FollowService) Unfollow(ctx context.Context, actorID int64, targetUsername string) error {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}

	return s.followRepo.Unfollow(ctx, actorID, target.ID)
}

// IsFollowing reports whether actor currently follows target.
func (s *FollowService) IsFollowing(ctx context.Context, actorID int64, targetUsername string) (bool, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return false, err
	}

	return s.followRepo.Exists(ctx, actorID, target.ID)
}

// GetFollowers lists who follows the named user, newest edge first, enriched
// with the viewer's own follow status via one batch query.
func (s *FollowService) GetFollowers(ctx context.Context, username string, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	edges, nextCursor, err := s.followRepo.GetFollowers(ctx, user.ID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return s.buildListResponse(ctx, edges, nextCursor, viewerID), nil
}

// GetFollowing lists who the named user follows, newest edge first.
func (s *FollowService) GetFollowing(ctx context.Context, username string, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	edges, nextCursor, err := s.followRepo.GetFollowing(ctx, user.ID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return s.buildListResponse(ctx, edges, nextCursor, viewerID), nil
}

func (s *FollowService) buildListResponse(ctx context.Context, edges []model.FollowEdge, nextCursor *time.Time, viewerID *int64) *model.FollowListResponse {
	if viewerID != nil {
		edges = s.enrichWithFollowStatus(ctx, *viewerID, edges)
	}

	var nextCursorStr *string
	if nextCursor != nil {
		str := nextCursor.Format(time.RFC3339Nano)
		nextCursorStr = &str
	}

	return &model.FollowListResponse{
		Users:      edges,
		NextCursor: nextCursorStr,
		HasMore:    nextCursor != nil,
	}
}

// enrichWithFollowStatus batch-checks whether the viewer follows each listed
// user with one query, then maps the results back onto the edges. If the
// check fails the listing still returns, just without follow flags.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID int64, edges []model.FollowEdge) []model.FollowEdge {
	if len(edges) == 0 {
		return edges
	}

	userIDs := make([]int64, len(edges))
	for i, edge := range edges {
		userIDs[i] = edge.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return edges
	}

	for i := range edges {
		edges[i].IsFollowing = followMap[edges[i].ID]
	}

	return edges
}
