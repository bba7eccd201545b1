package model

import (
	"errors"
	"time"
)

// Follow is a single directed edge in the social graph. One row answers both
// "who does A follow" and "who follows B", so the edge and its timestamp can
// never drift between two bookkeeping collections.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FollowEdge is a graph edge joined with the user on the far end,
// as returned by follower/following listings.
type FollowEdge struct {
	UserSummary
	FollowedAt time.Time `db:"created_at" json:"followed_at"`
}

type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	AvatarB64   *string `db:"avatar_b64" json:"avatar_b64"`
	IsFollowing bool    `json:"is_following"`
}

type FollowListResponse struct {
	Users      []FollowEdge `json:"users"`
	NextCursor *string      `json:"next_cursor,omitempty"`
	HasMore    bool         `json:"has_more"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
