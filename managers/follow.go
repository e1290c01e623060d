package managers

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store"
)

// FollowManager owns directed follow edges between users.
type FollowManager struct {
	follows store.FollowStore
	users   store.UserStore
}

func NewFollowManager(follows store.FollowStore, users store.UserStore) *FollowManager {
	return &FollowManager{follows: follows, users: users}
}

type FollowStatus struct {
	Following bool  `json:"following"`
	Followers int64 `json:"followers"`
}

// Toggle creates the edge on the first call and deletes it on the
// second. Self-follows are rejected outright.
func (m *FollowManager) Toggle(ctx context.Context, followerID, targetUserID primitive.ObjectID) (*FollowStatus, error) {
	if followerID == targetUserID {
		return nil, &ValidationError{Fields: map[string]string{"targetUserId": "cannot follow yourself"}}
	}
	if err := m.userExists(ctx, targetUserID); err != nil {
		return nil, err
	}

	existing, err := m.follows.FindFollow(ctx, followerID, targetUserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		follow := &models.Follow{
			FollowerID:  followerID,
			FollowingID: targetUserID,
			CreatedAt:   time.Now().Unix(),
		}
		if err := m.follows.InsertFollow(ctx, follow); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return nil, &ConflictError{Reason: "already following"}
			}
			return nil, storageErr("toggleFollow", err)
		}
		return m.status(ctx, true, targetUserID)

	case err != nil:
		return nil, storageErr("toggleFollow", err)

	default:
		if err := m.follows.DeleteFollow(ctx, existing.ID); err != nil {
			return nil, storageErr("toggleFollow", err)
		}
		return m.status(ctx, false, targetUserID)
	}
}

// Status reports whether followerID follows the target. An anonymous
// caller (nil followerID) is never following.
func (m *FollowManager) Status(ctx context.Context, followerID *primitive.ObjectID, targetUserID primitive.ObjectID) (*FollowStatus, error) {
	if err := m.userExists(ctx, targetUserID); err != nil {
		return nil, err
	}

	following := false
	if followerID != nil && *followerID != targetUserID {
		_, err := m.follows.FindFollow(ctx, *followerID, targetUserID)
		switch {
		case err == nil:
			following = true
		case !errors.Is(err, store.ErrNotFound):
			return nil, storageErr("getFollowStatus", err)
		}
	}
	return m.status(ctx, following, targetUserID)
}

func (m *FollowManager) status(ctx context.Context, following bool, targetUserID primitive.ObjectID) (*FollowStatus, error) {
	followers, err := m.follows.CountFollowers(ctx, targetUserID)
	if err != nil {
		return nil, storageErr("getFollowStatus", err)
	}
	return &FollowStatus{Following: following, Followers: followers}, nil
}

func (m *FollowManager) userExists(ctx context.Context, id primitive.ObjectID) error {
	if _, err := m.users.FindUserByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "user"}
		}
		return storageErr("follows", err)
	}
	return nil
}
