package managers

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store"
)

// ReactionManager owns per-user, per-post reaction state. A user holds
// zero or one reaction on a post; toggling the same type removes it,
// toggling the other type mutates the row in place.
type ReactionManager struct {
	reactions store.ReactionStore
	posts     store.PostStore
}

func NewReactionManager(reactions store.ReactionStore, posts store.PostStore) *ReactionManager {
	return &ReactionManager{reactions: reactions, posts: posts}
}

type ReactionState struct {
	Reactions    []models.Reaction           `json:"reactions"`
	Counts       map[models.ReactionType]int `json:"counts"`
	UserReaction *models.Reaction            `json:"userReaction"`
}

type ToggleResult struct {
	Removed  bool             `json:"removed"`
	Reaction *models.Reaction `json:"reaction,omitempty"`
}

func (m *ReactionManager) State(ctx context.Context, postID primitive.ObjectID, userID *primitive.ObjectID) (*ReactionState, error) {
	if err := m.postExists(ctx, postID); err != nil {
		return nil, err
	}

	reactions, err := m.reactions.ListReactionsByPost(ctx, postID)
	if err != nil {
		return nil, storageErr("getReactionState", err)
	}

	state := &ReactionState{
		Reactions: reactions,
		Counts: lo.CountValuesBy(reactions, func(r models.Reaction) models.ReactionType {
			return r.Type
		}),
	}
	if userID != nil {
		if mine, ok := lo.Find(reactions, func(r models.Reaction) bool { return r.UserID == *userID }); ok {
			state.UserReaction = &mine
		}
	}
	return state, nil
}

// Toggle runs exactly one of create, delete or update per call.
func (m *ReactionManager) Toggle(ctx context.Context, userID, postID primitive.ObjectID, t models.ReactionType) (*ToggleResult, error) {
	if !t.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"type": "type must be LIKE or CLAP"}}
	}
	if err := m.postExists(ctx, postID); err != nil {
		return nil, err
	}

	existing, err := m.reactions.FindReaction(ctx, postID, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		reaction := &models.Reaction{
			Type:      t,
			PostID:    postID,
			UserID:    userID,
			CreatedAt: time.Now().Unix(),
		}
		if err := m.reactions.InsertReaction(ctx, reaction); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return nil, &ConflictError{Reason: "reaction already exists"}
			}
			return nil, storageErr("toggleReaction", err)
		}
		return &ToggleResult{Reaction: reaction}, nil

	case err != nil:
		return nil, storageErr("toggleReaction", err)

	case existing.Type == t:
		if err := m.reactions.DeleteReaction(ctx, existing.ID); err != nil {
			return nil, storageErr("toggleReaction", err)
		}
		return &ToggleResult{Removed: true}, nil

	default:
		if err := m.reactions.UpdateReactionType(ctx, existing.ID, t); err != nil {
			return nil, storageErr("toggleReaction", err)
		}
		existing.Type = t
		return &ToggleResult{Reaction: existing}, nil
	}
}

func (m *ReactionManager) postExists(ctx context.Context, postID primitive.ObjectID) error {
	if _, err := m.posts.FindPostByID(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "post"}
		}
		return storageErr("reactions", err)
	}
	return nil
}
