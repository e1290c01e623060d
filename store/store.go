// Package store defines the record storage contract the managers are
// built against. There is exactly one contract; the mongo package
// implements it for production and the memstore package implements it
// in memory for tests and local development.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

var (
	// ErrNotFound is returned by Find* methods when no record matches.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (email, slug, reaction pair, follow pair).
	ErrDuplicate = errors.New("store: duplicate record")
)

// PostFilter narrows ListPosts. Zero values mean "no filter".
type PostFilter struct {
	Status   models.PostStatus
	AuthorID *primitive.ObjectID
	Search   string // case-insensitive match across title/content/excerpt
	TagSlug  string
	Page     int
	Limit    int
}

type UserPatch struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, patch UserPatch) error
}

type PostStore interface {
	InsertPost(ctx context.Context, post *models.Post) error
	FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	// DeletePost removes the post and cascades to its PostTag links,
	// comments and reactions.
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	// ListPosts returns one page of posts ordered newest-first by
	// creation time, plus the total count for the filter.
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)

	// FindOrCreateTag looks a tag up by slug and creates it with the
	// given display name only if absent.
	FindOrCreateTag(ctx context.Context, name, slug string) (*models.Tag, error)
	// ReplacePostTags drops every existing link for the post and
	// creates links to the given tags.
	ReplacePostTags(ctx context.Context, postID primitive.ObjectID, tagIDs []primitive.ObjectID) error
	TagsForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Tag, error)
}

type CommentStore interface {
	InsertComment(ctx context.Context, comment *models.Comment) error
	FindCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	// DeleteComment removes the comment and, for a top-level comment,
	// its replies.
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	// ListCommentsByPost returns every comment on the post, top-level
	// and replies alike, in no particular order.
	ListCommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
}

type ReactionStore interface {
	FindReaction(ctx context.Context, postID, userID primitive.ObjectID) (*models.Reaction, error)
	InsertReaction(ctx context.Context, reaction *models.Reaction) error
	UpdateReactionType(ctx context.Context, id primitive.ObjectID, t models.ReactionType) error
	DeleteReaction(ctx context.Context, id primitive.ObjectID) error
	ListReactionsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Reaction, error)
}

type FollowStore interface {
	FindFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (*models.Follow, error)
	InsertFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, id primitive.ObjectID) error
	CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// Store is the full contract a backend implements.
type Store interface {
	UserStore
	PostStore
	CommentStore
	ReactionStore
	FollowStore
}
