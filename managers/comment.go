package managers

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store"
)

// CommentManager owns comment creation and the one-level reply rule: a
// reply's parent must be a top-level comment on the same post.
type CommentManager struct {
	comments store.CommentStore
	posts    store.PostStore
	users    store.UserStore
}

func NewCommentManager(comments store.CommentStore, posts store.PostStore, users store.UserStore) *CommentManager {
	return &CommentManager{comments: comments, posts: posts, users: users}
}

// List returns the post's top-level comments newest-first, each with
// its replies oldest-first.
func (m *CommentManager) List(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	if err := m.postExists(ctx, postID); err != nil {
		return nil, err
	}

	all, err := m.comments.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, storageErr("listComments", err)
	}

	authors := map[primitive.ObjectID]*models.UserSummary{}
	for i := range all {
		all[i].Author = m.authorSummary(ctx, authors, all[i].AuthorID)
	}

	topLevel := lo.Filter(all, func(c models.Comment, _ int) bool { return c.ParentID == nil })
	sort.Slice(topLevel, func(i, j int) bool {
		if topLevel[i].CreatedAt != topLevel[j].CreatedAt {
			return topLevel[i].CreatedAt > topLevel[j].CreatedAt
		}
		return laterID(topLevel[i].ID, topLevel[j].ID)
	})

	replies := lo.GroupBy(
		lo.Filter(all, func(c models.Comment, _ int) bool { return c.ParentID != nil }),
		func(c models.Comment) primitive.ObjectID { return *c.ParentID },
	)

	for i := range topLevel {
		group := replies[topLevel[i].ID]
		sort.Slice(group, func(a, b int) bool {
			if group[a].CreatedAt != group[b].CreatedAt {
				return group[a].CreatedAt < group[b].CreatedAt
			}
			return laterID(group[b].ID, group[a].ID)
		})
		topLevel[i].Replies = group
	}
	return topLevel, nil
}

func (m *CommentManager) Create(ctx context.Context, authorID, postID primitive.ObjectID, content string, parentID *primitive.ObjectID) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Fields: map[string]string{"content": "content is required"}}
	}
	if err := m.postExists(ctx, postID); err != nil {
		return nil, err
	}

	author, err := m.users.FindUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, storageErr("createComment", err)
	}

	if parentID != nil {
		parent, err := m.comments.FindCommentByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &NotFoundError{Resource: "parent comment"}
			}
			return nil, storageErr("createComment", err)
		}
		// Replies anchor only to top-level comments on the same post;
		// a reply-to-a-reply is treated as a missing parent.
		if parent.ParentID != nil || parent.PostID != postID {
			return nil, &NotFoundError{Resource: "parent comment"}
		}
	}

	comment := &models.Comment{
		Content:   content,
		PostID:    postID,
		AuthorID:  authorID,
		ParentID:  parentID,
		CreatedAt: time.Now().Unix(),
	}
	if err := m.comments.InsertComment(ctx, comment); err != nil {
		return nil, storageErr("createComment", err)
	}

	comment.Author = lo.ToPtr(author.Summary())
	return comment, nil
}

func (m *CommentManager) Delete(ctx context.Context, commentID, requesterID primitive.ObjectID) error {
	comment, err := m.comments.FindCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "comment"}
		}
		return storageErr("deleteComment", err)
	}
	if comment.AuthorID != requesterID {
		return &ForbiddenError{Reason: "only the author may delete this comment"}
	}

	if err := m.comments.DeleteComment(ctx, commentID); err != nil {
		return storageErr("deleteComment", err)
	}
	return nil
}

func (m *CommentManager) postExists(ctx context.Context, postID primitive.ObjectID) error {
	if _, err := m.posts.FindPostByID(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "post"}
		}
		return storageErr("comments", err)
	}
	return nil
}

func (m *CommentManager) authorSummary(ctx context.Context, cache map[primitive.ObjectID]*models.UserSummary, id primitive.ObjectID) *models.UserSummary {
	if summary, ok := cache[id]; ok {
		return summary
	}
	user, err := m.users.FindUserByID(ctx, id)
	if err != nil {
		cache[id] = nil
		return nil
	}
	summary := lo.ToPtr(user.Summary())
	cache[id] = summary
	return summary
}

// laterID reports whether a was minted after b. ObjectIDs embed a
// timestamp and an increasing counter, so byte order tracks creation
// order within a process.
func laterID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) > 0
}
