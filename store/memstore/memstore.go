// Package memstore is the in-memory implementation of the store
// contract. It backs unit tests and the STORE=memory dev mode.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store"
)

type Store struct {
	mu sync.Mutex

	users     map[primitive.ObjectID]models.User
	posts     map[primitive.ObjectID]models.Post
	tags      map[primitive.ObjectID]models.Tag
	postTags  []models.PostTag
	comments  map[primitive.ObjectID]models.Comment
	reactions map[primitive.ObjectID]models.Reaction
	follows   map[primitive.ObjectID]models.Follow

	// Insertion order, used to break createdAt ties when sorting.
	seq     map[primitive.ObjectID]int
	nextSeq int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:     make(map[primitive.ObjectID]models.User),
		posts:     make(map[primitive.ObjectID]models.Post),
		tags:      make(map[primitive.ObjectID]models.Tag),
		comments:  make(map[primitive.ObjectID]models.Comment),
		reactions: make(map[primitive.ObjectID]models.Reaction),
		follows:   make(map[primitive.ObjectID]models.Follow),
		seq:       make(map[primitive.ObjectID]int),
	}
}

func (s *Store) track(id primitive.ObjectID) {
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

// ----- users -----

func (s *Store) InsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	s.track(user.ID)
	return nil
}

func (s *Store) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, id primitive.ObjectID, patch store.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	s.users[id] = u
	return nil
}

// ----- posts -----

func (s *Store) InsertPost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return store.ErrDuplicate
		}
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	s.posts[post.ID] = *post
	s.track(post.ID)
	return nil
}

func (s *Store) FindPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) FindPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			found := p
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		return store.ErrNotFound
	}
	for _, p := range s.posts {
		if p.Slug == post.Slug && p.ID != post.ID {
			return store.ErrDuplicate
		}
	}
	s.posts[post.ID] = *post
	return nil
}

func (s *Store) DeletePost(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	s.postTags = lo.Filter(s.postTags, func(pt models.PostTag, _ int) bool {
		return pt.PostID != id
	})
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for rid, r := range s.reactions {
		if r.PostID == id {
			delete(s.reactions, rid)
		}
	}
	return nil
}

func (s *Store) ListPosts(_ context.Context, filter store.PostFilter) ([]models.Post, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tagged map[primitive.ObjectID]bool
	if filter.TagSlug != "" {
		tagged = make(map[primitive.ObjectID]bool)
		for _, t := range s.tags {
			if t.Slug != filter.TagSlug {
				continue
			}
			for _, pt := range s.postTags {
				if pt.TagID == t.ID {
					tagged[pt.PostID] = true
				}
			}
		}
	}

	search := strings.ToLower(filter.Search)
	var matched []models.Post
	for _, p := range s.posts {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if tagged != nil && !tagged[p.ID] {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) &&
			!strings.Contains(strings.ToLower(p.Excerpt), search) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt != matched[j].CreatedAt {
			return matched[i].CreatedAt > matched[j].CreatedAt
		}
		return s.seq[matched[i].ID] > s.seq[matched[j].ID]
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return []models.Post{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// ----- tags -----

func (s *Store) FindOrCreateTag(_ context.Context, name, slug string) (*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tags {
		if t.Slug == slug {
			found := t
			return &found, nil
		}
	}
	tag := models.Tag{ID: primitive.NewObjectID(), Name: name, Slug: slug}
	s.tags[tag.ID] = tag
	return &tag, nil
}

func (s *Store) ReplacePostTags(_ context.Context, postID primitive.ObjectID, tagIDs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.postTags = lo.Filter(s.postTags, func(pt models.PostTag, _ int) bool {
		return pt.PostID != postID
	})
	for _, tid := range tagIDs {
		s.postTags = append(s.postTags, models.PostTag{
			ID:     primitive.NewObjectID(),
			PostID: postID,
			TagID:  tid,
		})
	}
	return nil
}

func (s *Store) TagsForPost(_ context.Context, postID primitive.ObjectID) ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := []models.Tag{}
	for _, pt := range s.postTags {
		if pt.PostID != postID {
			continue
		}
		if t, ok := s.tags[pt.TagID]; ok {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

// ----- comments -----

func (s *Store) InsertComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	s.comments[comment.ID] = *comment
	s.track(comment.ID)
	return nil
}

func (s *Store) FindCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.comments, id)
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (s *Store) ListCommentsByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt != comments[j].CreatedAt {
			return comments[i].CreatedAt < comments[j].CreatedAt
		}
		return s.seq[comments[i].ID] < s.seq[comments[j].ID]
	})
	return comments, nil
}

// ----- reactions -----

func (s *Store) FindReaction(_ context.Context, postID, userID primitive.ObjectID) (*models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reactions {
		if r.PostID == postID && r.UserID == userID {
			found := r
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) InsertReaction(_ context.Context, reaction *models.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reactions {
		if r.PostID == reaction.PostID && r.UserID == reaction.UserID {
			return store.ErrDuplicate
		}
	}
	if reaction.ID.IsZero() {
		reaction.ID = primitive.NewObjectID()
	}
	s.reactions[reaction.ID] = *reaction
	return nil
}

func (s *Store) UpdateReactionType(_ context.Context, id primitive.ObjectID, t models.ReactionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reactions[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Type = t
	s.reactions[id] = r
	return nil
}

func (s *Store) DeleteReaction(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reactions[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.reactions, id)
	return nil
}

func (s *Store) ListReactionsByPost(_ context.Context, postID primitive.ObjectID) ([]models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reactions := []models.Reaction{}
	for _, r := range s.reactions {
		if r.PostID == postID {
			reactions = append(reactions, r)
		}
	}
	return reactions, nil
}

// ----- follows -----

func (s *Store) FindFollow(_ context.Context, followerID, followingID primitive.ObjectID) (*models.Follow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			found := f
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) InsertFollow(_ context.Context, follow *models.Follow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return store.ErrDuplicate
		}
	}
	if follow.ID.IsZero() {
		follow.ID = primitive.NewObjectID()
	}
	s.follows[follow.ID] = *follow
	return nil
}

func (s *Store) DeleteFollow(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.follows[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.follows, id)
	return nil
}

func (s *Store) CountFollowers(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, f := range s.follows {
		if f.FollowingID == userID {
			n++
		}
	}
	return n, nil
}
