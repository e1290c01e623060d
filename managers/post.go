package managers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store"
)

const (
	minTitleLen   = 3
	minContentLen = 10

	defaultPageSize = 10
	maxPageSize     = 50
)

// PostManager owns the post lifecycle: slug uniqueness, tag
// association, the one-way DRAFT -> PUBLISHED transition and author
// ownership of mutations.
type PostManager struct {
	posts store.PostStore
	users store.UserStore
}

func NewPostManager(posts store.PostStore, users store.UserStore) *PostManager {
	return &PostManager{posts: posts, users: users}
}

type CreatePostInput struct {
	Title      string
	Content    string
	Excerpt    string
	CoverImage string
	Tags       []string
	Status     models.PostStatus
}

type UpdatePostInput struct {
	Title      *string
	Content    *string
	Excerpt    *string
	CoverImage *string
	Tags       *[]string
	Status     *models.PostStatus
}

type ListPostsQuery struct {
	Status   models.PostStatus
	AuthorID *primitive.ObjectID
	Search   string
	Tag      string
	Page     int
	Limit    int
}

// Pagination is the page block returned alongside every list:
// pages = ceil(total/limit).
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type PostPage struct {
	Posts      []models.Post `json:"posts"`
	Pagination Pagination    `json:"pagination"`
}

func (m *PostManager) Create(ctx context.Context, authorID primitive.ObjectID, in CreatePostInput) (*models.Post, error) {
	if in.Status == "" {
		in.Status = models.StatusDraft
	}

	fields := map[string]string{}
	if len(strings.TrimSpace(in.Title)) < minTitleLen {
		fields["title"] = "title must be at least 3 characters"
	}
	if len(strings.TrimSpace(in.Content)) < minContentLen {
		fields["content"] = "content must be at least 10 characters"
	}
	if !in.Status.Valid() {
		fields["status"] = "status must be DRAFT or PUBLISHED"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	author, err := m.users.FindUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, storageErr("createPost", err)
	}

	slug, err := newPostSlug(in.Title)
	if err != nil {
		return nil, storageErr("createPost", err)
	}

	now := time.Now().Unix()
	post := &models.Post{
		Title:      strings.TrimSpace(in.Title),
		Slug:       slug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		CoverImage: in.CoverImage,
		Status:     in.Status,
		AuthorID:   authorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Status == models.StatusPublished {
		post.PublishedAt = &now
	}

	if err := m.posts.InsertPost(ctx, post); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Reason: "slug already exists"}
		}
		return nil, storageErr("createPost", err)
	}

	tags, err := m.linkTags(ctx, post.ID, in.Tags)
	if err != nil {
		return nil, err
	}

	post.Author = lo.ToPtr(author.Summary())
	post.Tags = tags
	return post, nil
}

func (m *PostManager) Update(ctx context.Context, postID, requesterID primitive.ObjectID, patch UpdatePostInput) (*models.Post, error) {
	post, err := m.posts.FindPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "post"}
		}
		return nil, storageErr("updatePost", err)
	}
	if post.AuthorID != requesterID {
		return nil, &ForbiddenError{Reason: "only the author may update this post"}
	}

	fields := map[string]string{}
	if patch.Title != nil && len(strings.TrimSpace(*patch.Title)) < minTitleLen {
		fields["title"] = "title must be at least 3 characters"
	}
	if patch.Content != nil && len(strings.TrimSpace(*patch.Content)) < minContentLen {
		fields["content"] = "content must be at least 10 characters"
	}
	if patch.Status != nil && !patch.Status.Valid() {
		fields["status"] = "status must be DRAFT or PUBLISHED"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if patch.Title != nil {
		post.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		post.Excerpt = *patch.Excerpt
	}
	if patch.CoverImage != nil {
		post.CoverImage = *patch.CoverImage
	}
	now := time.Now().Unix()
	if patch.Status != nil {
		post.Status = *patch.Status
		// publishedAt is set once, on the first transition to
		// PUBLISHED, and never overwritten after that.
		if post.Status == models.StatusPublished && post.PublishedAt == nil {
			post.PublishedAt = &now
		}
	}
	post.UpdatedAt = now

	if err := m.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Reason: "slug already exists"}
		}
		return nil, storageErr("updatePost", err)
	}

	if patch.Tags != nil {
		tags, err := m.linkTags(ctx, post.ID, *patch.Tags)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	} else {
		if err := m.populate(ctx, post); err != nil {
			return nil, err
		}
		return post, nil
	}

	author, err := m.users.FindUserByID(ctx, post.AuthorID)
	if err == nil {
		post.Author = lo.ToPtr(author.Summary())
	}
	return post, nil
}

func (m *PostManager) Delete(ctx context.Context, postID, requesterID primitive.ObjectID) error {
	post, err := m.posts.FindPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "post"}
		}
		return storageErr("deletePost", err)
	}
	if post.AuthorID != requesterID {
		return &ForbiddenError{Reason: "only the author may delete this post"}
	}

	if err := m.posts.DeletePost(ctx, postID); err != nil {
		return storageErr("deletePost", err)
	}
	return nil
}

func (m *PostManager) List(ctx context.Context, q ListPostsQuery) (*PostPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"status": "status must be DRAFT or PUBLISHED"}}
	}

	posts, total, err := m.posts.ListPosts(ctx, store.PostFilter{
		Status:   q.Status,
		AuthorID: q.AuthorID,
		Search:   q.Search,
		TagSlug:  q.Tag,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return nil, storageErr("listPosts", err)
	}

	// One author lookup per distinct author on the page.
	authors := map[primitive.ObjectID]*models.UserSummary{}
	for i := range posts {
		if err := m.populateTags(ctx, &posts[i]); err != nil {
			return nil, err
		}
		if summary, ok := authors[posts[i].AuthorID]; ok {
			posts[i].Author = summary
			continue
		}
		author, err := m.users.FindUserByID(ctx, posts[i].AuthorID)
		if err != nil {
			continue
		}
		summary := lo.ToPtr(author.Summary())
		authors[posts[i].AuthorID] = summary
		posts[i].Author = summary
	}

	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &PostPage{
		Posts: posts,
		Pagination: Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// Get resolves a post by id first, then by slug. Drafts resolve only
// for their author; everyone else gets not-found.
func (m *PostManager) Get(ctx context.Context, idOrSlug string, viewerID *primitive.ObjectID) (*models.Post, error) {
	var post *models.Post
	var err error

	if id, idErr := primitive.ObjectIDFromHex(idOrSlug); idErr == nil {
		post, err = m.posts.FindPostByID(ctx, id)
	} else {
		err = store.ErrNotFound
	}
	if errors.Is(err, store.ErrNotFound) {
		post, err = m.posts.FindPostBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "post"}
		}
		return nil, storageErr("getPost", err)
	}

	if post.Status != models.StatusPublished {
		if viewerID == nil || *viewerID != post.AuthorID {
			return nil, &NotFoundError{Resource: "post"}
		}
	}

	if err := m.populate(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// linkTags resolves each tag name through find-or-create-by-slug and
// replaces the post's links wholesale.
func (m *PostManager) linkTags(ctx context.Context, postID primitive.ObjectID, names []string) ([]models.Tag, error) {
	seen := map[string]bool{}
	tags := []models.Tag{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, err := m.posts.FindOrCreateTag(ctx, name, slug)
		if err != nil {
			return nil, storageErr("linkTags", err)
		}
		tags = append(tags, *tag)
	}

	tagIDs := lo.Map(tags, func(t models.Tag, _ int) primitive.ObjectID { return t.ID })
	if err := m.posts.ReplacePostTags(ctx, postID, tagIDs); err != nil {
		return nil, storageErr("linkTags", err)
	}
	return tags, nil
}

func (m *PostManager) populate(ctx context.Context, post *models.Post) error {
	if err := m.populateTags(ctx, post); err != nil {
		return err
	}
	author, err := m.users.FindUserByID(ctx, post.AuthorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return storageErr("getPost", err)
	}
	post.Author = lo.ToPtr(author.Summary())
	return nil
}

func (m *PostManager) populateTags(ctx context.Context, post *models.Post) error {
	tags, err := m.posts.TagsForPost(ctx, post.ID)
	if err != nil {
		return storageErr("getPost", err)
	}
	post.Tags = tags
	return nil
}
