package managers

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store/memstore"
)

func newPostManager(t *testing.T) (*memstore.Store, *PostManager, *models.User) {
	t.Helper()
	s := memstore.New()
	author := seedUser(t, s, "Alice", "alice@example.com")
	return s, NewPostManager(s, s), author
}

func TestCreatePostValidation(t *testing.T) {
	_, pm, author := newPostManager(t)

	_, err := pm.Create(context.Background(), author.ID, CreatePostInput{
		Title:   "Hi",
		Content: "short",
	})
	wantValidation(t, err, "title")
	wantValidation(t, err, "content")

	_, err = pm.Create(context.Background(), author.ID, CreatePostInput{
		Title:   "Hi There",
		Content: "0123456789",
		Status:  "ARCHIVED",
	})
	wantValidation(t, err, "status")
}

func TestCreatePostUnknownAuthor(t *testing.T) {
	_, pm, _ := newPostManager(t)

	_, err := pm.Create(context.Background(), primitive.NewObjectID(), CreatePostInput{
		Title:   "Hi There",
		Content: "0123456789",
	})
	wantNotFound(t, err)
}

func TestCreatePostDraftThenPublish(t *testing.T) {
	_, pm, author := newPostManager(t)

	post, err := pm.Create(context.Background(), author.ID, CreatePostInput{
		Title:   "Hi There",
		Content: "0123456789",
		Status:  models.StatusDraft,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(post.Slug, "hi-there-") {
		t.Fatalf("slug %q", post.Slug)
	}
	if post.Status != models.StatusDraft {
		t.Fatalf("status %s", post.Status)
	}
	if post.PublishedAt != nil {
		t.Fatalf("draft has publishedAt")
	}

	published := models.StatusPublished
	post, err = pm.Update(context.Background(), post.ID, author.ID, UpdatePostInput{Status: &published})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if post.PublishedAt == nil {
		t.Fatalf("publishedAt not set on publish")
	}
	firstPublished := *post.PublishedAt

	// Re-publishing must not move publishedAt.
	post, err = pm.Update(context.Background(), post.ID, author.ID, UpdatePostInput{Status: &published})
	if err != nil {
		t.Fatalf("re-publish: %v", err)
	}
	if post.PublishedAt == nil || *post.PublishedAt != firstPublished {
		t.Fatalf("publishedAt changed on re-publish")
	}
}

func TestCreatePostSlugsAreUnique(t *testing.T) {
	_, pm, author := newPostManager(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		post := seedPost(t, pm, author.ID, "Same Title", models.StatusPublished)
		if seen[post.Slug] {
			t.Fatalf("duplicate slug %q", post.Slug)
		}
		seen[post.Slug] = true
	}
}

func TestTagsFindOrCreateBySlug(t *testing.T) {
	_, pm, author := newPostManager(t)

	first, err := pm.Create(context.Background(), author.ID, CreatePostInput{
		Title:   "First Post",
		Content: "0123456789",
		Tags:    []string{"Go Lang", "testing"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := pm.Create(context.Background(), author.ID, CreatePostInput{
		Title:   "Second Post",
		Content: "0123456789",
		Tags:    []string{"go lang", "GO-LANG", "Testing"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(first.Tags) != 2 {
		t.Fatalf("first post tags: %v", first.Tags)
	}
	// Duplicate normalizations collapse into one tag.
	if len(second.Tags) != 2 {
		t.Fatalf("second post tags: %v", second.Tags)
	}

	bySlug := map[string]primitive.ObjectID{}
	for _, tag := range first.Tags {
		bySlug[tag.Slug] = tag.ID
	}
	for _, tag := range second.Tags {
		if existing, ok := bySlug[tag.Slug]; ok && existing != tag.ID {
			t.Fatalf("tag %q duplicated: %s vs %s", tag.Slug, existing.Hex(), tag.ID.Hex())
		}
	}
}

func TestUpdatePostReplacesTags(t *testing.T) {
	_, pm, author := newPostManager(t)

	post, err := pm.Create(context.Background(), author.ID, CreatePostInput{
		Title:   "Tagged Post",
		Content: "0123456789",
		Tags:    []string{"old", "stale"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTags := []string{"fresh"}
	post, err = pm.Update(context.Background(), post.ID, author.ID, UpdatePostInput{Tags: &newTags})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(post.Tags) != 1 || post.Tags[0].Slug != "fresh" {
		t.Fatalf("tags after replace: %v", post.Tags)
	}
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	s, pm, author := newPostManager(t)
	other := seedUser(t, s, "Mallory", "mallory@example.com")

	post := seedPost(t, pm, author.ID, "Owned Post", models.StatusPublished)

	title := "Hijacked Title"
	if _, err := pm.Update(context.Background(), post.ID, other.ID, UpdatePostInput{Title: &title}); err == nil {
		t.Fatal("update by non-owner succeeded")
	} else {
		wantForbidden(t, err)
	}

	if err := pm.Delete(context.Background(), post.ID, other.ID); err == nil {
		t.Fatal("delete by non-owner succeeded")
	} else {
		wantForbidden(t, err)
	}

	if err := pm.Delete(context.Background(), post.ID, author.ID); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}
	if err := pm.Delete(context.Background(), post.ID, author.ID); err == nil {
		t.Fatal("second delete succeeded")
	} else {
		wantNotFound(t, err)
	}
}

func TestGetPostByIDAndSlug(t *testing.T) {
	_, pm, author := newPostManager(t)
	post := seedPost(t, pm, author.ID, "Findable Post", models.StatusPublished)

	byID, err := pm.Get(context.Background(), post.ID.Hex(), nil)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	bySlug, err := pm.Get(context.Background(), post.Slug, nil)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if byID.ID != bySlug.ID {
		t.Fatal("id and slug lookups disagree")
	}

	if _, err := pm.Get(context.Background(), "no-such-slug", nil); err == nil {
		t.Fatal("unknown slug resolved")
	} else {
		wantNotFound(t, err)
	}
}

func TestGetDraftVisibleOnlyToAuthor(t *testing.T) {
	s, pm, author := newPostManager(t)
	other := seedUser(t, s, "Bob", "bob@example.com")
	draft := seedPost(t, pm, author.ID, "Secret Draft", models.StatusDraft)

	if _, err := pm.Get(context.Background(), draft.ID.Hex(), nil); err == nil {
		t.Fatal("anonymous viewer saw draft")
	} else {
		wantNotFound(t, err)
	}
	if _, err := pm.Get(context.Background(), draft.ID.Hex(), &other.ID); err == nil {
		t.Fatal("other user saw draft")
	} else {
		wantNotFound(t, err)
	}
	if _, err := pm.Get(context.Background(), draft.ID.Hex(), &author.ID); err != nil {
		t.Fatalf("author denied own draft: %v", err)
	}
}

func TestListPostsPaginationAndFilters(t *testing.T) {
	s, pm, author := newPostManager(t)
	other := seedUser(t, s, "Bob", "bob@example.com")

	for i := 0; i < 3; i++ {
		seedPost(t, pm, author.ID, "Alice Writes Go", models.StatusPublished)
	}
	seedPost(t, pm, other.ID, "Bob Writes Prose", models.StatusPublished)
	seedPost(t, pm, author.ID, "Hidden Draft", models.StatusDraft)

	page, err := pm.List(context.Background(), ListPostsQuery{
		Status: models.StatusPublished,
		Page:   1,
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Pagination.Total != 4 || page.Pagination.Pages != 2 {
		t.Fatalf("pagination %+v", page.Pagination)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("page size %d", len(page.Posts))
	}

	// Search is case-insensitive across title/content/excerpt.
	page, err = pm.List(context.Background(), ListPostsQuery{
		Status: models.StatusPublished,
		Search: "prose",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].AuthorID != other.ID {
		t.Fatalf("search results %+v", page.Posts)
	}

	page, err = pm.List(context.Background(), ListPostsQuery{
		Status:   models.StatusPublished,
		AuthorID: &author.ID,
	})
	if err != nil {
		t.Fatalf("author filter: %v", err)
	}
	if len(page.Posts) != 3 {
		t.Fatalf("author filter results %d", len(page.Posts))
	}

	// Limit is capped at 50.
	page, err = pm.List(context.Background(), ListPostsQuery{Limit: 500})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Pagination.Limit != 50 {
		t.Fatalf("limit not capped: %d", page.Pagination.Limit)
	}
}

func TestListPostsByTag(t *testing.T) {
	_, pm, author := newPostManager(t)

	if _, err := pm.Create(context.Background(), author.ID, CreatePostInput{
		Title:   "Tagged One",
		Content: "0123456789",
		Status:  models.StatusPublished,
		Tags:    []string{"Go Lang"},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := pm.Create(context.Background(), author.ID, CreatePostInput{
		Title:   "Untagged",
		Content: "0123456789",
		Status:  models.StatusPublished,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	page, err := pm.List(context.Background(), ListPostsQuery{
		Status: models.StatusPublished,
		Tag:    "go-lang",
	})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].Title != "Tagged One" {
		t.Fatalf("tag filter results %+v", page.Posts)
	}
}

func TestDeletePostCascades(t *testing.T) {
	s, pm, author := newPostManager(t)
	post := seedPost(t, pm, author.ID, "Doomed Post", models.StatusPublished)

	cm := NewCommentManager(s, s, s)
	comment, err := cm.Create(context.Background(), author.ID, post.ID, "nice one", nil)
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	rm := NewReactionManager(s, s)
	if _, err := rm.Toggle(context.Background(), author.ID, post.ID, models.ReactionLike); err != nil {
		t.Fatalf("reaction: %v", err)
	}

	if err := pm.Delete(context.Background(), post.ID, author.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.FindCommentByID(context.Background(), comment.ID); err == nil {
		t.Fatal("comment survived post delete")
	}
	if _, err := s.FindReaction(context.Background(), post.ID, author.ID); err == nil {
		t.Fatal("reaction survived post delete")
	}
	if tags, _ := s.TagsForPost(context.Background(), post.ID); len(tags) != 0 {
		t.Fatal("tag links survived post delete")
	}
}
