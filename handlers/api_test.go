package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"inkwell/handlers"
	"inkwell/managers"
	"inkwell/models"
	"inkwell/routes"
	"inkwell/store/memstore"
)

type envelope struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Error      string              `json:"error"`
	Errors     map[string]string   `json:"errors"`
	Pagination *managers.Pagination `json:"pagination"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	s := memstore.New()
	api := handlers.NewAPI(
		managers.NewUserManager(s),
		managers.NewPostManager(s, s),
		managers.NewCommentManager(s, s, s),
		managers.NewReactionManager(s, s),
		managers.NewFollowManager(s, s),
	)
	return routes.SetupRouter(api)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func signup(t *testing.T, router *gin.Engine, name, email string) (token string, userID string) {
	t.Helper()
	w, env := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: code %d body %s", email, w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("signup payload: %v", err)
	}
	return data.Token, data.User.ID
}

func createPost(t *testing.T, router *gin.Engine, token string, body gin.H) models.Post {
	t.Helper()
	w, env := doJSON(t, router, http.MethodPost, "/api/posts", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: code %d body %s", w.Code, w.Body.String())
	}
	var post models.Post
	if err := json.Unmarshal(env.Data, &post); err != nil {
		t.Fatalf("post payload: %v", err)
	}
	return post
}

func TestSignupAndLogin(t *testing.T) {
	router := newTestRouter(t)

	token, _ := signup(t, router, "Alice", "alice@example.com")
	if token == "" {
		t.Fatal("no token on signup")
	}

	// Duplicate email is a conflict.
	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Alice Again", "email": "alice@example.com", "password": "secret1",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup code %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-pass",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login code %d", w.Code)
	}

	w, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("login code %d body %s", w.Code, w.Body.String())
	}
}

func TestAuthRequiredForMutations(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/posts", "", gin.H{
		"title": "Hi There", "content": "0123456789",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create code %d", w.Code)
	}
}

func TestPostLifecycle(t *testing.T) {
	router := newTestRouter(t)
	aliceToken, _ := signup(t, router, "Alice", "alice@example.com")
	bobToken, _ := signup(t, router, "Bob", "bob@example.com")

	post := createPost(t, router, aliceToken, gin.H{
		"title": "Hi There", "content": "0123456789", "status": "DRAFT",
	})
	if post.Status != models.StatusDraft || post.PublishedAt != nil {
		t.Fatalf("draft state %+v", post)
	}

	// Anonymous readers cannot see drafts; the author can.
	w, _ := doJSON(t, router, http.MethodGet, "/api/posts/"+post.Slug, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("anonymous draft read code %d", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodGet, "/api/posts/"+post.Slug, aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("author draft read code %d", w.Code)
	}

	// A non-owner cannot publish it.
	w, _ = doJSON(t, router, http.MethodPut, "/api/posts/"+post.ID.Hex(), bobToken, gin.H{"status": "PUBLISHED"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update code %d", w.Code)
	}

	w, env := doJSON(t, router, http.MethodPut, "/api/posts/"+post.ID.Hex(), aliceToken, gin.H{"status": "PUBLISHED"})
	if w.Code != http.StatusOK {
		t.Fatalf("publish code %d body %s", w.Code, w.Body.String())
	}
	var published models.Post
	if err := json.Unmarshal(env.Data, &published); err != nil {
		t.Fatalf("publish payload: %v", err)
	}
	if published.PublishedAt == nil {
		t.Fatal("publishedAt not set")
	}

	// Now it is publicly readable by slug.
	w, _ = doJSON(t, router, http.MethodGet, "/api/posts/"+post.Slug, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public read code %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodDelete, "/api/posts/"+post.ID.Hex(), bobToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete code %d", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodDelete, "/api/posts/"+post.ID.Hex(), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete code %d", w.Code)
	}
}

func TestCreatePostValidationShape(t *testing.T) {
	router := newTestRouter(t)
	token, _ := signup(t, router, "Alice", "alice@example.com")

	w, env := doJSON(t, router, http.MethodPost, "/api/posts", token, gin.H{
		"title": "Hi", "content": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("validation code %d", w.Code)
	}
	if env.Success {
		t.Fatal("success true on validation failure")
	}
	if env.Errors["title"] == "" || env.Errors["content"] == "" {
		t.Fatalf("field errors %+v", env.Errors)
	}
}

func TestListPostsEnvelope(t *testing.T) {
	router := newTestRouter(t)
	token, _ := signup(t, router, "Alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		createPost(t, router, token, gin.H{
			"title":   fmt.Sprintf("Post Number %d", i),
			"content": "0123456789",
			"status":  "PUBLISHED",
			"tags":    []string{"Go Lang"},
		})
	}

	w, env := doJSON(t, router, http.MethodGet, "/api/posts?limit=2&page=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code %d", w.Code)
	}
	if env.Pagination == nil {
		t.Fatal("no pagination block")
	}
	if env.Pagination.Total != 3 || env.Pagination.Pages != 2 || env.Pagination.Page != 2 {
		t.Fatalf("pagination %+v", env.Pagination)
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/posts?tag=go-lang", "", nil)
	if w.Code != http.StatusOK || env.Pagination.Total != 3 {
		t.Fatalf("tag filter code %d pagination %+v", w.Code, env.Pagination)
	}
}

func TestCommentEndpoints(t *testing.T) {
	router := newTestRouter(t)
	aliceToken, _ := signup(t, router, "Alice", "alice@example.com")
	bobToken, _ := signup(t, router, "Bob", "bob@example.com")

	post := createPost(t, router, aliceToken, gin.H{
		"title": "Hi There", "content": "0123456789", "status": "PUBLISHED",
	})

	w, env := doJSON(t, router, http.MethodPost, "/api/comments", bobToken, gin.H{
		"postId": post.ID.Hex(), "content": "great read",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment code %d body %s", w.Code, w.Body.String())
	}
	var comment models.Comment
	if err := json.Unmarshal(env.Data, &comment); err != nil {
		t.Fatalf("comment payload: %v", err)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/comments", aliceToken, gin.H{
		"postId": post.ID.Hex(), "content": "thanks!", "parentId": comment.ID.Hex(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("reply code %d", w.Code)
	}

	// Anyone can list comments.
	w, env = doJSON(t, router, http.MethodGet, "/api/comments?postId="+post.ID.Hex(), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list comments code %d", w.Code)
	}
	var comments []models.Comment
	if err := json.Unmarshal(env.Data, &comments); err != nil {
		t.Fatalf("comments payload: %v", err)
	}
	if len(comments) != 1 || len(comments[0].Replies) != 1 {
		t.Fatalf("comment tree %+v", comments)
	}

	// Only the author deletes.
	w, _ = doJSON(t, router, http.MethodDelete, "/api/comments/"+comment.ID.Hex(), aliceToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-author delete code %d", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodDelete, "/api/comments/"+comment.ID.Hex(), bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("author delete code %d", w.Code)
	}
}

func TestReactionEndpoints(t *testing.T) {
	router := newTestRouter(t)
	token, _ := signup(t, router, "Alice", "alice@example.com")

	post := createPost(t, router, token, gin.H{
		"title": "Hi There", "content": "0123456789", "status": "PUBLISHED",
	})

	w, env := doJSON(t, router, http.MethodPost, "/api/reactions", token, gin.H{
		"postId": post.ID.Hex(), "type": "LIKE",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle code %d", w.Code)
	}
	var result managers.ToggleResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("toggle payload: %v", err)
	}
	if result.Removed || result.Reaction.Type != models.ReactionLike {
		t.Fatalf("toggle result %+v", result)
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/reactions?postId="+post.ID.Hex(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("state code %d", w.Code)
	}
	var state managers.ReactionState
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("state payload: %v", err)
	}
	if state.UserReaction == nil || state.Counts[models.ReactionLike] != 1 {
		t.Fatalf("state %+v", state)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/reactions", token, gin.H{
		"postId": post.ID.Hex(), "type": "WOW",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid type code %d", w.Code)
	}
}

func TestFollowEndpoints(t *testing.T) {
	router := newTestRouter(t)
	aliceToken, aliceID := signup(t, router, "Alice", "alice@example.com")
	_, bobID := signup(t, router, "Bob", "bob@example.com")

	w, env := doJSON(t, router, http.MethodPost, "/api/users/"+bobID+"/follow", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("follow code %d", w.Code)
	}
	var status managers.FollowStatus
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatalf("follow payload: %v", err)
	}
	if !status.Following {
		t.Fatalf("follow status %+v", status)
	}

	// Toggle off.
	w, env = doJSON(t, router, http.MethodPost, "/api/users/"+bobID+"/follow", aliceToken, nil)
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatalf("unfollow payload: %v", err)
	}
	if w.Code != http.StatusOK || status.Following {
		t.Fatalf("unfollow code %d status %+v", w.Code, status)
	}

	// Self-follow is invalid.
	w, _ = doJSON(t, router, http.MethodPost, "/api/users/"+aliceID+"/follow", aliceToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self-follow code %d", w.Code)
	}

	// Anonymous status read.
	w, env = doJSON(t, router, http.MethodGet, "/api/users/"+bobID+"/follow", "", nil)
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatalf("status payload: %v", err)
	}
	if w.Code != http.StatusOK || status.Following {
		t.Fatalf("anonymous status code %d %+v", w.Code, status)
	}
}

func TestProfileEndpoints(t *testing.T) {
	router := newTestRouter(t)
	token, userID := signup(t, router, "Alice", "alice@example.com")

	w, env := doJSON(t, router, http.MethodPut, "/api/me", token, gin.H{"bio": "writer of things"})
	if w.Code != http.StatusOK {
		t.Fatalf("update me code %d body %s", w.Code, w.Body.String())
	}
	var me models.UserSummary
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatalf("me payload: %v", err)
	}
	if me.Bio != "writer of things" {
		t.Fatalf("me %+v", me)
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/users/"+userID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get user code %d", w.Code)
	}
	var public models.UserSummary
	if err := json.Unmarshal(env.Data, &public); err != nil {
		t.Fatalf("user payload: %v", err)
	}
	if public.Name != "Alice" {
		t.Fatalf("user %+v", public)
	}
}
