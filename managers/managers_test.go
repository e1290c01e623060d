package managers

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
	"inkwell/store/memstore"
)

func seedUser(t *testing.T, s *memstore.Store, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		CreatedAt:    time.Now().Unix(),
	}
	if err := s.InsertUser(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func seedPost(t *testing.T, pm *PostManager, authorID primitive.ObjectID, title string, status models.PostStatus) *models.Post {
	t.Helper()
	post, err := pm.Create(context.Background(), authorID, CreatePostInput{
		Title:   title,
		Content: "0123456789",
		Status:  status,
	})
	if err != nil {
		t.Fatalf("seed post %q: %v", title, err)
	}
	return post
}

func wantValidation(t *testing.T, err error, field string) {
	t.Helper()
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if _, ok := validation.Fields[field]; !ok {
		t.Fatalf("want message for field %q, got %v", field, validation.Fields)
	}
}

func wantNotFound(t *testing.T, err error) {
	t.Helper()
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func wantForbidden(t *testing.T, err error) {
	t.Helper()
	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("want ForbiddenError, got %v", err)
	}
}
