package managers

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"inkwell/models"
	"inkwell/store"
)

const minPasswordLen = 6

// UserManager owns signup, credential checks and profile edits. It
// authorizes (self-only mutations) but never authenticates transport
// credentials; token issuance lives with the caller.
type UserManager struct {
	users store.UserStore
}

func NewUserManager(users store.UserStore) *UserManager {
	return &UserManager{users: users}
}

type ProfilePatch struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}

func (m *UserManager) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "name is required"
	}
	if !strings.Contains(email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(password) < minPasswordLen {
		fields["password"] = "password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storageErr("signup", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().Unix(),
	}
	if err := m.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Reason: "email already in use"}
		}
		return nil, storageErr("signup", err)
	}
	return user, nil
}

// Authenticate checks the credentials and returns the matching user.
// A missing account and a bad password are both reported as forbidden
// so callers cannot probe which emails exist.
func (m *UserManager) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := m.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &ForbiddenError{Reason: "invalid email or password"}
		}
		return nil, storageErr("authenticate", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &ForbiddenError{Reason: "invalid email or password"}
	}
	return user, nil
}

func (m *UserManager) Get(ctx context.Context, id primitive.ObjectID) (*models.UserSummary, error) {
	user, err := m.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, storageErr("getUser", err)
	}
	summary := user.Summary()
	return &summary, nil
}

func (m *UserManager) UpdateProfile(ctx context.Context, userID, requesterID primitive.ObjectID, patch ProfilePatch) (*models.UserSummary, error) {
	if userID != requesterID {
		return nil, &ForbiddenError{Reason: "only the owner may update this profile"}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "name cannot be empty"}}
	}

	err := m.users.UpdateUser(ctx, userID, store.UserPatch{
		Name:      patch.Name,
		Bio:       patch.Bio,
		AvatarURL: patch.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, storageErr("updateProfile", err)
	}
	return m.Get(ctx, userID)
}
