package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitpulse/habitpulse/internal/core/domain"
	"github.com/habitpulse/habitpulse/internal/core/services"
)

type MockUserRepo struct {
	byID          map[string]*domain.User
	byExternal    map[string]string
	simulateError error
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{
		byID:       make(map[string]*domain.User),
		byExternal: make(map[string]string),
	}
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	for _, u := range m.byID {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	clone := *user
	m.byID[user.ID] = &clone
	return nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepo) ResolveExternalID(ctx context.Context, externalID string) (string, error) {
	if m.simulateError != nil {
		return "", m.simulateError
	}
	if id, ok := m.byExternal[externalID]; ok {
		return id, nil
	}
	id := "internal-" + externalID
	ext := externalID
	now := time.Now().UTC()
	m.byID[id] = &domain.User{ID: id, Email: externalID + "@external.invalid", ExternalID: &ext, CreatedAt: now, UpdatedAt: now}
	m.byExternal[externalID] = id
	return id, nil
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: password is stored hashed", func(t *testing.T) {
		repo := NewMockUserRepo()
		svc := services.NewAuthService(repo)

		user, err := svc.Register(ctx, services.RegisterInput{
			Email:    "Anna@Example.com",
			Password: "a-long-password",
		})

		require.NoError(t, err)
		assert.Equal(t, "anna@example.com", user.Email)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "a-long-password", user.PasswordHash)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		repo := NewMockUserRepo()
		svc := services.NewAuthService(repo)

		_, err := svc.Register(ctx, services.RegisterInput{Email: "anna@example.com", Password: "a-long-password"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, services.RegisterInput{Email: "anna@example.com", Password: "another-password"})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("Weak password is rejected before any write", func(t *testing.T) {
		repo := NewMockUserRepo()
		svc := services.NewAuthService(repo)

		_, err := svc.Register(ctx, services.RegisterInput{Email: "anna@example.com", Password: "short"})
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Empty(t, repo.byID)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	repo := NewMockUserRepo()
	svc := services.NewAuthService(repo)

	registered, err := svc.Register(ctx, services.RegisterInput{
		Email:    "anna@example.com",
		Password: "a-long-password",
	})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		user, err := svc.Login(ctx, services.LoginInput{Email: "anna@example.com", Password: "a-long-password"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("Wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, err := svc.Login(ctx, services.LoginInput{Email: "anna@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		_, err = svc.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "a-long-password"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_ResolveExternal(t *testing.T) {
	ctx := context.Background()
	repo := NewMockUserRepo()
	svc := services.NewAuthService(repo)

	t.Run("First contact creates, second returns the same id", func(t *testing.T) {
		first, err := svc.ResolveExternal(ctx, "idp|42")
		require.NoError(t, err)
		assert.NotEmpty(t, first)

		second, err := svc.ResolveExternal(ctx, "idp|42")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Empty external id is rejected", func(t *testing.T) {
		_, err := svc.ResolveExternal(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
