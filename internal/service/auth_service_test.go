package service

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(noopUserRepo())
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"empty name", RegisterInput{Name: "", Email: "jo@example.com", Password: "secret123"}},
		{"bad email", RegisterInput{Name: "Jo", Email: "not-an-email", Password: "secret123"}},
		{"short password", RegisterInput{Name: "Jo", Email: "jo@example.com", Password: "short"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(ctx, tc.input)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	created := false
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 7, Email: email}, nil
	}
	repo.createFn = func(_ context.Context, _ *models.User) error {
		created = true
		return nil
	}

	svc := NewAuthService(repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jo",
		Email:    "jo@example.com",
		Password: "secret123",
	})
	assertCode(t, err, models.CodeDuplicateEmail)
	assert.False(t, created, "duplicate registration must not write")
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	t.Parallel()

	var stored *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, user *models.User) error {
		user.ID = 1
		stored = user
		return nil
	}

	svc := NewAuthService(repo)
	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jo",
		Email:    "JO@Example.COM",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "jo@example.com", user.Email, "email is normalized to lowercase")
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "secret123")
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	// Register through the real service so Login exercises the actual hash.
	var stored *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, user *models.User) error {
		user.ID = 1
		stored = user
		return nil
	}
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if stored != nil && stored.Email == email {
			return stored, nil
		}
		return nil, nil
	}

	svc := NewAuthService(repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jo",
		Email:    "jo@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "jo@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("near-miss password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "jo@example.com", "secret124")
		assertCode(t, err, models.CodeInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
		assertCode(t, err, models.CodeUserNotFound)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "JO@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})
}
