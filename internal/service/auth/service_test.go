package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	jwtService "github.com/mgusev/vidhub/internal/service/jwt"

	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
	"github.com/mgusev/vidhub/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUsers struct {
	users  map[int64]models.User
	nextID int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:  make(map[int64]models.User),
		nextID: 1,
	}
}

func (f *fakeUsers) SaveUser(_ context.Context, user models.User) (int64, error) {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrUserNotFound
}

func (f *fakeUsers) UserByName(_ context.Context, name string) (models.User, error) {
	for _, u := range f.users {
		if u.Name == name {
			return u, nil
		}
	}
	return models.User{}, storage.ErrUserNotFound
}

func newTestAuth() (*Auth, *fakeUsers) {
	users := newFakeUsers()
	jwt := jwtService.New([]byte("test-secret"))

	return New(discardLogger(), users, jwt, time.Hour), users
}

func signUpForm() models.SignUpIn {
	return models.SignUpIn{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	}
}

func TestSignUp(t *testing.T) {
	a, users := newTestAuth()

	id, token, err := a.SignUp(context.Background(), signUpForm())
	require.NoError(t, err)
	assert.NotEqual(t, models.ErrUserID, id)
	assert.NotEmpty(t, token)

	saved := users.users[id]
	assert.Equal(t, "alice", saved.Name)
	assert.Equal(t, models.RoleUser, saved.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword(saved.PassHash, []byte("s3cret")))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := a.SignUp(ctx, signUpForm())
	require.NoError(t, err)

	form := signUpForm()
	form.Name = "not-alice"
	_, _, err = a.SignUp(ctx, form)
	require.ErrorIs(t, err, service.ErrUserExists)
}

func TestSignUpDuplicateName(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := a.SignUp(ctx, signUpForm())
	require.NoError(t, err)

	form := signUpForm()
	form.Email = "alice2@example.com"
	_, _, err = a.SignUp(ctx, form)
	require.ErrorIs(t, err, service.ErrUserExists)
}

func TestLogin(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := a.SignUp(ctx, signUpForm())
	require.NoError(t, err)

	token, err := a.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginUnknownEmail(t *testing.T) {
	a, _ := newTestAuth()

	_, err := a.Login(context.Background(), "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, service.ErrEmailNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := a.SignUp(ctx, signUpForm())
	require.NoError(t, err)

	_, err = a.Login(ctx, "alice@example.com", "not-the-password")
	require.ErrorIs(t, err, service.ErrWrongPassword)
}
