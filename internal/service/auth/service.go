package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgusev/vidhub/internal/lib/logger/sl"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
	"github.com/mgusev/vidhub/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

type Auth struct {
	log         *slog.Logger
	userStorage UserStorage
	jwtMaker    jwtMaker
	tokenTTL    time.Duration
}

type jwtMaker interface {
	NewToken(user models.User, duration time.Duration) (string, error)
}

type UserStorage interface {
	SaveUser(ctx context.Context, user models.User) (int64, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByName(ctx context.Context, name string) (models.User, error)
}

// New returns new instance of authentication service.
func New(
	log *slog.Logger,
	userStorage UserStorage,
	jwtMaker jwtMaker,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		userStorage: userStorage,
		jwtMaker:    jwtMaker,
		tokenTTL:    tokenTTL,
	}
}

// SignUp registers a new user and returns its id with an access token.
//
// Name and email are soft-unique: both are checked by lookup before
// the insert. If either is taken, returns service.ErrUserExists.
func (a *Auth) SignUp(ctx context.Context, form models.SignUpIn) (int64, string, error) {
	const op = "Auth.SignUp"

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", form.Email),
	)

	log.Info("attempting to sign up")

	if _, err := a.userStorage.UserByEmail(ctx, form.Email); err == nil {
		log.Warn("email taken")
		return models.ErrUserID, "", fmt.Errorf("%s: %w", op, service.ErrUserExists)
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to check email", sl.Err(err))
		return models.ErrUserID, "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := a.userStorage.UserByName(ctx, form.Name); err == nil {
		log.Warn("name taken", slog.String("name", form.Name))
		return models.ErrUserID, "", fmt.Errorf("%s: %w", op, service.ErrUserExists)
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to check name", sl.Err(err))
		return models.ErrUserID, "", fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.ErrUserID, "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:       form.Name,
		Email:      form.Email,
		PassHash:   passHash,
		Role:       models.RoleUser,
		CoverPhoto: "",
	}

	id, err := a.userStorage.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrContextCancelled) {
			log.Error("userStorage.SaveUser timeout exceeded")
			return models.ErrUserID, "", service.ErrTimeout
		}
		log.Error("failed to save user", sl.Err(err))
		return models.ErrUserID, "", fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	token, err := a.jwtMaker.NewToken(user, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return models.ErrUserID, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("signed up", slog.Int64("id", id))

	return id, token, nil
}

// Login checks if user with given credentials exists and returns access token.
//
// Unknown email and wrong password fail with distinct errors
// (service.ErrEmailNotFound, service.ErrWrongPassword); neither
// produces a token.
func (a *Auth) Login(ctx context.Context, email string, password string) (string, error) {
	const op = "Auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("attempting to login")

	user, err := a.userStorage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("email not found")
			return "", fmt.Errorf("%s: %w", op, service.ErrEmailNotFound)
		}
		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, service.ErrWrongPassword)
	}

	token, err := a.jwtMaker.NewToken(user, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("logged in successfully", slog.Int64("id", user.ID))

	return token, nil
}
