package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mgusev/vidhub/internal/lib/logger/sl"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
	"github.com/mgusev/vidhub/internal/storage"
)

// Profile implements profile reads and the tri-state profile update,
// including the fan-out rewrite of denormalized comment author
// snapshots. The profile mutation and the fan-out are two separate
// store operations; a crash in between leaves stale snapshots until
// the next profile change.
type Profile struct {
	log         *slog.Logger
	userStorage UserStorage
	snapshots   CommentSnapshots
	src         Source
}

type UserStorage interface {
	User(ctx context.Context, id int64) (models.User, error)
	UserByName(ctx context.Context, name string) (models.User, error)
	UpdateUserName(ctx context.Context, id int64, name string) error
	UpdateUserPassHash(ctx context.Context, id int64, passHash []byte) error
	UpdateUserCoverPhoto(ctx context.Context, id int64, path string) error
}

type CommentSnapshots interface {
	RenameCommentsAuthor(ctx context.Context, userID int64, newName string) error
	UpdateCommentsAuthorPhoto(ctx context.Context, userID int64, newPath string) error
}

type Source interface {
	Delete(ctx context.Context, relPath string) error
}

func New(
	log *slog.Logger,
	userStorage UserStorage,
	snapshots CommentSnapshots,
	src Source,
) *Profile {
	return &Profile{
		log:         log,
		userStorage: userStorage,
		snapshots:   snapshots,
		src:         src,
	}
}

// User returns the profile of the given user.
func (p *Profile) User(ctx context.Context, id int64) (models.UserOut, error) {
	const op = "Profile.User"

	log := p.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	user, err := p.userStorage.User(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return models.UserOut{}, fmt.Errorf("%s: %w", op, service.ErrUserNotFound)
		}
		log.Error("failed to get user", sl.Err(err))
		return models.UserOut{}, fmt.Errorf("%s: %w", op, err)
	}

	return user.Out(), nil
}

// Update applies the tri-state profile edit: empty name keeps the
// name, empty password keeps the password, both empty is a no-op.
// A name change checks uniqueness and rewrites the author snapshot
// of every comment the user posted.
func (p *Profile) Update(ctx context.Context, id int64, upd models.ProfileUpdate) error {
	const op = "Profile.Update"

	log := p.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	if upd.Name == "" && upd.Password == "" {
		return nil
	}

	if upd.Name != "" {
		if taken, err := p.userStorage.UserByName(ctx, upd.Name); err == nil {
			if taken.ID != id {
				log.Warn("name taken", slog.String("name", upd.Name))
				return fmt.Errorf("%s: %w", op, service.ErrUserExists)
			}
		} else if !errors.Is(err, storage.ErrUserNotFound) {
			log.Error("failed to check name", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := p.userStorage.UpdateUserName(ctx, id, upd.Name); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				log.Warn("user not found")
				return fmt.Errorf("%s: %w", op, service.ErrUserNotFound)
			}
			log.Error("failed to update name", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := p.snapshots.RenameCommentsAuthor(ctx, id, upd.Name); err != nil {
			log.Error("failed to rewrite comment author names", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		log.Info("renamed user", slog.String("name", upd.Name))
	}

	if upd.Password != "" {
		passHash, err := bcrypt.GenerateFromPassword([]byte(upd.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("failed to generate password hash", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := p.userStorage.UpdateUserPassHash(ctx, id, passHash); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				log.Warn("user not found")
				return fmt.Errorf("%s: %w", op, service.ErrUserNotFound)
			}
			log.Error("failed to update password", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		log.Info("updated password")
	}

	return nil
}

// UpdateCoverPhoto points the user at an already stored cover photo,
// removes the previous photo from disk and rewrites the author
// snapshot of every comment the user posted.
func (p *Profile) UpdateCoverPhoto(ctx context.Context, id int64, newPath string) error {
	const op = "Profile.UpdateCoverPhoto"

	log := p.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	user, err := p.userStorage.User(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return fmt.Errorf("%s: %w", op, service.ErrUserNotFound)
		}
		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.CoverPhoto != "" {
		if err := p.src.Delete(ctx, user.CoverPhoto); err != nil {
			log.Error("failed to delete old cover photo", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := p.userStorage.UpdateUserCoverPhoto(ctx, id, newPath); err != nil {
		log.Error("failed to update cover photo", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.snapshots.UpdateCommentsAuthorPhoto(ctx, id, newPath); err != nil {
		log.Error("failed to rewrite comment author photos", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("updated cover photo", slog.String("path", newPath))

	return nil
}
