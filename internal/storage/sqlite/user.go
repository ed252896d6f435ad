package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/storage"
)

// SaveUser saves user.
func (s *Storage) SaveUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.sqlite.SaveUser"

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO users(name, email, pass_hash, role, cover_photo) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.ErrUserID, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, user.Name, user.Email, user.PassHash, user.Role, user.CoverPhoto)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.ErrUserID, storage.ErrContextCancelled
		}
		return models.ErrUserID, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.ErrUserID, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// User returns user by id.
func (s *Storage) User(ctx context.Context, id int64) (models.User, error) {
	const op = "storage.sqlite.User"

	stmt, err := s.db.PrepareContext(ctx, "SELECT id, name, email, pass_hash, role, cover_photo FROM users WHERE id = ?")
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	return s.scanUser(stmt.QueryRowContext(ctx, id), op)
}

// UserByEmail returns user by email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.sqlite.UserByEmail"

	stmt, err := s.db.PrepareContext(ctx, "SELECT id, name, email, pass_hash, role, cover_photo FROM users WHERE email = ?")
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	return s.scanUser(stmt.QueryRowContext(ctx, email), op)
}

// UserByName returns user by name.
func (s *Storage) UserByName(ctx context.Context, name string) (models.User, error) {
	const op = "storage.sqlite.UserByName"

	stmt, err := s.db.PrepareContext(ctx, "SELECT id, name, email, pass_hash, role, cover_photo FROM users WHERE name = ?")
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	return s.scanUser(stmt.QueryRowContext(ctx, name), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PassHash, &user.Role, &user.CoverPhoto)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return models.User{}, storage.ErrContextCancelled
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateUserName updates user name.
func (s *Storage) UpdateUserName(ctx context.Context, id int64, name string) error {
	const op = "storage.sqlite.UpdateUserName"

	return s.updateUserField(ctx, op, "UPDATE users SET name = ? WHERE id = ?", name, id)
}

// UpdateUserPassHash updates user password hash.
func (s *Storage) UpdateUserPassHash(ctx context.Context, id int64, passHash []byte) error {
	const op = "storage.sqlite.UpdateUserPassHash"

	return s.updateUserField(ctx, op, "UPDATE users SET pass_hash = ? WHERE id = ?", passHash, id)
}

// UpdateUserCoverPhoto updates user cover photo path.
func (s *Storage) UpdateUserCoverPhoto(ctx context.Context, id int64, path string) error {
	const op = "storage.sqlite.UpdateUserCoverPhoto"

	return s.updateUserField(ctx, op, "UPDATE users SET cover_photo = ? WHERE id = ?", path, id)
}

func (s *Storage) updateUserField(ctx context.Context, op, query string, value any, id int64) error {
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, value, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return storage.ErrContextCancelled
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	affectedRows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affectedRows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}
