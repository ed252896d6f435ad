package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/storage"
)

// SaveComment appends comment to a video.
func (s *Storage) SaveComment(ctx context.Context, comment models.Comment) error {
	const op = "storage.sqlite.SaveComment"

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO comments(id, video_id, user_id, author_name, author_photo, comment, created_at_ms)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		comment.ID, comment.VideoID, comment.Author.ID,
		comment.Author.Name, comment.Author.CoverPhoto,
		comment.Comment, comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return storage.ErrContextCancelled
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Comment returns one comment of a video.
func (s *Storage) Comment(ctx context.Context, videoID int64, commentID string) (models.Comment, error) {
	const op = "storage.sqlite.Comment"

	stmt, err := s.db.PrepareContext(ctx, `
		SELECT id, video_id, user_id, author_name, author_photo, comment, created_at_ms
		FROM comments WHERE video_id = ? AND id = ?
	`)
	if err != nil {
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, videoID, commentID)

	var comment models.Comment
	err = row.Scan(
		&comment.ID, &comment.VideoID, &comment.Author.ID,
		&comment.Author.Name, &comment.Author.CoverPhoto,
		&comment.Comment, &comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Comment{}, fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Comment{}, storage.ErrContextCancelled
		}
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}

// Comments returns video comments in chronological order.
func (s *Storage) Comments(ctx context.Context, videoID int64) ([]models.Comment, error) {
	const op = "storage.sqlite.Comments"

	stmt, err := s.db.PrepareContext(ctx, `
		SELECT id, video_id, user_id, author_name, author_photo, comment, created_at_ms
		FROM comments WHERE video_id = ? ORDER BY created_at_ms, rowid
	`)
	if err != nil {
		return []models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, videoID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return []models.Comment{}, storage.ErrContextCancelled
		}
		return []models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	var comment models.Comment
	for rows.Next() {
		if err = rows.Scan(
			&comment.ID, &comment.VideoID, &comment.Author.ID,
			&comment.Author.Name, &comment.Author.CoverPhoto,
			&comment.Comment, &comment.CreatedAt,
		); err != nil {
			return comments, fmt.Errorf("%s: %w", op, err)
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

// UpdateCommentText replaces comment text, nothing else.
func (s *Storage) UpdateCommentText(ctx context.Context, videoID int64, commentID string, text string) error {
	const op = "storage.sqlite.UpdateCommentText"

	stmt, err := s.db.PrepareContext(ctx, "UPDATE comments SET comment = ? WHERE video_id = ? AND id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, text, videoID, commentID)
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
		return storage.ErrCommentNotFound
	}

	return nil
}

// DeleteComment deletes comment by id.
func (s *Storage) DeleteComment(ctx context.Context, videoID int64, commentID string) error {
	const op = "storage.sqlite.DeleteComment"

	stmt, err := s.db.PrepareContext(ctx, "DELETE FROM comments WHERE video_id = ? AND id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, videoID, commentID)
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
		return storage.ErrCommentNotFound
	}

	return nil
}

// RenameCommentsAuthor rewrites the author name snapshot in every
// comment the user posted, across all videos.
func (s *Storage) RenameCommentsAuthor(ctx context.Context, userID int64, newName string) error {
	const op = "storage.sqlite.RenameCommentsAuthor"

	return s.rewriteAuthorSnapshot(ctx, op, "UPDATE comments SET author_name = ? WHERE user_id = ?", newName, userID)
}

// UpdateCommentsAuthorPhoto rewrites the author cover photo snapshot
// in every comment the user posted, across all videos.
func (s *Storage) UpdateCommentsAuthorPhoto(ctx context.Context, userID int64, newPath string) error {
	const op = "storage.sqlite.UpdateCommentsAuthorPhoto"

	return s.rewriteAuthorSnapshot(ctx, op, "UPDATE comments SET author_photo = ? WHERE user_id = ?", newPath, userID)
}

func (s *Storage) rewriteAuthorSnapshot(ctx context.Context, op, query, value string, userID int64) error {
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	// zero affected rows is fine: the user may have no comments
	if _, err := stmt.ExecContext(ctx, value, userID); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return storage.ErrContextCancelled
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
