package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/storage"
)

// SaveVideo saves video record.
func (s *Storage) SaveVideo(ctx context.Context, video models.Video) (int64, error) {
	const op = "storage.sqlite.SaveVideo"

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO videos(title, description, video, thumbnail, duration, watch_ms, created_at_ms, views)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return models.ErrVideoID, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx,
		video.Title, video.Description, video.Video, video.Thumbnail,
		video.Duration, video.Watch, video.CreatedAt, video.Views,
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.ErrVideoID, storage.ErrContextCancelled
		}
		return models.ErrVideoID, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.ErrVideoID, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// Video returns video by id.
func (s *Storage) Video(ctx context.Context, id int64) (models.Video, error) {
	const op = "storage.sqlite.Video"

	stmt, err := s.db.PrepareContext(ctx, `
		SELECT id, title, description, video, thumbnail, duration, watch_ms, created_at_ms, views
		FROM videos WHERE id = ?
	`)
	if err != nil {
		return models.Video{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, id)

	var video models.Video
	err = row.Scan(
		&video.ID, &video.Title, &video.Description, &video.Video, &video.Thumbnail,
		&video.Duration, &video.Watch, &video.CreatedAt, &video.Views,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Video{}, fmt.Errorf("%s: %w", op, storage.ErrVideoNotFound)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Video{}, storage.ErrContextCancelled
		}
		return models.Video{}, fmt.Errorf("%s: %w", op, err)
	}

	return video, nil
}

// AllVideos returns all videos, newest first.
func (s *Storage) AllVideos(ctx context.Context) ([]models.Video, error) {
	const op = "storage.sqlite.AllVideos"

	return s.queryVideos(ctx, op, `
		SELECT id, title, description, video, thumbnail, duration, watch_ms, created_at_ms, views
		FROM videos ORDER BY created_at_ms DESC
	`)
}

func (s *Storage) queryVideos(ctx context.Context, op, query string, args ...any) ([]models.Video, error) {
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return []models.Video{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return []models.Video{}, storage.ErrContextCancelled
		}
		return []models.Video{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	videos := make([]models.Video, 0)
	var video models.Video
	for rows.Next() {
		if err = rows.Scan(
			&video.ID, &video.Title, &video.Description, &video.Video, &video.Thumbnail,
			&video.Duration, &video.Watch, &video.CreatedAt, &video.Views,
		); err != nil {
			return videos, fmt.Errorf("%s: %w", op, err)
		}
		videos = append(videos, video)
	}

	return videos, nil
}

// IncrementViews increments view counter by one.
func (s *Storage) IncrementViews(ctx context.Context, id int64) error {
	const op = "storage.sqlite.IncrementViews"

	stmt, err := s.db.PrepareContext(ctx, "UPDATE videos SET views = views + 1 WHERE id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, id)
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
		return storage.ErrVideoNotFound
	}

	return nil
}

// UpdateVideoInfo overwrites title and description.
func (s *Storage) UpdateVideoInfo(ctx context.Context, id int64, title, description string) error {
	const op = "storage.sqlite.UpdateVideoInfo"

	stmt, err := s.db.PrepareContext(ctx, "UPDATE videos SET title = ?, description = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, title, description, id)
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
		return storage.ErrVideoNotFound
	}

	return nil
}

// DeleteVideo deletes video with its votes and comments.
func (s *Storage) DeleteVideo(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeleteVideo"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
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
		return storage.ErrVideoNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM votes WHERE video_id = ?", id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE video_id = ?", id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
