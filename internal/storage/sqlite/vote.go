package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mgusev/vidhub/internal/storage"
)

const (
	voteLike    int64 = 1
	voteDislike int64 = -1
)

// Vote returns the user's vote on a video:
// +1 liked, -1 disliked, 0 neutral.
func (s *Storage) Vote(ctx context.Context, videoID, userID int64) (int64, error) {
	const op = "storage.sqlite.Vote"

	stmt, err := s.db.PrepareContext(ctx, "SELECT vote FROM votes WHERE video_id = ? AND user_id = ?")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	var vote int64
	if err := stmt.QueryRowContext(ctx, videoID, userID).Scan(&vote); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// no row means neutral
			return 0, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, storage.ErrContextCancelled
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return vote, nil
}

// AddLiker adds user to the likers set.
func (s *Storage) AddLiker(ctx context.Context, videoID, userID int64) error {
	const op = "storage.sqlite.AddLiker"

	return s.addVote(ctx, op, videoID, userID, voteLike)
}

// AddDisliker adds user to the dislikers set.
func (s *Storage) AddDisliker(ctx context.Context, videoID, userID int64) error {
	const op = "storage.sqlite.AddDisliker"

	return s.addVote(ctx, op, videoID, userID, voteDislike)
}

func (s *Storage) addVote(ctx context.Context, op string, videoID, userID, vote int64) error {
	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO votes(video_id, user_id, vote) VALUES(?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, videoID, userID, vote); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%s: %w", op, storage.ErrVoteExists)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return storage.ErrContextCancelled
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RemoveLiker removes user from the likers set.
func (s *Storage) RemoveLiker(ctx context.Context, videoID, userID int64) error {
	const op = "storage.sqlite.RemoveLiker"

	return s.removeVote(ctx, op, videoID, userID, voteLike)
}

// RemoveDisliker removes user from the dislikers set.
func (s *Storage) RemoveDisliker(ctx context.Context, videoID, userID int64) error {
	const op = "storage.sqlite.RemoveDisliker"

	return s.removeVote(ctx, op, videoID, userID, voteDislike)
}

func (s *Storage) removeVote(ctx context.Context, op string, videoID, userID, vote int64) error {
	stmt, err := s.db.PrepareContext(ctx, "DELETE FROM votes WHERE video_id = ? AND user_id = ? AND vote = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, videoID, userID, vote)
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
		return storage.ErrVoteNotFound
	}

	return nil
}

// Likers returns user ids that liked the video.
func (s *Storage) Likers(ctx context.Context, videoID int64) ([]int64, error) {
	const op = "storage.sqlite.Likers"

	return s.voters(ctx, op, videoID, voteLike)
}

// Dislikers returns user ids that disliked the video.
func (s *Storage) Dislikers(ctx context.Context, videoID int64) ([]int64, error) {
	const op = "storage.sqlite.Dislikers"

	return s.voters(ctx, op, videoID, voteDislike)
}

func (s *Storage) voters(ctx context.Context, op string, videoID, vote int64) ([]int64, error) {
	stmt, err := s.db.PrepareContext(ctx, "SELECT user_id FROM votes WHERE video_id = ? AND vote = ?")
	if err != nil {
		return []int64{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, videoID, vote)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return []int64{}, storage.ErrContextCancelled
		}
		return []int64{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	var id int64
	for rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return ids, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
