package engage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mgusev/vidhub/internal/lib/logger/sl"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
	"github.com/mgusev/vidhub/internal/storage"
)

// Engage implements like/dislike toggling and comment CRUD.
type Engage struct {
	log          *slog.Logger
	voteStorage  VoteStorage
	cmntStorage  CommentStorage
	userStorage  UserStorage
	videoStorage VideoProvider
}

type VoteStorage interface {
	Vote(ctx context.Context, videoID, userID int64) (int64, error)
	AddLiker(ctx context.Context, videoID, userID int64) error
	RemoveLiker(ctx context.Context, videoID, userID int64) error
	AddDisliker(ctx context.Context, videoID, userID int64) error
	RemoveDisliker(ctx context.Context, videoID, userID int64) error
}

type CommentStorage interface {
	SaveComment(ctx context.Context, comment models.Comment) error
	Comment(ctx context.Context, videoID int64, commentID string) (models.Comment, error)
	UpdateCommentText(ctx context.Context, videoID int64, commentID string, text string) error
	DeleteComment(ctx context.Context, videoID int64, commentID string) error
}

type UserStorage interface {
	User(ctx context.Context, id int64) (models.User, error)
}

type VideoProvider interface {
	Video(ctx context.Context, id int64) (models.Video, error)
}

func New(
	log *slog.Logger,
	voteStorage VoteStorage,
	cmntStorage CommentStorage,
	userStorage UserStorage,
	videoStorage VideoProvider,
) *Engage {
	return &Engage{
		log:          log,
		voteStorage:  voteStorage,
		cmntStorage:  cmntStorage,
		userStorage:  userStorage,
		videoStorage: videoStorage,
	}
}

// Like adds the user to the video's likers.
//
// If the user already likes the video, returns service.ErrAlreadyLiked
// and mutates nothing. If the user currently dislikes it, the dislike
// is withdrawn first, so membership stays exclusive.
func (e *Engage) Like(ctx context.Context, videoID, userID int64) error {
	const op = "Engage.Like"

	log := e.log.With(
		slog.String("op", op),
		slog.Int64("videoId", videoID),
		slog.Int64("userId", userID),
	)

	vote, err := e.currentVote(ctx, log, op, videoID, userID)
	if err != nil {
		return err
	}

	switch {
	case vote > 0:
		return fmt.Errorf("%s: %w", op, service.ErrAlreadyLiked)
	case vote < 0:
		if err := e.voteStorage.RemoveDisliker(ctx, videoID, userID); err != nil {
			log.Error("failed to remove disliker", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := e.voteStorage.AddLiker(ctx, videoID, userID); err != nil {
		log.Error("failed to add liker", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("liked video")

	return nil
}

// Dislike mirrors Like for the dislikers set.
func (e *Engage) Dislike(ctx context.Context, videoID, userID int64) error {
	const op = "Engage.Dislike"

	log := e.log.With(
		slog.String("op", op),
		slog.Int64("videoId", videoID),
		slog.Int64("userId", userID),
	)

	vote, err := e.currentVote(ctx, log, op, videoID, userID)
	if err != nil {
		return err
	}

	switch {
	case vote < 0:
		return fmt.Errorf("%s: %w", op, service.ErrAlreadyDisliked)
	case vote > 0:
		if err := e.voteStorage.RemoveLiker(ctx, videoID, userID); err != nil {
			log.Error("failed to remove liker", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := e.voteStorage.AddDisliker(ctx, videoID, userID); err != nil {
		log.Error("failed to add disliker", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("disliked video")

	return nil
}

func (e *Engage) currentVote(ctx context.Context, log *slog.Logger, op string, videoID, userID int64) (int64, error) {
	if _, err := e.videoStorage.Video(ctx, videoID); err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			log.Warn("video not found")
			return 0, fmt.Errorf("%s: %w", op, service.ErrVideoNotFound)
		}
		log.Error("failed to get video", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	vote, err := e.voteStorage.Vote(ctx, videoID, userID)
	if err != nil {
		log.Error("failed to get vote", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return vote, nil
}

// NewComment appends a comment with a server-side id and timestamp,
// embedding a snapshot of the poster's current name and cover photo.
func (e *Engage) NewComment(ctx context.Context, videoID, userID int64, text string) (models.Comment, error) {
	const op = "Engage.NewComment"

	log := e.log.With(
		slog.String("op", op),
		slog.Int64("videoId", videoID),
		slog.Int64("userId", userID),
	)

	if _, err := e.videoStorage.Video(ctx, videoID); err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			log.Warn("video not found")
			return models.Comment{}, fmt.Errorf("%s: %w", op, service.ErrVideoNotFound)
		}
		log.Error("failed to get video", sl.Err(err))
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := e.userStorage.User(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return models.Comment{}, fmt.Errorf("%s: %w", op, service.ErrUserNotFound)
		}
		log.Error("failed to get user", sl.Err(err))
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	comment := models.Comment{
		ID:      uuid.NewString(),
		VideoID: videoID,
		Author: models.CommentAuthor{
			ID:         user.ID,
			Name:       user.Name,
			CoverPhoto: user.CoverPhoto,
		},
		Comment:   text,
		CreatedAt: time.Now().UnixMilli(),
	}

	if err := e.cmntStorage.SaveComment(ctx, comment); err != nil {
		log.Error("failed to save comment", sl.Err(err))
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("posted comment", slog.String("commentId", comment.ID))

	return comment, nil
}

// EditComment replaces the comment text. Only the comment author
// or an admin may edit.
func (e *Engage) EditComment(ctx context.Context, videoID int64, commentID string, editorID int64, text string) error {
	const op = "Engage.EditComment"

	log := e.log.With(
		slog.String("op", op),
		slog.Int64("videoId", videoID),
		slog.String("commentId", commentID),
	)

	if err := e.checkCommentAccess(ctx, log, op, videoID, commentID, editorID); err != nil {
		return err
	}

	if err := e.cmntStorage.UpdateCommentText(ctx, videoID, commentID, text); err != nil {
		log.Error("failed to update comment", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("edited comment")

	return nil
}

// DeleteComment deletes the comment. Only the comment author
// or an admin may delete.
func (e *Engage) DeleteComment(ctx context.Context, videoID int64, commentID string, editorID int64) error {
	const op = "Engage.DeleteComment"

	log := e.log.With(
		slog.String("op", op),
		slog.Int64("videoId", videoID),
		slog.String("commentId", commentID),
	)

	if err := e.checkCommentAccess(ctx, log, op, videoID, commentID, editorID); err != nil {
		return err
	}

	if err := e.cmntStorage.DeleteComment(ctx, videoID, commentID); err != nil {
		log.Error("failed to delete comment", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("deleted comment")

	return nil
}

func (e *Engage) checkCommentAccess(ctx context.Context, log *slog.Logger, op string, videoID int64, commentID string, editorID int64) error {
	comment, err := e.cmntStorage.Comment(ctx, videoID, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrCommentNotFound) {
			log.Warn("comment not found")
			return fmt.Errorf("%s: %w", op, service.ErrCommentNotFound)
		}
		log.Error("failed to get comment", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if comment.Author.ID == editorID {
		return nil
	}

	editor, err := e.userStorage.User(ctx, editorID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("editor not found", slog.Int64("editorId", editorID))
			return fmt.Errorf("%s: %w", op, service.ErrNotAllowed)
		}
		log.Error("failed to get editor", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if !editor.IsAdmin() {
		log.Warn("comment access denied", slog.Int64("editorId", editorID))
		return fmt.Errorf("%s: %w", op, service.ErrNotAllowed)
	}

	return nil
}
