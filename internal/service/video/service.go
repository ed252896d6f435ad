package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgusev/vidhub/internal/lib/logger/sl"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
	"github.com/mgusev/vidhub/internal/service/source"
	"github.com/mgusev/vidhub/internal/storage"
)

type Video struct {
	log          *slog.Logger
	videoStorage VideoStorage
	src          Source
}

type VideoStorage interface {
	SaveVideo(ctx context.Context, video models.Video) (int64, error)
	Video(ctx context.Context, id int64) (models.Video, error)
	AllVideos(ctx context.Context) ([]models.Video, error)
	IncrementViews(ctx context.Context, id int64) error
	UpdateVideoInfo(ctx context.Context, id int64, title, description string) error
	DeleteVideo(ctx context.Context, id int64) error
	Comments(ctx context.Context, videoID int64) ([]models.Comment, error)
	Likers(ctx context.Context, videoID int64) ([]int64, error)
	Dislikers(ctx context.Context, videoID int64) ([]int64, error)
}

type Source interface {
	Store(ctx context.Context, tmpPath, originalName string, cat source.Category) (string, error)
	Duration(ctx context.Context, relPath string) (string, error)
	Delete(ctx context.Context, relPath string) error
}

func New(
	log *slog.Logger,
	videoStorage VideoStorage,
	src Source,
) *Video {
	return &Video{
		log:          log,
		videoStorage: videoStorage,
		src:          src,
	}
}

// Feed returns all videos, newest first.
func (v *Video) Feed(ctx context.Context) ([]models.Video, error) {
	const op = "Video.Feed"

	log := v.log.With(slog.String("op", op))

	videos, err := v.videoStorage.AllVideos(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrContextCancelled) {
			log.Error("videoStorage.AllVideos timeout exceeded")
			return []models.Video{}, service.ErrTimeout
		}
		log.Error("failed to get videos", sl.Err(err))
		return []models.Video{}, fmt.Errorf("%s: %w", op, err)
	}

	return videos, nil
}

// NewVideo relocates both uploaded assets, probes the video duration
// and saves the record. Any failure aborts the whole creation: already
// relocated files are removed again and no record is written.
func (v *Video) NewVideo(ctx context.Context, form models.NewVideoIn) (int64, error) {
	const op = "Video.NewVideo"

	log := v.log.With(
		slog.String("op", op),
		slog.String("title", form.Title),
	)

	log.Info("creating video")

	videoPath, err := v.src.Store(ctx, form.VideoTmp, form.VideoName, source.CategoryVideos)
	if err != nil {
		log.Error("failed to store video file", sl.Err(err))
		return models.ErrVideoID, fmt.Errorf("%s: %w", op, err)
	}

	thumbnailPath, err := v.src.Store(ctx, form.ThumbnailTmp, form.ThumbnailName, source.CategoryThumbnails)
	if err != nil {
		log.Error("failed to store thumbnail file", sl.Err(err))
		v.discard(ctx, videoPath)
		return models.ErrVideoID, fmt.Errorf("%s: %w", op, err)
	}

	duration, err := v.src.Duration(ctx, videoPath)
	if err != nil {
		log.Error("failed to probe duration", sl.Err(err))
		v.discard(ctx, videoPath, thumbnailPath)
		if errors.Is(err, service.ErrTimeout) {
			return models.ErrVideoID, service.ErrTimeout
		}
		return models.ErrVideoID, fmt.Errorf("%s: %w", op, service.ErrMediaProbe)
	}

	now := time.Now().UnixMilli()
	id, err := v.videoStorage.SaveVideo(ctx, models.Video{
		Title:       form.Title,
		Description: form.Description,
		Video:       videoPath,
		Thumbnail:   thumbnailPath,
		Duration:    duration,
		Watch:       now,
		CreatedAt:   now,
		Views:       0,
	})
	if err != nil {
		log.Error("failed to save video", sl.Err(err))
		v.discard(ctx, videoPath, thumbnailPath)
		if errors.Is(err, storage.ErrContextCancelled) {
			return models.ErrVideoID, service.ErrTimeout
		}
		return models.ErrVideoID, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("created video", slog.Int64("id", id), slog.String("duration", duration))

	return id, nil
}

func (v *Video) discard(ctx context.Context, paths ...string) {
	for _, path := range paths {
		if err := v.src.Delete(ctx, path); err != nil {
			v.log.Error("failed to discard stored file", slog.String("path", path), sl.Err(err))
		}
	}
}

// Watch returns the video with comments and engagement sets,
// incrementing the view counter by one as a side effect.
func (v *Video) Watch(ctx context.Context, id int64) (models.WatchPage, error) {
	const op = "Video.Watch"

	log := v.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	if err := v.videoStorage.IncrementViews(ctx, id); err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			log.Warn("video not found")
			return models.WatchPage{}, fmt.Errorf("%s: %w", op, service.ErrVideoNotFound)
		}
		log.Error("failed to increment views", sl.Err(err))
		return models.WatchPage{}, fmt.Errorf("%s: %w", op, err)
	}

	video, err := v.videoStorage.Video(ctx, id)
	if err != nil {
		log.Error("failed to get video", sl.Err(err))
		return models.WatchPage{}, fmt.Errorf("%s: %w", op, err)
	}

	comments, err := v.videoStorage.Comments(ctx, id)
	if err != nil {
		log.Error("failed to get comments", sl.Err(err))
		return models.WatchPage{}, fmt.Errorf("%s: %w", op, err)
	}

	likers, err := v.videoStorage.Likers(ctx, id)
	if err != nil {
		log.Error("failed to get likers", sl.Err(err))
		return models.WatchPage{}, fmt.Errorf("%s: %w", op, err)
	}

	dislikers, err := v.videoStorage.Dislikers(ctx, id)
	if err != nil {
		log.Error("failed to get dislikers", sl.Err(err))
		return models.WatchPage{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.WatchPage{
		Video:     video,
		Comments:  comments,
		Likers:    likers,
		Dislikers: dislikers,
	}, nil
}

// Video returns video by id without touching the view counter.
func (v *Video) Video(ctx context.Context, id int64) (models.Video, error) {
	const op = "Video.Video"

	log := v.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	video, err := v.videoStorage.Video(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			log.Warn("video not found")
			return models.Video{}, fmt.Errorf("%s: %w", op, service.ErrVideoNotFound)
		}
		log.Error("failed to get video", sl.Err(err))
		return models.Video{}, fmt.Errorf("%s: %w", op, err)
	}

	return video, nil
}

// Search returns all case-insensitive substring matches on title,
// closest title first. Both the filter and the ranking fold titles
// in Go, so non-ASCII case differences match too.
func (v *Video) Search(ctx context.Context, query string) ([]models.Video, error) {
	const op = "Video.Search"

	log := v.log.With(
		slog.String("op", op),
		slog.String("query", query),
	)

	videos, err := v.videoStorage.AllVideos(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrContextCancelled) {
			log.Error("videoStorage.AllVideos timeout exceeded")
			return []models.Video{}, service.ErrTimeout
		}
		log.Error("failed to search videos", sl.Err(err))
		return []models.Video{}, fmt.Errorf("%s: %w", op, err)
	}

	return searchVideos(videos, query), nil
}

// UpdateInfo applies the tri-state edit rule: an empty field is left
// unchanged, both empty is a no-op.
func (v *Video) UpdateInfo(ctx context.Context, id int64, upd models.VideoUpdate) error {
	const op = "Video.UpdateInfo"

	log := v.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	if upd.Title == "" && upd.Description == "" {
		return nil
	}

	video, err := v.videoStorage.Video(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			log.Warn("video not found")
			return fmt.Errorf("%s: %w", op, service.ErrVideoNotFound)
		}
		log.Error("failed to get video", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	title := video.Title
	description := video.Description
	if upd.Title != "" {
		title = upd.Title
	}
	if upd.Description != "" {
		description = upd.Description
	}

	if err := v.videoStorage.UpdateVideoInfo(ctx, id, title, description); err != nil {
		log.Error("failed to update video", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("updated video")

	return nil
}

// DeleteVideo removes the record with both asset files.
func (v *Video) DeleteVideo(ctx context.Context, id int64) error {
	const op = "Video.DeleteVideo"

	log := v.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	log.Info("deleting video")

	video, err := v.videoStorage.Video(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			log.Warn("video not found")
			return fmt.Errorf("%s: %w", op, service.ErrVideoNotFound)
		}
		log.Error("failed to get video", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := v.src.Delete(ctx, video.Video); err != nil {
		log.Error("failed to delete video file", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := v.src.Delete(ctx, video.Thumbnail); err != nil {
		log.Error("failed to delete thumbnail file", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := v.videoStorage.DeleteVideo(ctx, id); err != nil {
		log.Error("failed to delete video", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("deleted video")

	return nil
}
