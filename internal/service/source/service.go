package source

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mgusev/vidhub/internal/lib/ffmpeg"
	"github.com/mgusev/vidhub/internal/lib/logger/sl"
	"github.com/mgusev/vidhub/internal/service"
)

// Category is a destination directory for stored assets.
type Category string

const (
	CategoryVideos      Category = "videos"
	CategoryThumbnails  Category = "thumbnails"
	CategoryCoverPhotos Category = "coverPhotos"
)

// Source moves finished uploads from their temp location into the
// asset tree and probes media duration. All operations are
// synchronous: a caller is not done until the file is safely stored.
type Source struct {
	log          *slog.Logger
	root         string
	storeTimeout time.Duration
	probeTimeout time.Duration
}

func New(
	log *slog.Logger,
	root string,
	storeTimeout time.Duration,
	probeTimeout time.Duration,
) *Source {
	return &Source{
		log:          log,
		root:         root,
		storeTimeout: storeTimeout,
		probeTimeout: probeTimeout,
	}
}

// Store moves the temp file into the category directory and returns
// the stored path relative to the asset root. The destination name is
// <epoch-millis>-<random>-<original-name>, so two uploads landing in
// the same millisecond cannot collide.
func (s *Source) Store(ctx context.Context, tmpPath, originalName string, cat Category) (string, error) {
	const op = "Source.Store"

	log := s.log.With(
		slog.String("op", op),
		slog.String("category", string(cat)),
	)

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	relPath := filepath.Join(string(cat), destName(originalName))
	absPath := filepath.Join(s.root, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		log.Error("failed to create category dir", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := moveFile(ctx, tmpPath, absPath); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error("store timeout exceeded", slog.String("file", tmpPath))
			return "", service.ErrTimeout
		}
		log.Error("failed to move file", slog.String("file", tmpPath), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("stored file", slog.String("path", relPath))

	return relPath, nil
}

func destName(originalName string) string {
	buf := make([]byte, 4)
	rand.Read(buf)

	return fmt.Sprintf("%d-%s-%s",
		time.Now().UnixMilli(),
		hex.EncodeToString(buf),
		filepath.Base(originalName),
	)
}

// moveFile renames when possible and falls back to copy+remove
// when the temp dir lives on another filesystem.
func moveFile(ctx context.Context, src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}

// Duration probes the stored media file and returns its playable
// duration formatted as hours:minutes:seconds.
func (s *Source) Duration(ctx context.Context, relPath string) (string, error) {
	const op = "Source.Duration"

	log := s.log.With(
		slog.String("op", op),
		slog.String("path", relPath),
	)

	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	seconds, err := ffmpeg.Duration(ctx, filepath.Join(s.root, relPath))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Error("probe timeout exceeded")
			return "", service.ErrTimeout
		}
		log.Error("failed to probe duration", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return ffmpeg.FormatDuration(seconds), nil
}

// Delete removes a stored asset. A file that is already gone is
// logged and treated as deleted, so a record never becomes
// undeletable because its asset vanished.
func (s *Source) Delete(ctx context.Context, relPath string) error {
	const op = "Source.Delete"

	log := s.log.With(
		slog.String("op", op),
		slog.String("path", relPath),
	)

	absPath := filepath.Join(s.root, relPath)

	if err := os.Remove(absPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("file does not exist")
			return nil
		}
		log.Error("failed to delete file", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("deleted file")

	return nil
}
