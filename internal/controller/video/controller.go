package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	jwtController "github.com/mgusev/vidhub/internal/controller/jwt"
	"github.com/mgusev/vidhub/internal/lib/logger/sl"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
)

func New(
	log *slog.Logger,
	timeout time.Duration,
	uploadTimeout time.Duration,
	tmpDir string,
	srv VideoService,
	users UserProvider,
) *Controller {
	return &Controller{
		log:           log,
		timeout:       timeout,
		uploadTimeout: uploadTimeout,
		tmpDir:        tmpDir,
		srv:           srv,
		users:         users,
	}
}

type Controller struct {
	log           *slog.Logger
	timeout       time.Duration
	uploadTimeout time.Duration
	tmpDir        string
	srv           VideoService
	users         UserProvider
}

type VideoService interface {
	Feed(ctx context.Context) ([]models.Video, error)
	NewVideo(ctx context.Context, form models.NewVideoIn) (int64, error)
	Watch(ctx context.Context, id int64) (models.WatchPage, error)
	Video(ctx context.Context, id int64) (models.Video, error)
	Search(ctx context.Context, query string) ([]models.Video, error)
	UpdateInfo(ctx context.Context, id int64, upd models.VideoUpdate) error
	DeleteVideo(ctx context.Context, id int64) error
}

type UserProvider interface {
	User(ctx context.Context, id int64) (models.UserOut, error)
}

// AdminAccess lets only admins through. An id that resolves to no
// stored user is treated as a bad token, not as a known non-admin.
func (videoCtr *Controller) AdminAccess() func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), videoCtr.timeout)
		defer cancel()

		id, ok := jwtController.UserID(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		}

		user, err := videoCtr.users.User(ctx, id)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "authentication error",
				})
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		if user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}

		return c.Next()
	}
}

// Feed returns all videos, newest first.
func (videoCtr *Controller) Feed(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), videoCtr.timeout)
	defer cancel()

	videos, err := videoCtr.srv.Feed(ctx)
	if err != nil {
		if errors.Is(err, service.ErrTimeout) {
			return c.SendStatus(fiber.StatusGatewayTimeout)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"videos": videos,
	})
}

// Upload accepts a multipart form with title, description and the
// video/thumbnail files, stores both assets and creates the record.
// The request does not return until the record exists or the upload
// has been fully undone. It runs under its own deadline sized to the
// media pipeline, the generic handler timeout would cut the
// configured store and probe budgets short.
func (videoCtr *Controller) Upload(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), videoCtr.uploadTimeout)
	defer cancel()

	title := c.FormValue("title")
	description := c.FormValue("description")
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title required",
		})
	}
	if description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "description required",
		})
	}

	videoTmp, videoName, ok := videoCtr.saveTmp(c, "video", "video/")
	if !ok {
		return nil
	}
	defer os.Remove(videoTmp)

	thumbTmp, thumbName, ok := videoCtr.saveTmp(c, "thumbnail", "image/")
	if !ok {
		return nil
	}
	defer os.Remove(thumbTmp)

	id, err := videoCtr.srv.NewVideo(ctx, models.NewVideoIn{
		Title:         title,
		Description:   description,
		VideoTmp:      videoTmp,
		VideoName:     videoName,
		ThumbnailTmp:  thumbTmp,
		ThumbnailName: thumbName,
	})
	if err != nil {
		if errors.Is(err, service.ErrTimeout) {
			return c.SendStatus(fiber.StatusGatewayTimeout)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":      id,
		"message": "Video uploaded successfully",
		"status":  "success",
	})
}

// saveTmp writes the named form file into the temp dir and verifies
// its sniffed mime type against wantPrefix. On failure the response
// is already rendered and false is returned.
func (videoCtr *Controller) saveTmp(c *fiber.Ctx, field, wantPrefix string) (string, string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": field + " file required",
		})
		return "", "", false
	}

	tmp, err := os.CreateTemp(videoCtr.tmpDir, "upload-*")
	if err != nil {
		videoCtr.log.Error("failed to create temp file", sl.Err(err))
		c.SendStatus(fiber.StatusInternalServerError)
		return "", "", false
	}
	tmp.Close()

	if err := c.SaveFile(fileHeader, tmp.Name()); err != nil {
		os.Remove(tmp.Name())
		videoCtr.log.Error("failed to save uploaded file", sl.Err(err))
		c.SendStatus(fiber.StatusInternalServerError)
		return "", "", false
	}

	if err := checkMime(fileHeader, tmp.Name(), wantPrefix); err != nil {
		os.Remove(tmp.Name())
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("%s: unsupported media type", field),
		})
		return "", "", false
	}

	return tmp.Name(), fileHeader.Filename, true
}

// checkMime trusts the declared content type when present and falls
// back to content sniffing for generic or missing declarations.
func checkMime(fileHeader *multipart.FileHeader, path, wantPrefix string) error {
	declared := fileHeader.Header.Get(fiber.HeaderContentType)
	if declared != "" && declared != "application/octet-stream" {
		if strings.HasPrefix(declared, wantPrefix) {
			return nil
		}
		return fmt.Errorf("declared type %s", declared)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mtype.String(), wantPrefix) {
		return fmt.Errorf("detected type %s", mtype.String())
	}

	return nil
}

// Watch returns the watch page and bumps the view counter.
func (videoCtr *Controller) Watch(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), videoCtr.timeout)
	defer cancel()

	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid video id",
		})
	}

	page, err := videoCtr.srv.Watch(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "video not found",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

// Search returns case-insensitive title matches, closest first.
func (videoCtr *Controller) Search(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), videoCtr.timeout)
	defer cancel()

	query := c.Query("search_query")

	videos, err := videoCtr.srv.Search(ctx, query)
	if err != nil {
		if errors.Is(err, service.ErrTimeout) {
			return c.SendStatus(fiber.StatusGatewayTimeout)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"videos": videos,
	})
}

// EditView returns the video for the edit form without
// touching the view counter.
func (videoCtr *Controller) EditView(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), videoCtr.timeout)
	defer cancel()

	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid video id",
		})
	}

	video, err := videoCtr.srv.Video(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "video not found",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"video": video,
	})
}

// Edit updates title and description. An empty field keeps the
// stored value.
func (videoCtr *Controller) Edit(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), videoCtr.timeout)
	defer cancel()

	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid video id",
		})
	}

	upd := new(models.VideoUpdate)
	if err := c.BodyParser(upd); err != nil {
		return fiber.ErrBadRequest
	}

	if err := videoCtr.srv.UpdateInfo(ctx, id, *upd); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "video not found",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Video updated successfully",
		"status":  "success",
	})
}

// Delete removes the record and both stored assets.
func (videoCtr *Controller) Delete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), videoCtr.timeout)
	defer cancel()

	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid video id",
		})
	}

	if err := videoCtr.srv.DeleteVideo(ctx, id); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "video not found",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Video deleted successfully",
		"status":  "success",
	})
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
