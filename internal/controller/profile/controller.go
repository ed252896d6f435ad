package profile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	jwtController "github.com/mgusev/vidhub/internal/controller/jwt"
	"github.com/mgusev/vidhub/internal/lib/logger/sl"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
	"github.com/mgusev/vidhub/internal/service/source"
)

func New(
	log *slog.Logger,
	timeout time.Duration,
	uploadTimeout time.Duration,
	tmpDir string,
	srv ProfileService,
	src Source,
) *Controller {
	return &Controller{
		log:           log,
		timeout:       timeout,
		uploadTimeout: uploadTimeout,
		tmpDir:        tmpDir,
		srv:           srv,
		src:           src,
	}
}

type Controller struct {
	log           *slog.Logger
	timeout       time.Duration
	uploadTimeout time.Duration
	tmpDir        string
	srv           ProfileService
	src           Source
}

type ProfileService interface {
	User(ctx context.Context, id int64) (models.UserOut, error)
	Update(ctx context.Context, id int64, upd models.ProfileUpdate) error
	UpdateCoverPhoto(ctx context.Context, id int64, newPath string) error
}

type Source interface {
	Store(ctx context.Context, tmpPath, originalName string, cat source.Category) (string, error)
}

// User returns the caller's own profile.
func (profileCtr *Controller) User(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), profileCtr.timeout)
	defer cancel()

	id, ok := jwtController.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication error",
		})
	}

	user, err := profileCtr.srv.User(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": user,
	})
}

// Update changes name and password. An empty field keeps the stored
// value, both empty succeeds without touching anything. A name change
// also rewrites the caller's comment author snapshots.
func (profileCtr *Controller) Update(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), profileCtr.timeout)
	defer cancel()

	id, ok := jwtController.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication error",
		})
	}

	upd := new(models.ProfileUpdate)
	if err := c.BodyParser(upd); err != nil {
		return fiber.ErrBadRequest
	}

	if err := profileCtr.srv.Update(ctx, id, *upd); err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "name already taken",
			})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		default:
			return c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Profile updated successfully",
		"status":  "success",
	})
}

// UploadCoverPhoto stores a new cover photo, points the profile at it
// and rewrites the caller's comment author snapshots. The previous
// photo is removed from disk. Runs under the upload deadline so the
// configured store budget is not cut short by the handler timeout.
func (profileCtr *Controller) UploadCoverPhoto(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), profileCtr.uploadTimeout)
	defer cancel()

	id, ok := jwtController.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication error",
		})
	}

	fileHeader, err := c.FormFile("coverPhoto")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "coverPhoto file required",
		})
	}

	tmp, err := os.CreateTemp(profileCtr.tmpDir, "cover-*")
	if err != nil {
		profileCtr.log.Error("failed to create temp file", sl.Err(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := c.SaveFile(fileHeader, tmp.Name()); err != nil {
		profileCtr.log.Error("failed to save uploaded file", sl.Err(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	mtype, err := mimetype.DetectFile(tmp.Name())
	if err != nil || !strings.HasPrefix(mtype.String(), "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "coverPhoto: unsupported media type",
		})
	}

	relPath, err := profileCtr.src.Store(ctx, tmp.Name(), fileHeader.Filename, source.CategoryCoverPhotos)
	if err != nil {
		if errors.Is(err, service.ErrTimeout) {
			return c.SendStatus(fiber.StatusGatewayTimeout)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if err := profileCtr.srv.UpdateCoverPhoto(ctx, id, relPath); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"coverPhoto": relPath,
		"message":    "Profile photo updated successfully",
		"status":     "success",
	})
}
