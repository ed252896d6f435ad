package engage

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	jwtController "github.com/mgusev/vidhub/internal/controller/jwt"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
)

func New(
	timeout time.Duration,
	srv EngageService,
) *Controller {
	return &Controller{
		timeout: timeout,
		srv:     srv,
	}
}

type Controller struct {
	timeout time.Duration
	srv     EngageService
}

type EngageService interface {
	Like(ctx context.Context, videoID, userID int64) error
	Dislike(ctx context.Context, videoID, userID int64) error
	NewComment(ctx context.Context, videoID, userID int64, text string) (models.Comment, error)
	EditComment(ctx context.Context, videoID int64, commentID string, editorID int64, text string) error
	DeleteComment(ctx context.Context, videoID int64, commentID string, editorID int64) error
}

type videoRef struct {
	VideoID int64 `json:"videoId"`
}

type commentIn struct {
	VideoID int64  `json:"videoId"`
	Comment string `json:"comment"`
}

type commentEdit struct {
	Edit string `json:"edit"`
}

// Like registers the caller's like. A repeated like reports
// an error status without mutating anything, a standing dislike
// is withdrawn first.
func (engageCtr *Controller) Like(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), engageCtr.timeout)
	defer cancel()

	userID, ok := jwtController.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication error",
		})
	}

	ref := new(videoRef)
	if err := c.BodyParser(ref); err != nil {
		return fiber.ErrBadRequest
	}

	if err := engageCtr.srv.Like(ctx, ref.VideoID, userID); err != nil {
		if errors.Is(err, service.ErrAlreadyLiked) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"message": "You already liked this video",
				"status":  "error",
			})
		}
		if errors.Is(err, service.ErrVideoNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "video not found",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Video liked",
		"status":  "success",
	})
}

// Dislike mirrors Like.
func (engageCtr *Controller) Dislike(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), engageCtr.timeout)
	defer cancel()

	userID, ok := jwtController.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication error",
		})
	}

	ref := new(videoRef)
	if err := c.BodyParser(ref); err != nil {
		return fiber.ErrBadRequest
	}

	if err := engageCtr.srv.Dislike(ctx, ref.VideoID, userID); err != nil {
		if errors.Is(err, service.ErrAlreadyDisliked) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"message": "You already disliked this video",
				"status":  "error",
			})
		}
		if errors.Is(err, service.ErrVideoNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "video not found",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Video disliked",
		"status":  "success",
	})
}

// Comment posts a new comment under the video on behalf of the caller.
func (engageCtr *Controller) Comment(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), engageCtr.timeout)
	defer cancel()

	userID, ok := jwtController.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication error",
		})
	}

	form := new(commentIn)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if form.Comment == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "comment required",
		})
	}

	comment, err := engageCtr.srv.NewComment(ctx, form.VideoID, userID, form.Comment)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "video not found",
			})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Comment has been posted",
		"status":  "success",
		"comment": comment,
	})
}

// EditComment replaces the comment text. Allowed for the comment
// author and admins.
func (engageCtr *Controller) EditComment(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), engageCtr.timeout)
	defer cancel()

	userID, ok := jwtController.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication error",
		})
	}

	videoID, err := c.ParamsInt("videoId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid video id",
		})
	}
	commentID := c.Params("commentId")

	form := new(commentEdit)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if form.Edit == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "edit required",
		})
	}

	if err := engageCtr.srv.EditComment(ctx, int64(videoID), commentID, userID, form.Edit); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "comment not found",
			})
		case errors.Is(err, service.ErrNotAllowed):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not allowed",
			})
		default:
			return c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Comment updated successfully",
		"status":  "success",
	})
}

// DeleteComment removes the comment. Allowed for the comment
// author and admins.
func (engageCtr *Controller) DeleteComment(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), engageCtr.timeout)
	defer cancel()

	userID, ok := jwtController.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication error",
		})
	}

	commentID := c.Params("id")

	ref := new(videoRef)
	if err := c.BodyParser(ref); err != nil {
		return fiber.ErrBadRequest
	}

	if err := engageCtr.srv.DeleteComment(ctx, ref.VideoID, commentID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "comment not found",
			})
		case errors.Is(err, service.ErrNotAllowed):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not allowed",
			})
		default:
			return c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Comment deleted successfully",
		"status":  "success",
	})
}
