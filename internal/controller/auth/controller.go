package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
)

// New returns a controller that registers users,
// authorizes them and returns JWT.
func New(
	timeout time.Duration,
	a Auth,
) *Controller {
	return &Controller{
		timeout: timeout,
		srv:     a,
	}
}

type Controller struct {
	timeout time.Duration
	srv     Auth
}

type Auth interface {
	SignUp(ctx context.Context, form models.SignUpIn) (int64, string, error)
	Login(ctx context.Context, email string, password string) (string, error)
}

// SignUp creates a new user and logs it in.
func (authCtr *Controller) SignUp(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), authCtr.timeout)
	defer cancel()

	form := new(models.SignUpIn)

	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name required",
		})
	}
	if form.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email required",
		})
	}
	if form.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "password required",
		})
	}

	id, token, err := authCtr.srv.SignUp(ctx, *form)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user already exists",
			})
		}
		if errors.Is(err, service.ErrTimeout) {
			return c.SendStatus(fiber.StatusGatewayTimeout)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":    id,
		"token": token,
	})
}

// Login authorizes an existing user.
func (authCtr *Controller) Login(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), authCtr.timeout)
	defer cancel()

	form := new(models.LoginIn)

	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email required",
		})
	}
	if form.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "password required",
		})
	}

	token, err := authCtr.srv.Login(ctx, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "email does not exist",
			})
		}
		if errors.Is(err, service.ErrWrongPassword) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "wrong password",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
	})
}

// Logout exists for the session contract. Tokens are stateless,
// the client drops its copy.
func (authCtr *Controller) Logout(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}
