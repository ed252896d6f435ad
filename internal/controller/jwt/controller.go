package jwtController

import (
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type JWT struct {
	secret []byte
}

func New(secret []byte) *JWT {
	return &JWT{secret: secret}
}

func (jwtController *JWT) AuthRequired() func(*fiber.Ctx) error {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: jwtController.secret},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		},
	})
}

// UserID extracts the caller's user id from the bearer token.
// It does not check validity, only jwtware has access to the
// secret, so it must run behind AuthRequired.
func UserID(c *fiber.Ctx) (int64, bool) {
	auth := c.Get(fiber.HeaderAuthorization)

	jwtSplitted := strings.Split(auth, " ")
	if len(jwtSplitted) != 2 || jwtSplitted[0] != "Bearer" {
		return 0, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(jwtSplitted[1], claims); err != nil {
		return 0, false
	}

	uid, ok := claims["uid"].(float64)
	if !ok {
		return 0, false
	}

	return int64(uid), true
}
