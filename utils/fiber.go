package utils

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orgdir/orgdir-server/models/userdata"
	"github.com/orgdir/orgdir-server/tokens"
)

const authScheme = "Bearer"

type Router struct {
	fiber.Router
}

// PrincipalStore re-checks the identity embedded in a verified token
// against the credential store before any handler runs.
type PrincipalStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*userdata.User, error)
}

type JwtMiddlewareConfig struct {
	Issuer *tokens.Issuer
	Users  PrincipalStore
}

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

func GetDefaultRouter(app *fiber.App) *Router {
	temp := app.Group("")
	return &Router{Router: temp}
}

// Protected verifies the Bearer credential, then confirms the embedded
// identity still matches an existing, active user. The principal is
// stashed in locals for policy checks downstream.
func Protected(config JwtMiddlewareConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawToken, err := func() (string, error) {
			auth := c.Get("Authorization")
			l := len(authScheme)
			if len(auth) > l+1 && strings.EqualFold(auth[:l], authScheme) {
				return auth[l+1:], nil
			}

			return "", errors.New("Missing or malformed JWT")
		}()
		if err != nil {
			return StandardError(c, fiber.StatusUnauthorized, "Unauthorized", "Missing or malformed JWT")
		}

		id, err := config.Issuer.Verify(rawToken)
		if err != nil {
			return StandardError(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		user, err := config.Users.GetUser(c.Context(), id)
		if err != nil || !user.Active {
			return StandardError(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid credential")
		}

		c.Locals("principal", user)

		return c.Next()
	}
}

func Principal(c *fiber.Ctx) *userdata.User {
	return c.Locals("principal").(*userdata.User)
}

func StandardResponse(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func StandardError(c *fiber.Ctx, status int, statusText, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":     statusText,
		"message":    message,
		"statusCode": status,
	})
}

func StandardValidationErrors(c *fiber.Ctx, message string, errs []*ErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":     "Bad request",
		"message":    message,
		"statusCode": fiber.StatusBadRequest,
		"errors":     errs,
	})
}

func StandardInternalError(c *fiber.Ctx, err error) error {
	return StandardError(c, fiber.StatusInternalServerError, "error", err.Error())
}

func StandardCouldNotParse(c *fiber.Ctx) error {
	return StandardError(c, fiber.StatusBadRequest, "Bad request", "Could not parse request")
}
