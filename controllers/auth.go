package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orgdir/orgdir-server/models/userdata"
	"github.com/orgdir/orgdir-server/repos"
	"github.com/orgdir/orgdir-server/tokens"
	"github.com/orgdir/orgdir-server/utils"

	"go.uber.org/fx"
)

var validate = validator.New()

// UserStore is the slice of the credential store the controllers need.
// *repos.UserRepo implements it.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*userdata.User, error)
	GetUserByEmail(ctx context.Context, email string) (*userdata.User, error)
	RegisterTx(ctx context.Context, user *userdata.User, org *userdata.Organisation) error
}

type AuthController struct {
	Users  UserStore
	Issuer *tokens.Issuer
}

type AuthControllerParams struct {
	fx.In

	Repo   *repos.UserRepo
	Issuer *tokens.Issuer
}

func RegisterAuthController(r *utils.Router, p AuthControllerParams) {
	c := &AuthController{Users: p.Repo, Issuer: p.Issuer}
	c.mount(r)
}

func (c *AuthController) mount(r *utils.Router) {
	r.Post("/auth/register", c.register)
	r.Post("/auth/login", c.login)
	r.Post("/auth/refresh", c.refresh)
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,max=15"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authData struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken,omitempty"`
	User         *userdata.User `json:"user"`
}

func (c *AuthController) register(ctx *fiber.Ctx) error {
	req := new(registerRequest)
	if err := ctx.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(ctx)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return utils.StandardValidationErrors(ctx, "Registration unsuccessful", errs)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.StandardInternalError(ctx, err)
	}

	user := &userdata.User{
		Id:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		Password:  hashed,
		Active:    true,
	}
	org := &userdata.Organisation{
		Id:          uuid.New(),
		Name:        fmt.Sprintf("%s's Organisation", req.FirstName),
		Description: fmt.Sprintf("This is %s's Organisation", req.FirstName),
	}

	if err := c.Users.RegisterTx(ctx.Context(), user, org); err != nil {
		if errors.Is(err, repos.ErrDuplicateEmail) {
			return utils.StandardValidationErrors(ctx, "Registration unsuccessful", []*utils.ErrorResponse{
				{FailedField: "email", Tag: "unique", Value: req.Email},
			})
		}
		return utils.StandardInternalError(ctx, err)
	}

	pair, err := c.Issuer.MintPair(user.Id)
	if err != nil {
		return utils.StandardInternalError(ctx, err)
	}

	return utils.StandardResponse(ctx, fiber.StatusCreated, "Registration successful", authData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}

func (c *AuthController) login(ctx *fiber.Ctx) error {
	req := new(loginRequest)
	if err := ctx.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(ctx)
	}

	// Deliberately undifferentiated: never reveal whether the email
	// exists or which field was wrong.
	user, err := c.Users.GetUserByEmail(ctx.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return authenticationFailed(ctx)
		}
		return utils.StandardInternalError(ctx, err)
	}

	if !user.Active || !utils.VerifyHash(req.Password, user.Password) {
		return authenticationFailed(ctx)
	}

	pair, err := c.Issuer.MintPair(user.Id)
	if err != nil {
		return utils.StandardInternalError(ctx, err)
	}

	return utils.StandardResponse(ctx, fiber.StatusOK, "Login successful", authData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}

func (c *AuthController) refresh(ctx *fiber.Ctx) error {
	req := new(refreshRequest)
	if err := ctx.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(ctx)
	}

	id, err := c.Issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return utils.StandardError(ctx, fiber.StatusUnauthorized, "Unauthorized", err.Error())
	}

	user, err := c.Users.GetUser(ctx.Context(), id)
	if err != nil || !user.Active {
		return utils.StandardError(ctx, fiber.StatusUnauthorized, "Unauthorized", "Invalid credential")
	}

	pair, err := c.Issuer.MintPair(user.Id)
	if err != nil {
		return utils.StandardInternalError(ctx, err)
	}

	return utils.StandardResponse(ctx, fiber.StatusOK, "Token refreshed successfully", authData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}

func authenticationFailed(ctx *fiber.Ctx) error {
	return utils.StandardError(ctx, fiber.StatusUnauthorized, "Bad request", "Authentication failed")
}
