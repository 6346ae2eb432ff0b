package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orgdir/orgdir-server/policy"
	"github.com/orgdir/orgdir-server/repos"
	"github.com/orgdir/orgdir-server/tokens"
	"github.com/orgdir/orgdir-server/utils"

	"go.uber.org/fx"
)

type UserController struct {
	Users  UserStore
	Policy *policy.Evaluator
}

type UserControllerParams struct {
	fx.In

	Repo   *repos.UserRepo
	Policy *policy.Evaluator
	Issuer *tokens.Issuer
}

func RegisterUserController(r *utils.Router, p UserControllerParams) {
	c := &UserController{Users: p.Repo, Policy: p.Policy}
	c.mount(r, utils.Protected(utils.JwtMiddlewareConfig{
		Issuer: p.Issuer,
		Users:  p.Repo,
	}))
}

func (c *UserController) mount(r *utils.Router, protected fiber.Handler) {
	r.Get("/api/users/:userId", protected, c.profile)
}

func (c *UserController) profile(ctx *fiber.Ctx) error {
	principal := utils.Principal(ctx)

	targetId, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return userNotFound(ctx)
	}

	ok, err := c.Policy.CanViewProfile(ctx.Context(), principal.Id, targetId)
	if err != nil {
		return utils.StandardInternalError(ctx, err)
	}
	if !ok {
		return userNotFound(ctx)
	}

	if targetId == principal.Id {
		return utils.StandardResponse(ctx, fiber.StatusOK, "User profile fetched successfully", principal)
	}

	user, err := c.Users.GetUser(ctx.Context(), targetId)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return userNotFound(ctx)
		}
		return utils.StandardInternalError(ctx, err)
	}

	return utils.StandardResponse(ctx, fiber.StatusOK, "User profile fetched successfully", user)
}

func userNotFound(ctx *fiber.Ctx) error {
	return utils.StandardError(ctx, fiber.StatusNotFound, "Not found", "User not found or not in the same organisation")
}
