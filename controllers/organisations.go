package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orgdir/orgdir-server/models/userdata"
	"github.com/orgdir/orgdir-server/policy"
	"github.com/orgdir/orgdir-server/repos"
	"github.com/orgdir/orgdir-server/tokens"
	"github.com/orgdir/orgdir-server/utils"

	"go.uber.org/fx"
)

// OrganisationStore is the slice of the credential store the
// organisation endpoints need. *repos.OrganisationRepo implements it.
type OrganisationStore interface {
	GetOrganisation(ctx context.Context, id uuid.UUID) (*userdata.Organisation, error)
	AddOrganisation(ctx context.Context, org *userdata.Organisation, creator uuid.UUID) error
	AddMember(ctx context.Context, orgId, userId uuid.UUID) error
}

type OrganisationController struct {
	Orgs   OrganisationStore
	Users  UserStore
	Policy *policy.Evaluator
}

type OrganisationControllerParams struct {
	fx.In

	Repo     *repos.OrganisationRepo
	UserRepo *repos.UserRepo
	Policy   *policy.Evaluator
	Issuer   *tokens.Issuer
}

func RegisterOrganisationController(r *utils.Router, p OrganisationControllerParams) {
	c := &OrganisationController{Orgs: p.Repo, Users: p.UserRepo, Policy: p.Policy}
	c.mount(r, utils.Protected(utils.JwtMiddlewareConfig{
		Issuer: p.Issuer,
		Users:  p.UserRepo,
	}))
}

func (c *OrganisationController) mount(r *utils.Router, protected fiber.Handler) {
	orgs := r.Group("/api/organisations", protected)

	orgs.Get("/", c.list)
	orgs.Post("/", c.create)
	orgs.Get("/:orgId", c.detail)
	orgs.Post("/:orgId/users", c.addUser)
}

type createOrgRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type addUserRequest struct {
	UserId string `json:"userId" validate:"required"`
}

func (c *OrganisationController) list(ctx *fiber.Ctx) error {
	principal := utils.Principal(ctx)

	orgs, err := c.Policy.OrganisationsFor(ctx.Context(), principal.Id)
	if err != nil {
		return utils.StandardInternalError(ctx, err)
	}

	return utils.StandardResponse(ctx, fiber.StatusOK, "Organisations fetched successfully", fiber.Map{
		"organisations": orgs,
	})
}

func (c *OrganisationController) create(ctx *fiber.Ctx) error {
	req := new(createOrgRequest)
	if err := ctx.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(ctx)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return utils.StandardValidationErrors(ctx, "Client error", errs)
	}

	org := &userdata.Organisation{
		Id:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}

	if err := c.Orgs.AddOrganisation(ctx.Context(), org, utils.Principal(ctx).Id); err != nil {
		return utils.StandardInternalError(ctx, err)
	}

	return utils.StandardResponse(ctx, fiber.StatusCreated, "Organisation created successfully", org)
}

func (c *OrganisationController) detail(ctx *fiber.Ctx) error {
	principal := utils.Principal(ctx)

	orgId, err := uuid.Parse(ctx.Params("orgId"))
	if err != nil {
		return organisationNotFound(ctx)
	}

	// A deny reads exactly like a missing organisation.
	ok, err := c.Policy.CanViewOrganisation(ctx.Context(), principal.Id, orgId)
	if err != nil {
		return utils.StandardInternalError(ctx, err)
	}
	if !ok {
		return organisationNotFound(ctx)
	}

	org, err := c.Orgs.GetOrganisation(ctx.Context(), orgId)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return organisationNotFound(ctx)
		}
		return utils.StandardInternalError(ctx, err)
	}

	return utils.StandardResponse(ctx, fiber.StatusOK, "Organisation details fetched successfully", org)
}

func (c *OrganisationController) addUser(ctx *fiber.Ctx) error {
	principal := utils.Principal(ctx)

	orgId, err := uuid.Parse(ctx.Params("orgId"))
	if err != nil {
		return organisationNotFound(ctx)
	}

	req := new(addUserRequest)
	if err := ctx.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(ctx)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return utils.StandardValidationErrors(ctx, "Client error", errs)
	}

	if _, err := c.Orgs.GetOrganisation(ctx.Context(), orgId); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return organisationNotFound(ctx)
		}
		return utils.StandardInternalError(ctx, err)
	}

	userId, err := uuid.Parse(req.UserId)
	if err != nil {
		return userNotFound(ctx)
	}

	user, err := c.Users.GetUser(ctx.Context(), userId)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return userNotFound(ctx)
		}
		return utils.StandardInternalError(ctx, err)
	}

	ok, err := c.Policy.CanAddMember(ctx.Context(), principal.Id, orgId, user.Id)
	if err != nil {
		return utils.StandardInternalError(ctx, err)
	}
	if !ok {
		return organisationNotFound(ctx)
	}

	if err := c.Orgs.AddMember(ctx.Context(), orgId, user.Id); err != nil {
		return utils.StandardInternalError(ctx, err)
	}

	c.Policy.InvalidateMembership(ctx.Context(), orgId)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "User added to organisation successfully",
	})
}

func organisationNotFound(ctx *fiber.Ctx) error {
	return utils.StandardError(ctx, fiber.StatusNotFound, "Not found", "Organisation not found")
}
