package repos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	models "github.com/orgdir/orgdir-server/models/userdata"
	"github.com/uptrace/bun"
)

type OrganisationRepo struct {
	db *bun.DB
}

func NewOrganisationRepo(db *bun.DB) *OrganisationRepo {
	return &OrganisationRepo{db: db}
}

func (c *OrganisationRepo) GetOrganisation(ctx context.Context, id uuid.UUID) (*models.Organisation, error) {
	org := new(models.Organisation)

	err := c.db.NewSelect().Model(org).Where(`"organisation"."id" = ?`, id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}

	return org, nil
}

// AddOrganisation inserts the organisation and its creator's membership
// in one transaction.
func (c *OrganisationRepo) AddOrganisation(ctx context.Context, org *models.Organisation, creator uuid.UUID) error {
	return c.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(org).Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewInsert().Model(&models.OrganisationToUser{
			OrganisationId: org.Id,
			UserId:         creator,
		}).Exec(ctx)
		return err
	})
}

// AddMember is idempotent: re-adding an existing member is a no-op.
func (c *OrganisationRepo) AddMember(ctx context.Context, orgId, userId uuid.UUID) error {
	_, err := c.db.NewInsert().Model(&models.OrganisationToUser{
		OrganisationId: orgId,
		UserId:         userId,
	}).Ignore().Exec(ctx)
	return err
}

func (c *OrganisationRepo) OrganisationsFor(ctx context.Context, userId uuid.UUID) ([]models.Organisation, error) {
	orgs := make([]models.Organisation, 0)

	err := c.db.NewSelect().Model(&orgs).
		Join(`JOIN userdata.organisation_users AS ou ON ou.organisation_id = "organisation"."id"`).
		Where("ou.user_id = ?", userId).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return orgs, nil
}

func (c *OrganisationRepo) IsMember(ctx context.Context, orgId, userId uuid.UUID) (bool, error) {
	count, err := c.db.NewSelect().Model((*models.OrganisationToUser)(nil)).
		Where("organisation_id = ? AND user_id = ?", orgId, userId).
		Count(ctx)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (c *OrganisationRepo) SharesOrganisation(ctx context.Context, a, b uuid.UUID) (bool, error) {
	count, err := c.db.NewSelect().
		Table("userdata.organisation_users").
		TableExpr("userdata.organisation_users AS other").
		Where("organisation_users.organisation_id = other.organisation_id").
		Where("organisation_users.user_id = ?", a).
		Where("other.user_id = ?", b).
		Count(ctx)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (c *OrganisationRepo) MemberIDs(ctx context.Context, orgId uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)

	err := c.db.NewSelect().Model((*models.OrganisationToUser)(nil)).
		Column("user_id").
		Where("organisation_id = ?", orgId).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}

	return ids, nil
}
