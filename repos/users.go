package repos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	models "github.com/orgdir/orgdir-server/models/userdata"
	"github.com/uptrace/bun"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (c *UserRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := new(models.User)

	err := c.db.NewSelect().Model(user).Where(`"user"."id" = ?`, id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}

	return user, nil
}

func (c *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)

	err := c.db.NewSelect().Model(user).Where(`lower("user"."email") = lower(?)`, email).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}

	return user, nil
}

// RegisterTx inserts the user, their default organisation and the
// membership row in one transaction. A partially created user with no
// organisation is never observable. A duplicate email at write time
// surfaces as ErrDuplicateEmail.
func (c *UserRepo) RegisterTx(ctx context.Context, user *models.User, org *models.Organisation) error {
	err := c.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(org).Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewInsert().Model(&models.OrganisationToUser{
			OrganisationId: org.Id,
			UserId:         user.Id,
		}).Exec(ctx)
		return err
	})
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}
