package userdata

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type OrganisationToUser struct {
	bun.BaseModel `bun:"userdata.organisation_users"`

	OrganisationId uuid.UUID     `bun:"organisation_id,type:uuid"`
	Organisation   *Organisation `bun:"rel:belongs-to,join:organisation_id=id"`
	UserId         uuid.UUID     `bun:"user_id,type:uuid"`
	User           *User         `bun:"rel:belongs-to,join:user_id=id"`
}
