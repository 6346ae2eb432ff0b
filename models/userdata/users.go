package userdata

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"userdata.users"`

	Id            uuid.UUID      `bun:"id,pk,type:uuid" json:"userId"`
	FirstName     string         `bun:"first_name" json:"firstName"`
	LastName      string         `bun:"last_name" json:"lastName"`
	Email         string         `bun:"email" json:"email"`
	Phone         string         `bun:"phone,nullzero" json:"phone,omitempty"`
	Password      string         `bun:"password" json:"-"`
	Active        bool           `bun:"active" json:"-"`
	Admin         bool           `bun:"admin" json:"isAdmin"`
	Organisations []Organisation `bun:"m2m:userdata.organisation_users,join:User=Organisation" json:"-"`
}
