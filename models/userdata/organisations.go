package userdata

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Organisation struct {
	bun.BaseModel `bun:"userdata.organisations"`

	Id          uuid.UUID `bun:"id,pk,type:uuid" json:"orgId"`
	Name        string    `bun:"name" json:"name"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	Users       []User    `bun:"m2m:userdata.organisation_users,join:Organisation=User" json:"-"`
}
