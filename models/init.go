package models

import (
	"github.com/orgdir/orgdir-server/models/userdata"
	"github.com/uptrace/bun"
)

func InitModelRegistrations(db *bun.DB) {
	db.RegisterModel((*userdata.OrganisationToUser)(nil))
}
