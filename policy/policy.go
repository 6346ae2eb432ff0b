// Package policy decides which user and organisation resources are
// visible to an authenticated principal. Visibility is granted by
// shared organisation membership; a denied organisation lookup is
// surfaced by callers as "not found" so that existence of resources
// outside the principal's memberships is never revealed.
package policy

import (
	"context"

	"github.com/google/uuid"
	"github.com/orgdir/orgdir-server/models/userdata"
)

type MembershipStore interface {
	IsMember(ctx context.Context, orgId, userId uuid.UUID) (bool, error)
	SharesOrganisation(ctx context.Context, a, b uuid.UUID) (bool, error)
	OrganisationsFor(ctx context.Context, userId uuid.UUID) ([]userdata.Organisation, error)
	MemberIDs(ctx context.Context, orgId uuid.UUID) ([]uuid.UUID, error)
}

// MembershipCache is an optional read-through cache over an
// organisation's member set. A nil members slice means a miss.
type MembershipCache interface {
	Members(ctx context.Context, orgId uuid.UUID) ([]uuid.UUID, error)
	SetMembers(ctx context.Context, orgId uuid.UUID, members []uuid.UUID) error
	Invalidate(ctx context.Context, orgId uuid.UUID) error
}

type Evaluator struct {
	store MembershipStore
	cache MembershipCache
}

func NewEvaluator(store MembershipStore, cache MembershipCache) *Evaluator {
	return &Evaluator{store: store, cache: cache}
}

// CanViewProfile allows self-views unconditionally, otherwise requires
// at least one organisation shared between principal and target.
func (e *Evaluator) CanViewProfile(ctx context.Context, principal, target uuid.UUID) (bool, error) {
	if principal == target {
		return true, nil
	}

	return e.store.SharesOrganisation(ctx, principal, target)
}

// CanViewOrganisation allows members only. Callers translate a deny
// into a 404, not a 403.
func (e *Evaluator) CanViewOrganisation(ctx context.Context, principal, orgId uuid.UUID) (bool, error) {
	if e.cache != nil {
		members, err := e.cache.Members(ctx, orgId)
		if err == nil && members != nil {
			return containsId(members, principal), nil
		}
	}

	ok, err := e.store.IsMember(ctx, orgId, principal)
	if err != nil {
		return false, err
	}

	if e.cache != nil {
		if members, err := e.store.MemberIDs(ctx, orgId); err == nil && len(members) > 0 {
			e.cache.SetMembers(ctx, orgId, members)
		}
	}

	return ok, nil
}

// OrganisationsFor returns exactly the organisations the principal is a
// member of.
func (e *Evaluator) OrganisationsFor(ctx context.Context, principal uuid.UUID) ([]userdata.Organisation, error) {
	return e.store.OrganisationsFor(ctx, principal)
}

// CanAddMember is unrestricted by membership: any authenticated
// principal may add any existing user to any existing organisation.
// Tightening this is a policy decision, not a bug fix; this function is
// the single place to make it.
func (e *Evaluator) CanAddMember(ctx context.Context, principal, orgId, candidate uuid.UUID) (bool, error) {
	return true, nil
}

// InvalidateMembership drops any cached member set for the
// organisation. Called after membership writes.
func (e *Evaluator) InvalidateMembership(ctx context.Context, orgId uuid.UUID) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, orgId)
	}
}

func containsId(list []uuid.UUID, id uuid.UUID) bool {
	for _, val := range list {
		if val == id {
			return true
		}
	}
	return false
}
