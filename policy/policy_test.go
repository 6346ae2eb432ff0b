package policy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/orgdir/orgdir-server/models/userdata"
)

type fakeStore struct {
	isMemberFn func(ctx context.Context, orgId, userId uuid.UUID) (bool, error)
	sharesFn   func(ctx context.Context, a, b uuid.UUID) (bool, error)
	orgsForFn  func(ctx context.Context, userId uuid.UUID) ([]userdata.Organisation, error)
	membersFn  func(ctx context.Context, orgId uuid.UUID) ([]uuid.UUID, error)
}

func (f fakeStore) IsMember(ctx context.Context, orgId, userId uuid.UUID) (bool, error) {
	if f.isMemberFn == nil {
		return false, nil
	}
	return f.isMemberFn(ctx, orgId, userId)
}

func (f fakeStore) SharesOrganisation(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if f.sharesFn == nil {
		return false, nil
	}
	return f.sharesFn(ctx, a, b)
}

func (f fakeStore) OrganisationsFor(ctx context.Context, userId uuid.UUID) ([]userdata.Organisation, error) {
	if f.orgsForFn == nil {
		return nil, nil
	}
	return f.orgsForFn(ctx, userId)
}

func (f fakeStore) MemberIDs(ctx context.Context, orgId uuid.UUID) ([]uuid.UUID, error) {
	if f.membersFn == nil {
		return nil, nil
	}
	return f.membersFn(ctx, orgId)
}

type fakeCache struct {
	sets        map[uuid.UUID][]uuid.UUID
	invalidated []uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{sets: make(map[uuid.UUID][]uuid.UUID)}
}

func (f *fakeCache) Members(ctx context.Context, orgId uuid.UUID) ([]uuid.UUID, error) {
	return f.sets[orgId], nil
}

func (f *fakeCache) SetMembers(ctx context.Context, orgId uuid.UUID, members []uuid.UUID) error {
	f.sets[orgId] = members
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, orgId uuid.UUID) error {
	delete(f.sets, orgId)
	f.invalidated = append(f.invalidated, orgId)
	return nil
}

func TestCanViewProfileSelf(t *testing.T) {
	principal := uuid.New()

	e := NewEvaluator(fakeStore{
		sharesFn: func(ctx context.Context, a, b uuid.UUID) (bool, error) {
			t.Fatal("self-view must not consult the store")
			return false, nil
		},
	}, nil)

	ok, err := e.CanViewProfile(context.Background(), principal, principal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("principal denied view of their own profile")
	}
}

func TestCanViewProfileSharedOrganisation(t *testing.T) {
	principal, target := uuid.New(), uuid.New()

	tests := []struct {
		name   string
		shared bool
		want   bool
	}{
		{"shared organisation", true, true},
		{"no shared organisation", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(fakeStore{
				sharesFn: func(ctx context.Context, a, b uuid.UUID) (bool, error) {
					if a != principal || b != target {
						t.Errorf("shares called with (%s, %s)", a, b)
					}
					return tt.shared, nil
				},
			}, nil)

			ok, err := e.CanViewProfile(context.Background(), principal, target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Fatalf("got %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestCanViewOrganisationMembership(t *testing.T) {
	principal, orgId := uuid.New(), uuid.New()

	tests := []struct {
		name   string
		member bool
	}{
		{"member", true},
		{"non-member", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(fakeStore{
				isMemberFn: func(ctx context.Context, o, u uuid.UUID) (bool, error) {
					return o == orgId && u == principal && tt.member, nil
				},
			}, nil)

			ok, err := e.CanViewOrganisation(context.Background(), principal, orgId)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.member {
				t.Fatalf("got %v, want %v", ok, tt.member)
			}
		})
	}
}

func TestCanViewOrganisationCacheHit(t *testing.T) {
	principal, stranger, orgId := uuid.New(), uuid.New(), uuid.New()

	cache := newFakeCache()
	cache.sets[orgId] = []uuid.UUID{principal}

	e := NewEvaluator(fakeStore{
		isMemberFn: func(ctx context.Context, o, u uuid.UUID) (bool, error) {
			t.Fatal("cache hit must not consult the store")
			return false, nil
		},
	}, cache)

	ok, err := e.CanViewOrganisation(context.Background(), principal, orgId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("cached member denied")
	}

	ok, err = e.CanViewOrganisation(context.Background(), stranger, orgId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("cached non-member allowed")
	}
}

func TestCanViewOrganisationCacheFill(t *testing.T) {
	principal, orgId := uuid.New(), uuid.New()

	cache := newFakeCache()
	e := NewEvaluator(fakeStore{
		isMemberFn: func(ctx context.Context, o, u uuid.UUID) (bool, error) {
			return true, nil
		},
		membersFn: func(ctx context.Context, o uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{principal}, nil
		},
	}, cache)

	if _, err := e.CanViewOrganisation(context.Background(), principal, orgId); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cache.sets[orgId]; len(got) != 1 || got[0] != principal {
		t.Fatalf("cache not filled after miss, got %v", got)
	}
}

func TestInvalidateMembership(t *testing.T) {
	orgId := uuid.New()

	cache := newFakeCache()
	cache.sets[orgId] = []uuid.UUID{uuid.New()}

	e := NewEvaluator(fakeStore{}, cache)
	e.InvalidateMembership(context.Background(), orgId)

	if _, ok := cache.sets[orgId]; ok {
		t.Fatal("member set still cached after invalidation")
	}
}

func TestOrganisationsForNoLeakage(t *testing.T) {
	principal := uuid.New()
	own := []userdata.Organisation{{Id: uuid.New(), Name: "Own"}}

	e := NewEvaluator(fakeStore{
		orgsForFn: func(ctx context.Context, userId uuid.UUID) ([]userdata.Organisation, error) {
			if userId != principal {
				t.Errorf("queried organisations for %s", userId)
			}
			return own, nil
		},
	}, nil)

	orgs, err := e.OrganisationsFor(context.Background(), principal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Id != own[0].Id {
		t.Fatalf("got %v, want exactly the principal's organisations", orgs)
	}
}

func TestCanAddMemberUnrestricted(t *testing.T) {
	e := NewEvaluator(fakeStore{}, nil)

	ok, err := e.CanAddMember(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("add-member is unrestricted for authenticated principals")
	}
}
