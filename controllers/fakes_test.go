package controllers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orgdir/orgdir-server/models/userdata"
	"github.com/orgdir/orgdir-server/repos"
	"github.com/orgdir/orgdir-server/tokens"
)

var testIssuer = func() *tokens.Issuer {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return tokens.NewIssuer(key, &key.PublicKey)
}()

type fakeUserStore struct {
	getFn      func(ctx context.Context, id uuid.UUID) (*userdata.User, error)
	byEmailFn  func(ctx context.Context, email string) (*userdata.User, error)
	registerFn func(ctx context.Context, user *userdata.User, org *userdata.Organisation) error
}

func (f *fakeUserStore) GetUser(ctx context.Context, id uuid.UUID) (*userdata.User, error) {
	if f.getFn == nil {
		return nil, repos.ErrNotFound
	}
	return f.getFn(ctx, id)
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*userdata.User, error) {
	if f.byEmailFn == nil {
		return nil, repos.ErrNotFound
	}
	return f.byEmailFn(ctx, email)
}

func (f *fakeUserStore) RegisterTx(ctx context.Context, user *userdata.User, org *userdata.Organisation) error {
	if f.registerFn == nil {
		return nil
	}
	return f.registerFn(ctx, user, org)
}

type fakeOrgStore struct {
	getFn       func(ctx context.Context, id uuid.UUID) (*userdata.Organisation, error)
	addFn       func(ctx context.Context, org *userdata.Organisation, creator uuid.UUID) error
	addMemberFn func(ctx context.Context, orgId, userId uuid.UUID) error
}

func (f *fakeOrgStore) GetOrganisation(ctx context.Context, id uuid.UUID) (*userdata.Organisation, error) {
	if f.getFn == nil {
		return nil, repos.ErrNotFound
	}
	return f.getFn(ctx, id)
}

func (f *fakeOrgStore) AddOrganisation(ctx context.Context, org *userdata.Organisation, creator uuid.UUID) error {
	if f.addFn == nil {
		return nil
	}
	return f.addFn(ctx, org, creator)
}

func (f *fakeOrgStore) AddMember(ctx context.Context, orgId, userId uuid.UUID) error {
	if f.addMemberFn == nil {
		return nil
	}
	return f.addMemberFn(ctx, orgId, userId)
}

type fakeMembershipStore struct {
	isMemberFn func(ctx context.Context, orgId, userId uuid.UUID) (bool, error)
	sharesFn   func(ctx context.Context, a, b uuid.UUID) (bool, error)
	orgsForFn  func(ctx context.Context, userId uuid.UUID) ([]userdata.Organisation, error)
}

func (f *fakeMembershipStore) IsMember(ctx context.Context, orgId, userId uuid.UUID) (bool, error) {
	if f.isMemberFn == nil {
		return false, nil
	}
	return f.isMemberFn(ctx, orgId, userId)
}

func (f *fakeMembershipStore) SharesOrganisation(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if f.sharesFn == nil {
		return false, nil
	}
	return f.sharesFn(ctx, a, b)
}

func (f *fakeMembershipStore) OrganisationsFor(ctx context.Context, userId uuid.UUID) ([]userdata.Organisation, error) {
	if f.orgsForFn == nil {
		return nil, nil
	}
	return f.orgsForFn(ctx, userId)
}

func (f *fakeMembershipStore) MemberIDs(ctx context.Context, orgId uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func activeUser(email string) *userdata.User {
	return &userdata.User{
		Id:        uuid.New(),
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Active:    true,
	}
}

func userLookup(users ...*userdata.User) func(ctx context.Context, id uuid.UUID) (*userdata.User, error) {
	return func(ctx context.Context, id uuid.UUID) (*userdata.User, error) {
		for _, user := range users {
			if user.Id == id {
				return user, nil
			}
		}
		return nil, repos.ErrNotFound
	}
}

func doRequest(t *testing.T, app *fiber.App, method, path, body, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(raw)
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func mintFor(t *testing.T, user *userdata.User) string {
	t.Helper()

	raw, err := testIssuer.Mint(user.Id)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return raw
}
