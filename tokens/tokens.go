// Package tokens mints and verifies the bearer credentials that bind a
// request to a user identity. Tokens are stateless RS256 JWTs; nothing
// is persisted, so verification never touches the store.
package tokens

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrExpiredCredential   = errors.New("expired credential")
	ErrMalformedCredential = errors.New("malformed credential")
)

const (
	accessTTL  = time.Minute * 60
	refreshTTL = time.Minute * 90

	tokenScope = "basic"
)

type Issuer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewIssuer(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey) *Issuer {
	return &Issuer{privateKey: privateKey, publicKey: publicKey}
}

// Mint produces an access token embedding the user identity as its user
// claim. The caller is responsible for ensuring the user exists.
func (i *Issuer) Mint(user uuid.UUID) (string, error) {
	return i.mint(user, "access", accessTTL)
}

// MintPair produces an access/refresh token pair for the same user.
func (i *Issuer) MintPair(user uuid.UUID) (*oauth2.Token, error) {
	refreshJwt, err := i.mint(user, "refresh", refreshTTL)
	if err != nil {
		return nil, err
	}

	accessJwt, err := i.mint(user, "access", accessTTL)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken:  accessJwt,
		RefreshToken: refreshJwt,
		Expiry:       time.Now().Add(accessTTL),
	}, nil
}

func (i *Issuer) mint(user uuid.UUID, subject string, expireIn time.Duration) (string, error) {
	now := time.Now().UTC()
	return jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"user":  user.String(),
		"scope": tokenScope,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"sub":   subject,
		"exp":   now.Add(expireIn).Unix(),
	}).SignedString(i.privateKey)
}

// Verify checks signature and expiry of an access token and returns the
// embedded user identity. It does not confirm the user still exists or
// is active; consumers re-check against the store.
func (i *Issuer) Verify(raw string) (uuid.UUID, error) {
	return i.verify(raw, "access")
}

func (i *Issuer) VerifyRefresh(raw string) (uuid.UUID, error) {
	return i.verify(raw, "refresh")
}

func (i *Issuer) verify(raw, subject string) (uuid.UUID, error) {
	tok, err := jwt.Parse(raw, func(jwtToken *jwt.Token) (interface{}, error) {
		if _, ok := jwtToken.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected method: %s", jwtToken.Header["alg"])
		}
		return i.publicKey, nil
	})
	if err != nil {
		return uuid.Nil, classify(err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return uuid.Nil, ErrInvalidCredential
	}

	sub, _ := claims["sub"].(string)
	if sub != subject {
		return uuid.Nil, ErrInvalidCredential
	}

	rawUser, _ := claims["user"].(string)
	user, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, ErrInvalidCredential
	}

	return user, nil
}

func classify(err error) error {
	ve, ok := err.(*jwt.ValidationError)
	if !ok {
		return ErrInvalidCredential
	}

	switch {
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return ErrMalformedCredential
	case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
		return ErrExpiredCredential
	default:
		return ErrInvalidCredential
	}
}
