package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingCredential = errors.New("credential required")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrConfiguration     = errors.New("identity provider not configured")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// Test-mode sentinels. They are only honored when Gate.TestMode is set.
const (
	TestCredential = "test_credential"
	TestToken      = "test_token_123"
)

var (
	testExternal = ExternalIdentity{
		Subject: "test_google_id_123",
		Email:   "test@example.com",
		Name:    "Test User",
	}
	testIdentity = Identity{
		UserID: "test_user_123",
		Email:  "test@example.com",
	}
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID     string
	ExternalID string
	Email      string
}

// Gate turns provider credentials into session tokens and session tokens
// into identities.
type Gate struct {
	Users     UserStore
	JWT       *JWT
	Verifiers map[string]Verifier
	TestMode  bool
}

func (g *Gate) Login(ctx context.Context, provider, credential string) (string, Profile, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", Profile{}, ErrMissingCredential
	}

	ext, err := g.verify(ctx, provider, credential)
	if err != nil {
		return "", Profile{}, err
	}

	u, err := g.findOrCreate(ctx, ext)
	if err != nil {
		return "", Profile{}, err
	}

	token, err := g.JWT.Sign(Identity{UserID: u.ID, ExternalID: u.ExternalID, Email: u.Email})
	if err != nil {
		return "", Profile{}, fmt.Errorf("sign token: %w", err)
	}
	return token, u.Profile(), nil
}

func (g *Gate) verify(ctx context.Context, provider, credential string) (ExternalIdentity, error) {
	if g.TestMode && credential == TestCredential {
		return testExternal, nil
	}
	v, ok := g.Verifiers[provider]
	if !ok || v == nil {
		return ExternalIdentity{}, ErrConfiguration
	}
	ext, err := v.Verify(ctx, credential)
	if err != nil {
		if errors.Is(err, ErrConfiguration) {
			return ExternalIdentity{}, err
		}
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if ext.Subject == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}
	return ext, nil
}

func (g *Gate) findOrCreate(ctx context.Context, ext ExternalIdentity) (User, error) {
	u, err := g.Users.FindByIdentity(ctx, ext.Subject, ext.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, fmt.Errorf("find user: %w", err)
	}

	u = User{
		ExternalID: ext.Subject,
		Email:      ext.Email,
		Name:       ext.Name,
		Picture:    ext.Picture,
	}
	createErr := g.Users.Create(ctx, &u)
	if createErr == nil {
		return u, nil
	}

	// A concurrent first login may have inserted the same identity.
	existing, err := g.Users.FindByIdentity(ctx, ext.Subject, ext.Email)
	if err == nil {
		return existing, nil
	}
	return User{}, fmt.Errorf("create user: %w", createErr)
}

func (g *Gate) Authenticate(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrUnauthorized
	}
	if g.TestMode && token == TestToken {
		return testIdentity, nil
	}
	id, err := g.JWT.Verify(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	return id, nil
}
