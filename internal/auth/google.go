package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ExternalIdentity is what an identity provider vouches for.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Verifier checks a provider credential.
type Verifier interface {
	Verify(ctx context.Context, credential string) (ExternalIdentity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, credential string) (ExternalIdentity, error)

func (f VerifierFunc) Verify(ctx context.Context, credential string) (ExternalIdentity, error) {
	return f(ctx, credential)
}

// GoogleVerifier validates Google Sign-In ID tokens issued for ClientID.
type GoogleVerifier struct {
	ClientID string
	// validate defaults to idtoken.Validate.
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{ClientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (ExternalIdentity, error) {
	if v.ClientID == "" {
		return ExternalIdentity{}, ErrConfiguration
	}
	validate := v.validate
	if validate == nil {
		validate = idtoken.Validate
	}
	p, err := validate(ctx, credential, v.ClientID)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("google id token: %w", err)
	}
	return ExternalIdentity{
		Subject: p.Subject,
		Email:   claimString(p.Claims, "email"),
		Name:    claimString(p.Claims, "name"),
		Picture: claimString(p.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}
