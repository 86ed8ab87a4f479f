package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestGoogleVerifier_RequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier("").Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestGoogleVerifier_MapsClaims(t *testing.T) {
	var gotAudience string
	v := &GoogleVerifier{
		ClientID: "client-1",
		validate: func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			gotAudience = audience
			return &idtoken.Payload{
				Subject: "g-42",
				Claims: map[string]any{
					"email":   "a@example.com",
					"name":    "Alice",
					"picture": "http://pic",
				},
			}, nil
		},
	}

	ext, err := v.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "client-1", gotAudience)
	assert.Equal(t, ExternalIdentity{Subject: "g-42", Email: "a@example.com", Name: "Alice", Picture: "http://pic"}, ext)
}

func TestGoogleVerifier_WrapsFailure(t *testing.T) {
	v := &GoogleVerifier{
		ClientID: "client-1",
		validate: func(context.Context, string, string) (*idtoken.Payload, error) {
			return nil, errors.New("token expired")
		},
	}
	_, err := v.Verify(context.Background(), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}
