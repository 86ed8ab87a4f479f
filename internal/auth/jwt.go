package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what a session token carries. Subject is the user id.
type Claims struct {
	ExternalID string `json:"ext"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWT signs HS256 tokens. A zero ttl issues tokens without exp, which
// stay valid as long as the secret does.
func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWT) Sign(id Identity) (string, error) {
	now := j.now()
	claims := Claims{
		ExternalID: id.ExternalID,
		Email:      id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.ttl))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (Identity, error) {
	var claims Claims
	t, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil || !t.Valid {
		return Identity{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("missing sub")
	}
	return Identity{
		UserID:     claims.Subject,
		ExternalID: claims.ExternalID,
		Email:      claims.Email,
	}, nil
}
