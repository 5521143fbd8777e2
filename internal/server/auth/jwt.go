// Package auth issues and verifies the signed session tokens that identify
// a caller, and carries the verified principal through request contexts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Principal is the identity a verified token speaks for.
type Principal struct {
	UserID string
	Admin  bool
}

// Claims are the standard registered claims plus the elevated-role flag.
// Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin,omitempty"`
}

// TokenService mints and checks HS256 tokens. The secret is fixed at
// construction; the service is safe for concurrent use.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret []byte) *TokenService {
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenService{secret: key, now: time.Now}
}

// Issue returns a token for p that expires ttl from now, and the expiry.
func (s *TokenService) Issue(p Principal, ttl time.Duration) (string, time.Time, error) {
	if p.UserID == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty subject", common.ErrValidation)
	}

	now := s.now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Admin: p.Admin,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: signing token: %v", common.ErrInternal, err)
	}

	return signed, expiresAt.Truncate(jwt.TimePrecision), nil
}

// Verify checks the signature and expiry of tokenString and returns the
// principal it was issued for. Failures are one of common.ErrMalformedToken,
// common.ErrInvalidSignature or common.ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, classify(token, err)
	}

	if claims.Subject == "" {
		return Principal{}, common.ErrMalformedToken
	}

	return Principal{UserID: claims.Subject, Admin: claims.Admin}, nil
}

// classify maps parser errors onto the token error kinds. A signature segment
// that fails to decode after the header and claims parsed is reported as an
// invalid signature.
func classify(token *jwt.Token, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		if token != nil && token.Method != nil {
			return common.ErrInvalidSignature
		}
		return common.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return common.ErrMalformedToken
	}
}
