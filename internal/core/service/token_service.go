package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userhub/directory-api/internal/core/domain"
)

// identityClaims is the signed token payload: registered claims (issuer,
// audience, expiry) plus the identity snapshot taken at authentication time.
type identityClaims struct {
	jwt.RegisteredClaims
	User domain.Identity `json:"user"`
}

// TokenService mints and verifies HS256 bearer tokens. The server keeps no
// session state: the token is the only place the authenticated identity lives
// between requests.
type TokenService struct {
	secret    []byte
	issuer    string
	audience  string
	tokenType string
	validity  time.Duration
}

func NewTokenService(secret, issuer, audience, tokenType string, validity time.Duration) *TokenService {
	if validity <= 0 {
		validity = 30 * time.Minute
	}
	return &TokenService{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		tokenType: tokenType,
		validity:  validity,
	}
}

// Mint signs a token embedding the user's identity. The password hash is
// deliberately absent from the snapshot.
func (s *TokenService) Mint(user *domain.User) (*domain.Authentication, error) {
	now := time.Now()
	expiresAt := now.Add(s.validity)

	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		User: domain.Identity{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Roles:     user.RoleNames(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.Authentication{
		Token:      signed,
		Type:       s.tokenType,
		Expiration: expiresAt.UnixMilli(),
	}, nil
}

// Verify parses and validates a raw token. Signature, issuer, audience and
// expiry must all match; any failure yields an error and no partial identity.
func (s *TokenService) Verify(token string) (*domain.Identity, error) {
	claims := &identityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	identity := claims.User
	return &identity, nil
}
