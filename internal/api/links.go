package api

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const linkIssuer = "seatplan"

// errInvalidLink is returned for a forged, malformed or expired download link.
var errInvalidLink = errors.New("invalid or expired download link")

type linkClaims struct {
	jwt.RegisteredClaims
}

// linkSigner turns artifact tokens into signed, expiring download tokens.
type linkSigner struct {
	secret []byte
	now    func() time.Time
}

// newLinkSigner creates a signer. An empty secret is replaced by 32 random bytes,
// so links do not survive a restart.
func newLinkSigner(secret string, now func() time.Time) (*linkSigner, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate link secret: %w", err)
		}
	}
	if now == nil {
		now = time.Now
	}

	return &linkSigner{secret: key, now: now}, nil
}

// Sign returns an HS256 token carrying the artifact token as subject.
//
// Returns:
//   - string: Signed token
//   - time.Time: Expiry
//   - error: Signing error
func (s *linkSigner) Sign(artifact string, ttl time.Duration) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := linkClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    linkIssuer,
		Subject:   artifact,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign link: %w", err)
	}

	return signed, exp, nil
}

// Verify checks a signed token and returns the artifact token it carries.
//
// Returns:
//   - string: Artifact token
//   - error: errInvalidLink
func (s *linkSigner) Verify(raw string) (string, error) {
	tok, err := jwt.ParseWithClaims(raw, &linkClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(linkIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidLink, err)
	}

	claims, ok := tok.Claims.(*linkClaims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return "", errInvalidLink
	}

	return claims.Subject, nil
}
