// Package jwtx signs and verifies the Ed25519 access tokens issued by the
// credential store. Refresh tokens are opaque and live in the database; only
// access tokens are JWTs.
package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the access-token lifetime matching the session
// cookie max-age.
const DefaultAccessTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrExpired      = errors.New("jwtx: token expired")
)

// Claims are the access-token claims. The profile snapshot fields mirror what
// the session layer caches so handlers rarely need a second profile lookup.
type Claims struct {
	jwt.RegisteredClaims

	// SID ties the token to a server-side session record.
	SID string `json:"sid,omitempty"`

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for an account.
func NewAccessClaims(subject, sid, email, name, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SID:   sid,
		Email: email,
		Name:  name,
		Role:  role,
	}
}

// Signer signs and verifies tokens with a single Ed25519 keypair.
type Signer struct {
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewSigner wraps an existing Ed25519 private key.
func NewSigner(key ed25519.PrivateKey, issuer string) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 private key size")
	}
	return &Signer{
		key:    key,
		pub:    key.Public().(ed25519.PublicKey),
		issuer: issuer,
	}, nil
}

// NewEphemeralSigner generates a fresh keypair. Tokens do not survive a
// process restart in this mode; fine for dev and tests.
func NewEphemeralSigner(issuer string) (*Signer, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate key: %w", err)
	}
	return NewSigner(key, issuer)
}

// NewSignerFromPEMFile loads a PKCS8 Ed25519 private key from disk.
func NewSignerFromPEMFile(path, issuer string) (*Signer, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwtx: read key file: %w", err)
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("jwtx: expected PKCS8 PRIVATE KEY PEM block")
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}

	return NewSigner(key, issuer)
}

// Sign turns claims into a signed JWT string.
func (s *Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.key)
}

// Verify validates a JWT string and returns its claims. Expiry and issuer are
// enforced here so callers get a single error to map to InvalidSession.
func (s *Signer) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}

// Issuer returns the iss claim value this signer stamps and enforces.
func (s *Signer) Issuer() string { return s.issuer }

// Ready reports whether the signer has key material loaded.
func (s *Signer) Ready() bool {
	return s != nil && len(s.key) == ed25519.PrivateKeySize
}
