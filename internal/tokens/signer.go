package tokens

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/keys"
)

// DefaultTTL is the lifetime of tokens minted by a Signer.
const DefaultTTL = time.Hour

// Signer mints bearer tokens for a service identity with its private key.
type Signer struct {
	identity core.ServiceIdentity
	key      crypto.Signer
	method   jwt.SigningMethod
	ttl      time.Duration
	now      func() time.Time
}

type SignerOption func(*Signer)

// WithTTL sets the lifetime of minted tokens.
func WithTTL(ttl time.Duration) SignerOption {
	return func(s *Signer) {
		s.ttl = ttl
	}
}

// WithSignerNow replaces the clock used for iat and exp.
func WithSignerNow(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

// NewSigner parses privateKeyPEM and prepares a signer for identity.
func NewSigner(identity core.ServiceIdentity, privateKeyPEM string, opts ...SignerOption) (*Signer, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	key, err := keys.ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	method, err := methodFor(key)
	if err != nil {
		return nil, err
	}

	s := &Signer{
		identity: identity,
		key:      key,
		method:   method,
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Signer) Identity() core.ServiceIdentity {
	return s.identity
}

// Sign mints a token with iss set to the signer's identity. Registered claims
// in extra are overwritten.
func (s *Signer) Sign(subject string, extra map[string]any) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["iss"] = s.identity.String()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.ttl).Unix()
	if subject != "" {
		claims["sub"] = subject
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func methodFor(key crypto.Signer) (jwt.SigningMethod, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return jwt.SigningMethodRS256, nil
	case *ecdsa.PrivateKey:
		switch k.Curve.Params().BitSize {
		case 256:
			return jwt.SigningMethodES256, nil
		case 384:
			return jwt.SigningMethodES384, nil
		case 521:
			return jwt.SigningMethodES512, nil
		}
		return nil, fmt.Errorf("unsupported ecdsa curve %s", k.Curve.Params().Name)
	case ed25519.PrivateKey:
		return jwt.SigningMethodEdDSA, nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
}
