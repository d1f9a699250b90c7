package core

import (
	"fmt"
	"regexp"
	"time"
)

// DirectoryKeyPrefix namespaces public keys in the key-value directory.
const DirectoryKeyPrefix = "NOONA:TOKEN:"

var identityPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ServiceIdentity is the stable name of a participating service.
// It is used both as the directory key suffix and as the JWT "iss" claim.
type ServiceIdentity string

// Validate checks that the identity is well-formed.
func (s ServiceIdentity) Validate() error {
	if !identityPattern.MatchString(string(s)) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentity, string(s))
	}
	return nil
}

// DirectoryKey returns the directory key holding the public key of this identity.
func (s ServiceIdentity) DirectoryKey() string {
	return DirectoryKeyPrefix + string(s)
}

func (s ServiceIdentity) String() string {
	return string(s)
}

// KeyPair holds a PEM encoded asymmetric key pair.
// The private half is handed to the caller and never stored by the registry.
type KeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"-"`
}

// Claims are the verified claims of a bearer token.
type Claims struct {
	// Issuer is the service identity that signed the token.
	Issuer ServiceIdentity `json:"iss"`

	// Subject is the optional "sub" claim.
	Subject string `json:"sub,omitempty"`

	ExpiresAt time.Time `json:"exp"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	NotBefore time.Time `json:"nbf,omitempty"`

	// Attributes contains every claim of the token, including the registered ones.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// AuthLevel classifies whether an endpoint requires a verified bearer token.
type AuthLevel string

const (
	AuthPublic    AuthLevel = "public"
	AuthProtected AuthLevel = "protected"
)

func (l AuthLevel) IsValid() bool {
	switch l {
	case AuthPublic, AuthProtected:
		return true
	default:
		return false
	}
}

// RoutePolicy declares the auth level of a single mounted endpoint.
type RoutePolicy struct {
	Method      string    `yaml:"method" json:"method"`
	Path        string    `yaml:"path" json:"path"`
	Level       AuthLevel `yaml:"auth_level" json:"auth_level"`
	Description string    `yaml:"description" json:"description,omitempty"`
}
