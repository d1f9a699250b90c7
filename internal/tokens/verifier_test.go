package tokens

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/keys"
	"github.com/The-Noona-Project/Noona-Vault/internal/store"
)

type downReader struct{}

func (downReader) ReadKey(context.Context, core.ServiceIdentity) (string, error) {
	return "", core.ErrDirectoryUnavailable
}

type fixture struct {
	registry *keys.Registry
	pairs    map[core.ServiceIdentity]core.KeyPair
}

func newFixture(t *testing.T, identities ...core.ServiceIdentity) *fixture {
	t.Helper()
	f := &fixture{
		registry: keys.NewRegistry(store.NewMemoryDirectory()),
		pairs:    make(map[core.ServiceIdentity]core.KeyPair),
	}
	for _, id := range identities {
		pair, err := f.registry.CreateKey(context.Background(), id)
		if err != nil {
			t.Fatalf("CreateKey(%s) error = %v", id, err)
		}
		f.pairs[id] = pair
	}
	return f
}

func (f *fixture) signer(t *testing.T, id core.ServiceIdentity, opts ...SignerOption) *Signer {
	t.Helper()
	s, err := NewSigner(id, f.pairs[id].PrivateKey, opts...)
	if err != nil {
		t.Fatalf("NewSigner(%s) error = %v", id, err)
	}
	return s
}

func (f *fixture) sign(t *testing.T, id core.ServiceIdentity, opts ...SignerOption) string {
	t.Helper()
	tok, err := f.signer(t, id, opts...).Sign("worker", nil)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key any) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing raw token: %v", err)
	}
	return tok
}

func TestVerifier_Verify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "noona-moon", "noona-raven")
	verifier := NewVerifier(f.registry)

	moonKey, err := keys.ParsePrivateKey(f.pairs["noona-moon"].PrivateKey)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:  "Valid Token",
			token: f.sign(t, "noona-moon"),
		},
		{
			name:    "Empty Token",
			token:   "",
			wantErr: core.ErrMalformedToken,
		},
		{
			name:    "Garbage",
			token:   "not.a.jwt",
			wantErr: core.ErrMalformedToken,
		},
		{
			name: "Missing Issuer",
			token: signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
				"exp": now.Add(time.Hour).Unix(),
			}, moonKey),
			wantErr: core.ErrMalformedToken,
		},
		{
			name: "Missing Expiry",
			token: signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
				"iss": "noona-moon",
			}, moonKey),
			wantErr: core.ErrMalformedToken,
		},
		{
			name: "Unknown Issuer",
			token: signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
				"iss": "noona-ghost",
				"exp": now.Add(time.Hour).Unix(),
			}, moonKey),
			wantErr: core.ErrUnknownIssuer,
		},
		{
			name: "Invalid Issuer Identity",
			token: signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
				"iss": "../noona-moon",
				"exp": now.Add(time.Hour).Unix(),
			}, moonKey),
			wantErr: core.ErrMalformedToken,
		},
		{
			name: "Forged Issuer",
			token: signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
				"iss": "noona-raven",
				"exp": now.Add(time.Hour).Unix(),
			}, moonKey),
			wantErr: core.ErrInvalidSignature,
		},
		{
			name: "HMAC With Public Key As Secret",
			token: signRaw(t, jwt.SigningMethodHS256, jwt.MapClaims{
				"iss": "noona-moon",
				"exp": now.Add(time.Hour).Unix(),
			}, []byte(f.pairs["noona-moon"].PublicKey)),
			wantErr: core.ErrInvalidSignature,
		},
		{
			name: "Alg None",
			token: signRaw(t, jwt.SigningMethodNone, jwt.MapClaims{
				"iss": "noona-moon",
				"exp": now.Add(time.Hour).Unix(),
			}, jwt.UnsafeAllowNoneSignatureType),
			wantErr: core.ErrInvalidSignature,
		},
		{
			name: "Expired",
			token: signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
				"iss": "noona-moon",
				"exp": now.Add(-time.Minute).Unix(),
			}, moonKey),
			wantErr: core.ErrTokenExpired,
		},
		{
			name: "Not Yet Valid",
			token: signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
				"iss": "noona-moon",
				"nbf": now.Add(time.Minute).Unix(),
				"exp": now.Add(time.Hour).Unix(),
			}, moonKey),
			wantErr: core.ErrTokenExpired,
		},
		{
			name: "Issued In The Future",
			token: signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
				"iss": "noona-moon",
				"iat": now.Add(time.Minute).Unix(),
				"exp": now.Add(time.Hour).Unix(),
			}, moonKey),
			wantErr: core.ErrTokenExpired,
		},
		{
			name: "Tampered Payload",
			token: func() string {
				tok := f.sign(t, "noona-moon")
				other := f.sign(t, "noona-raven")
				// header and signature of one token, payload of another
				return headerOf(tok) + "." + payloadOf(other) + "." + signatureOf(tok)
			}(),
			wantErr: core.ErrInvalidSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.Verify(ctx, tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
				}
				if !core.IsCredentialError(err) {
					t.Errorf("error %v should be a credential error", err)
				}
				if claims != nil {
					t.Error("claims must be nil on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() unexpected error = %v", err)
			}
			if claims.Issuer != "noona-moon" || claims.Subject != "worker" {
				t.Errorf("claims = %+v", claims)
			}
			if claims.ExpiresAt.IsZero() || claims.IssuedAt.IsZero() {
				t.Errorf("temporal claims not populated: %+v", claims)
			}
		})
	}
}

func TestVerifier_ClockSkew(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "noona-moon")

	issued := time.Now().Add(-time.Hour)
	tok := f.sign(t, "noona-moon", WithTTL(time.Minute), WithSignerNow(func() time.Time { return issued }))
	expiry := issued.Add(time.Minute)

	within := NewVerifier(f.registry,
		WithClockSkew(5*time.Second),
		WithNow(func() time.Time { return expiry.Add(3 * time.Second) }))
	if _, err := within.Verify(ctx, tok); err != nil {
		t.Errorf("token within skew rejected: %v", err)
	}

	beyond := NewVerifier(f.registry,
		WithClockSkew(5*time.Second),
		WithNow(func() time.Time { return expiry.Add(10 * time.Second) }))
	if _, err := beyond.Verify(ctx, tok); !errors.Is(err, core.ErrTokenExpired) {
		t.Errorf("token beyond skew error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifier_Rotation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "noona-moon")
	verifier := NewVerifier(f.registry)

	old := f.sign(t, "noona-moon")
	if _, err := verifier.Verify(ctx, old); err != nil {
		t.Fatalf("token before rotation rejected: %v", err)
	}

	rotated, err := f.registry.CreateKey(ctx, "noona-moon")
	if err != nil {
		t.Fatal(err)
	}
	f.pairs["noona-moon"] = rotated

	if _, err := verifier.Verify(ctx, old); !errors.Is(err, core.ErrInvalidSignature) {
		t.Errorf("token signed with the replaced key: error = %v, want ErrInvalidSignature", err)
	}
	if _, err := verifier.Verify(ctx, f.sign(t, "noona-moon")); err != nil {
		t.Errorf("token signed with the new key rejected: %v", err)
	}

	if _, err := f.registry.DeleteKey(ctx, "noona-moon"); err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Verify(ctx, f.sign(t, "noona-moon")); !errors.Is(err, core.ErrUnknownIssuer) {
		t.Errorf("token of a deleted identity: error = %v, want ErrUnknownIssuer", err)
	}
}

func TestVerifier_ECDSA(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "noona-moon")

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pubDER, _ := x509.MarshalPKIXPublicKey(&ecKey.PublicKey)
	privDER, _ := x509.MarshalPKCS8PrivateKey(ecKey)
	pubPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
	privPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}))

	if err := f.registry.UpdateKey(ctx, "noona-sage", pubPEM); err != nil {
		t.Fatal(err)
	}

	signer, err := NewSigner("noona-sage", privPEM)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := signer.Sign("", nil)
	if err != nil {
		t.Fatal(err)
	}

	verifier := NewVerifier(f.registry)
	if _, err := verifier.Verify(ctx, tok); err != nil {
		t.Fatalf("ES256 token rejected: %v", err)
	}

	// an RSA signature can never match an EC key
	moonKey, _ := keys.ParsePrivateKey(f.pairs["noona-moon"].PrivateKey)
	rsaTok := signRaw(t, jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": "noona-sage",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, moonKey)
	if _, err := verifier.Verify(ctx, rsaTok); !errors.Is(err, core.ErrInvalidSignature) {
		t.Errorf("RS256 token for EC issuer: error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifier_DirectoryUnavailable(t *testing.T) {
	f := newFixture(t, "noona-moon")
	tok := f.sign(t, "noona-moon")

	_, err := NewVerifier(downReader{}).Verify(context.Background(), tok)
	if !errors.Is(err, core.ErrDirectoryUnavailable) {
		t.Fatalf("Verify() error = %v, want ErrDirectoryUnavailable", err)
	}
	if core.IsCredentialError(err) {
		t.Error("an unavailable directory must not be reported as a credential error")
	}
}

func TestUnverifiedIssuer(t *testing.T) {
	f := newFixture(t, "noona-moon")

	iss, err := UnverifiedIssuer(f.sign(t, "noona-moon"))
	if err != nil || iss != "noona-moon" {
		t.Errorf("UnverifiedIssuer() = %q, %v", iss, err)
	}
	if _, err := UnverifiedIssuer("  "); !errors.Is(err, core.ErrMalformedToken) {
		t.Errorf("UnverifiedIssuer(blank) error = %v", err)
	}
}
