package tokens

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/keys"
)

func TestSigner_Sign(t *testing.T) {
	pair, err := keys.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	fixed := time.Unix(1_700_000_000, 0)

	signer, err := NewSigner("noona-moon", pair.PrivateKey,
		WithTTL(10*time.Minute), WithSignerNow(func() time.Time { return fixed }))
	if err != nil {
		t.Fatal(err)
	}
	if signer.Identity() != "noona-moon" {
		t.Errorf("Identity() = %q", signer.Identity())
	}

	tok, err := signer.Sign("job-42", map[string]any{"iss": "noona-raven", "scope": "read"})
	if err != nil {
		t.Fatal(err)
	}

	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, claims)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Method.Alg() != "RS256" {
		t.Errorf("alg = %s, want RS256", parsed.Method.Alg())
	}
	if claims["iss"] != "noona-moon" {
		t.Errorf("iss = %v, extra claims must not override the identity", claims["iss"])
	}
	if claims["sub"] != "job-42" || claims["scope"] != "read" {
		t.Errorf("claims = %v", claims)
	}
	exp, _ := claims.GetExpirationTime()
	if !exp.Time.Equal(fixed.Add(10 * time.Minute)) {
		t.Errorf("exp = %v, want %v", exp.Time, fixed.Add(10*time.Minute))
	}
}

func TestNewSigner_Invalid(t *testing.T) {
	pair, err := keys.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSigner("bad identity", pair.PrivateKey); !errors.Is(err, core.ErrInvalidIdentity) {
		t.Errorf("NewSigner() error = %v, want ErrInvalidIdentity", err)
	}
	if _, err := NewSigner("noona-moon", pair.PublicKey); err == nil {
		t.Error("NewSigner() with a public key should fail")
	}
}

func TestCheckKeyPair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "noona-vault", "noona-moon")

	if err := CheckKeyPair(ctx, f.registry, "noona-vault", f.pairs["noona-vault"].PrivateKey); err != nil {
		t.Errorf("matching key pair: %v", err)
	}

	err := CheckKeyPair(ctx, f.registry, "noona-vault", f.pairs["noona-moon"].PrivateKey)
	if !errors.Is(err, core.ErrInvalidSignature) {
		t.Errorf("mismatching key pair: error = %v, want ErrInvalidSignature", err)
	}

	err = CheckKeyPair(ctx, f.registry, "noona-ghost", f.pairs["noona-moon"].PrivateKey)
	if !errors.Is(err, core.ErrUnknownIssuer) {
		t.Errorf("unpublished identity: error = %v, want ErrUnknownIssuer", err)
	}
}

func TestCheckKeyPair_VerifierOptions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "noona-vault")
	privateKeyPEM := f.pairs["noona-vault"].PrivateKey

	// a verifier clock running past the check token's lifetime
	late := WithNow(func() time.Time { return time.Now().Add(probeTTL + 20*time.Second) })

	err := CheckKeyPair(ctx, f.registry, "noona-vault", privateKeyPEM, late)
	if !errors.Is(err, core.ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
	if err := CheckKeyPair(ctx, f.registry, "noona-vault", privateKeyPEM, late, WithClockSkew(time.Minute)); err != nil {
		t.Errorf("configured clock skew not applied: %v", err)
	}
}
