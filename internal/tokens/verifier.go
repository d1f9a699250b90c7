package tokens

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/The-Noona-Project/Noona-Vault/internal/config"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/keys"
	"github.com/The-Noona-Project/Noona-Vault/internal/metrics"
	"github.com/The-Noona-Project/Noona-Vault/internal/telemetry"
)

// Verifier checks bearer tokens against the public key published by their issuer.
type Verifier struct {
	keys core.KeyReader
	skew time.Duration
	now  func() time.Time
}

type VerifierOption func(*Verifier)

// WithClockSkew sets the leeway applied to exp, nbf and iat.
func WithClockSkew(skew time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.skew = skew
	}
}

// WithNow replaces the clock used for temporal claims.
func WithNow(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

func NewVerifier(keys core.KeyReader, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		keys: keys,
		skew: config.DefaultClockSkew,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates raw and returns its claims.
//
// The issuer is read from the unverified token only to select the public key.
// The accepted signing algorithms are derived from that key, never from the
// token header. Symmetric algorithms and "none" are always rejected.
func (v *Verifier) Verify(ctx context.Context, raw string) (*core.Claims, error) {
	start := time.Now()
	claims, err := v.verify(ctx, raw)
	metrics.VerifyDuration.WithLabelValues(verifyResult(err)).Observe(time.Since(start).Seconds())
	return claims, err
}

func (v *Verifier) verify(ctx context.Context, raw string) (*core.Claims, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "tokens.Verify")
	defer span.End()

	fail := func(err error) (*core.Claims, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token rejected")
		return nil, err
	}

	issuer, err := UnverifiedIssuer(raw)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.String("noona.issuer", issuer.String()))

	publicPEM, err := v.keys.ReadKey(ctx, issuer)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrNotFound):
		return fail(fmt.Errorf("%w: %q", core.ErrUnknownIssuer, issuer.String()))
	case errors.Is(err, core.ErrDirectoryUnavailable):
		return fail(err)
	default:
		return fail(fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, err))
	}

	publicKey, err := keys.ParsePublicKey(publicPEM)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("iss", issuer.String()).Msg("published key of issuer is unusable")
		return fail(fmt.Errorf("%w: published key unusable", core.ErrInvalidSignature))
	}

	methods, ok := allowedMethods(publicKey)
	if !ok {
		return fail(fmt.Errorf("%w: no algorithm accepted for %T", core.ErrInvalidSignature, publicKey))
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(methods),
		jwt.WithLeeway(v.skew),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(issuer.String()),
		jwt.WithTimeFunc(v.now),
	)

	mapClaims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(raw, mapClaims, func(*jwt.Token) (any, error) {
		return publicKey, nil
	}); err != nil {
		return fail(classify(err))
	}

	claims, err := claimsFrom(issuer, mapClaims)
	if err != nil {
		return fail(err)
	}
	return claims, nil
}

// UnverifiedIssuer extracts the "iss" claim without checking the signature.
// The result must only be used to look up the key that verifies the token.
func UnverifiedIssuer(raw string) (core.ServiceIdentity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty token", core.ErrMalformedToken)
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mapClaims); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrMalformedToken, err)
	}

	iss, err := mapClaims.GetIssuer()
	if err != nil || iss == "" {
		return "", fmt.Errorf("%w: missing iss claim", core.ErrMalformedToken)
	}

	identity := core.ServiceIdentity(iss)
	if err := identity.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrMalformedToken, err)
	}
	return identity, nil
}

// allowedMethods pins the accepted algorithms to the family of the published key.
// An empty allow-list would disable the check in the parser, so ok is false
// whenever no algorithm fits.
func allowedMethods(key crypto.PublicKey) (methods []string, ok bool) {
	switch k := key.(type) {
	case *rsa.PublicKey:
		return []string{"RS256", "RS384", "RS512"}, true
	case *ecdsa.PublicKey:
		switch k.Curve.Params().BitSize {
		case 256:
			return []string{"ES256"}, true
		case 384:
			return []string{"ES384"}, true
		case 521:
			return []string{"ES512"}, true
		}
	case ed25519.PublicKey:
		return []string{"EdDSA"}, true
	}
	return nil, false
}

// classify maps parser errors onto the credential failure kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", core.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", core.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %v", core.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", core.ErrUnknownIssuer, err)
	default:
		return fmt.Errorf("%w: %v", core.ErrMalformedToken, err)
	}
}

func claimsFrom(issuer core.ServiceIdentity, mapClaims jwt.MapClaims) (*core.Claims, error) {
	claims := &core.Claims{
		Issuer:     issuer,
		Attributes: map[string]any(mapClaims),
	}

	sub, err := mapClaims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedToken, err)
	}
	claims.Subject = sub

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: invalid exp claim", core.ErrMalformedToken)
	}
	claims.ExpiresAt = exp.Time

	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if nbf, err := mapClaims.GetNotBefore(); err == nil && nbf != nil {
		claims.NotBefore = nbf.Time
	}
	return claims, nil
}

func verifyResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, core.ErrDirectoryUnavailable):
		return "unavailable"
	default:
		return "rejected"
	}
}
