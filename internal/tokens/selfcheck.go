package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

const probeTTL = 30 * time.Second

// CheckKeyPair signs a short-lived probe token with privateKeyPEM and verifies
// it against the key published for identity. It fails when the published key
// does not belong to the private key. opts configure the verifier the same way
// the server's verifier is configured.
func CheckKeyPair(ctx context.Context, reader core.KeyReader, identity core.ServiceIdentity, privateKeyPEM string, opts ...VerifierOption) error {
	signer, err := NewSigner(identity, privateKeyPEM, WithTTL(probeTTL))
	if err != nil {
		return fmt.Errorf("loading private key of %q: %w", identity.String(), err)
	}

	probe, err := signer.Sign("", map[string]any{"check": "noona"})
	if err != nil {
		return err
	}

	if _, err := NewVerifier(reader, opts...).Verify(ctx, probe); err != nil {
		return fmt.Errorf("key pair check for %q failed: %w", identity.String(), err)
	}
	return nil
}
