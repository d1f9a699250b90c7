package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

// ParsePublicKey decodes a PEM public key. Only RSA (>= 2048 bits), ECDSA on
// P-256, P-384 or P-521 and Ed25519 keys are accepted.
func ParsePublicKey(publicKeyPEM string) (crypto.PublicKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(publicKeyPEM)))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", core.ErrInvalidPublicKey)
	}

	var (
		key any
		err error
	)
	switch block.Type {
	case pemTypePublicKey:
		key, err = x509.ParsePKIXPublicKey(block.Bytes)
	case pemTypeRSAPublicKey:
		key, err = x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		return nil, fmt.Errorf("%w: unexpected PEM type %q", core.ErrInvalidPublicKey, block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidPublicKey, err)
	}

	switch k := key.(type) {
	case *rsa.PublicKey:
		if k.N.BitLen() < RSAKeyBits {
			return nil, fmt.Errorf("%w: rsa key has %d bits, want at least %d",
				core.ErrInvalidPublicKey, k.N.BitLen(), RSAKeyBits)
		}
		return k, nil
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256(), elliptic.P384(), elliptic.P521():
			return k, nil
		}
		return nil, fmt.Errorf("%w: unsupported ecdsa curve %s", core.ErrInvalidPublicKey, k.Curve.Params().Name)
	case ed25519.PublicKey:
		return k, nil
	default:
		return nil, fmt.Errorf("%w: unsupported key type %T", core.ErrInvalidPublicKey, key)
	}
}

// ParsePrivateKey decodes a PEM private key (PKCS#8, PKCS#1 or SEC 1).
func ParsePrivateKey(privateKeyPEM string) (crypto.Signer, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(privateKeyPEM)))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	var (
		key any
		err error
	)
	switch block.Type {
	case pemTypePrivateKey:
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case pemTypeRSAPrivateKey:
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case pemTypeECPrivateKey:
		key, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unexpected PEM type %q", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
	return signer, nil
}
