package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

// RSAKeyBits is the modulus size of generated keys.
const RSAKeyBits = 2048

const (
	pemTypePublicKey     = "PUBLIC KEY"
	pemTypeRSAPublicKey  = "RSA PUBLIC KEY"
	pemTypePrivateKey    = "PRIVATE KEY"
	pemTypeRSAPrivateKey = "RSA PRIVATE KEY"
	pemTypeECPrivateKey  = "EC PRIVATE KEY"
)

// GenerateKeyPair creates a fresh RSA key pair.
// The public key is PKIX ("PUBLIC KEY") and the private key PKCS#8 ("PRIVATE KEY") PEM.
func GenerateKeyPair() (core.KeyPair, error) {
	private, err := rsa.GenerateKey(rand.Reader, RSAKeyBits)
	if err != nil {
		return core.KeyPair{}, fmt.Errorf("%w: generating rsa key: %v", core.ErrKeyGeneration, err)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return core.KeyPair{}, fmt.Errorf("%w: encoding public key: %v", core.ErrKeyGeneration, err)
	}
	privateDER, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return core.KeyPair{}, fmt.Errorf("%w: encoding private key: %v", core.ErrKeyGeneration, err)
	}

	return core.KeyPair{
		PublicKey:  string(pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: publicDER})),
		PrivateKey: string(pem.EncodeToMemory(&pem.Block{Type: pemTypePrivateKey, Bytes: privateDER})),
	}, nil
}
