package audit

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/pem"
	"strings"
)

// FingerprintPrefix marks the hash function used by Fingerprint.
const FingerprintPrefix = "SHA256:"

// Fingerprint returns a short, stable identifier of a PEM encoded public key.
// The hash is taken over the DER bytes, so formatting differences in the PEM
// armor do not change the fingerprint. Input that is not PEM is hashed as-is.
func Fingerprint(publicKeyPEM string) string {
	if publicKeyPEM == "" {
		return ""
	}
	data := []byte(strings.TrimSpace(publicKeyPEM))
	if block, _ := pem.Decode(data); block != nil {
		data = block.Bytes
	}
	hash := sha256.Sum256(data)
	return FingerprintPrefix + base64.RawStdEncoding.EncodeToString(hash[:])
}
