package api

import (
	"time"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

type CreateKeyRequest struct {
	Service string `json:"service"`
}

// CreateKeyResponse carries the public half only. The private key of a pair
// generated by the vault is discarded.
type CreateKeyResponse struct {
	Success   bool   `json:"success"`
	Msg       string `json:"msg"`
	PublicKey string `json:"publicKey"`
	KeyName   string `json:"keyName"`
}

type KeyMetadata struct {
	Format      string `json:"format"`
	Length      int    `json:"length"`
	Source      string `json:"source"`
	KeyName     string `json:"keyName"`
	Fingerprint string `json:"fingerprint"`
}

type ReadKeyResponse struct {
	Success   bool        `json:"success"`
	PublicKey string      `json:"publicKey"`
	Metadata  KeyMetadata `json:"metadata"`
}

type UpdateKeyRequest struct {
	PublicKey string `json:"publicKey"`
}

// StatusResponse is returned by mutations without further payload.
type StatusResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

type HealthResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

type DirectoryStatus struct {
	Backend string `json:"backend"`
	Online  bool   `json:"online"`
}

type DirectoryStatusResponse struct {
	Success   bool            `json:"success"`
	Status    string          `json:"status"`
	Directory DirectoryStatus `json:"directory"`
}

type AuditEventsResponse struct {
	Events []core.AuditEntry `json:"events"`
}
