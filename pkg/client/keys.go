package client

import (
	"context"
	"net/http"

	"github.com/The-Noona-Project/Noona-Vault/internal/api"
)

// CreateKey asks the vault to generate a key pair for service. Only the public
// key is returned; services that need to sign generate their pair locally and
// publish it with UpdateKey.
func (c *Client) CreateKey(ctx context.Context, service string) (*api.CreateKeyResponse, string, error) {
	var resp api.CreateKeyResponse
	correlation, err := c.send(ctx, http.MethodPost, c.url().
		setPath(api.CreateKeyRoute).
		build(), api.CreateKeyRequest{Service: service}, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// ReadKey fetches the published public key of service.
func (c *Client) ReadKey(ctx context.Context, service string) (*api.ReadKeyResponse, string, error) {
	var resp api.ReadKeyResponse
	correlation, err := c.get(ctx, c.url().
		setPath(api.ReadKeyRoute).
		setPathParam(api.ServiceParam, service).
		build(), &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// UpdateKey replaces the public key of service. Requires a signer or auth token.
func (c *Client) UpdateKey(ctx context.Context, service, publicKeyPEM string) (string, error) {
	var resp api.StatusResponse
	return c.send(ctx, http.MethodPut, c.url().
		setPath(api.UpdateKeyRoute).
		setPathParam(api.ServiceParam, service).
		build(), api.UpdateKeyRequest{PublicKey: publicKeyPEM}, &resp)
}

// DeleteKey removes the public key of service. Requires a signer or auth token.
func (c *Client) DeleteKey(ctx context.Context, service string) (string, error) {
	var resp api.StatusResponse
	return c.send(ctx, http.MethodDelete, c.url().
		setPath(api.DeleteKeyRoute).
		setPathParam(api.ServiceParam, service).
		build(), nil, &resp)
}
