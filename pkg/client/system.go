package client

import (
	"context"

	"github.com/The-Noona-Project/Noona-Vault/internal/api"
	"github.com/The-Noona-Project/Noona-Vault/internal/buildinfo"
)

func (c *Client) Health(ctx context.Context) (*api.HealthResponse, string, error) {
	var resp api.HealthResponse
	correlation, err := c.get(ctx, c.url().
		setPath(api.SystemHealthRoute).
		build(), &resp)
	return &resp, correlation, err
}

func (c *Client) Version(ctx context.Context) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, c.url().
		setPath(api.VersionRoute).
		build(), &info)
	return &info, correlation, err
}

func (c *Client) DirectoryStatus(ctx context.Context) (*api.DirectoryStatusResponse, string, error) {
	var resp api.DirectoryStatusResponse
	correlation, err := c.get(ctx, c.url().
		setPath(api.DirectoryStatusRoute).
		build(), &resp)
	return &resp, correlation, err
}

// VaultKey fetches the public key the vault signs its own tokens with.
func (c *Client) VaultKey(ctx context.Context) (*api.ReadKeyResponse, string, error) {
	var resp api.ReadKeyResponse
	correlation, err := c.get(ctx, c.url().
		setPath(api.VaultKeyRoute).
		build(), &resp)
	return &resp, correlation, err
}
