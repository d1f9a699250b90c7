package client

import (
	"context"

	"github.com/The-Noona-Project/Noona-Vault/internal/api"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

type ListAuditOpts struct {
	Limit uint

	CorrelationID string
	Service       string
	Actor         string
	Action        string
}

// ListAudit retrieves key lifecycle audit entries. Requires a signer or auth token.
func (c *Client) ListAudit(ctx context.Context, opts ListAuditOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.AuditEventsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.Service != "" {
		ub = ub.addQueryParam("service", opts.Service)
	}
	if opts.Actor != "" {
		ub = ub.addQueryParam("actor", opts.Actor)
	}
	if opts.Action != "" {
		ub = ub.addQueryParam("action", opts.Action)
	}
	var resp api.AuditEventsResponse
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp.Events, correlation, err
}
