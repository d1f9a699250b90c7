package keys

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/The-Noona-Project/Noona-Vault/internal/audit"
	"github.com/The-Noona-Project/Noona-Vault/internal/config"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/metrics"
	"github.com/The-Noona-Project/Noona-Vault/internal/telemetry"
)

var _ core.KeyReader = (*Registry)(nil)

// Registry manages the public keys of service identities in a Directory.
// Private keys are returned to the caller of CreateKey and never stored.
type Registry struct {
	dir      core.Directory
	auditor  core.Auditor
	timeout  time.Duration
	generate func() (core.KeyPair, error)
}

type Option func(*Registry)

// WithAuditor records every lifecycle mutation with the given auditor.
func WithAuditor(auditor core.Auditor) Option {
	return func(r *Registry) {
		if auditor != nil {
			r.auditor = auditor
		}
	}
}

// WithTimeout bounds every directory operation. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Registry) {
		r.timeout = timeout
	}
}

// WithGenerator replaces the key pair generator.
func WithGenerator(generate func() (core.KeyPair, error)) Option {
	return func(r *Registry) {
		r.generate = generate
	}
}

func NewRegistry(dir core.Directory, opts ...Option) *Registry {
	r := &Registry{
		dir:      dir,
		auditor:  audit.NewNoopAuditor(),
		timeout:  config.DefaultDirectoryTimeout,
		generate: GenerateKeyPair,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateKey generates a new key pair for identity and publishes the public half.
// An existing key of the identity is overwritten.
func (r *Registry) CreateKey(ctx context.Context, identity core.ServiceIdentity) (core.KeyPair, error) {
	ctx, span := r.startSpan(ctx, "keys.CreateKey", identity)
	defer span.End()

	if err := identity.Validate(); err != nil {
		return core.KeyPair{}, err
	}

	entry := audit.NewEntry(ctx, core.AuditKeyCreate, identity)

	pair, err := r.generate()
	if err == nil {
		entry.Fingerprint = audit.Fingerprint(pair.PublicKey)
		err = r.publish(ctx, identity, pair.PublicKey)
	}
	r.record(ctx, span, entry, err)
	if err != nil {
		return core.KeyPair{}, err
	}

	log.Ctx(ctx).Info().
		Str("service", identity.String()).
		Str("fingerprint", entry.Fingerprint).
		Msg("key pair created")
	return pair, nil
}

// ReadKey returns the published public key of identity.
// It returns core.ErrNotFound if the identity has no key.
func (r *Registry) ReadKey(ctx context.Context, identity core.ServiceIdentity) (string, error) {
	ctx, span := r.startSpan(ctx, "keys.ReadKey", identity)
	defer span.End()

	if err := identity.Validate(); err != nil {
		return "", err
	}

	dctx, cancel := r.withTimeout(ctx)
	defer cancel()

	value, err := r.dir.Get(dctx, identity.DirectoryKey())
	switch {
	case err == nil:
		metrics.DirectoryOperations.WithLabelValues("get", "ok").Inc()
		return value, nil
	case errors.Is(err, core.ErrNotFound):
		metrics.DirectoryOperations.WithLabelValues("get", "not_found").Inc()
		return "", core.ErrNotFound
	default:
		metrics.DirectoryOperations.WithLabelValues("get", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "directory read failed")
		return "", unavailable(dctx, err)
	}
}

// UpdateKey replaces the published public key of identity with publicKeyPEM.
// The key must be a supported PEM public key.
func (r *Registry) UpdateKey(ctx context.Context, identity core.ServiceIdentity, publicKeyPEM string) error {
	ctx, span := r.startSpan(ctx, "keys.UpdateKey", identity)
	defer span.End()

	if err := identity.Validate(); err != nil {
		return err
	}
	if _, err := ParsePublicKey(publicKeyPEM); err != nil {
		return err
	}

	entry := audit.NewEntry(ctx, core.AuditKeyUpdate, identity)
	entry.Fingerprint = audit.Fingerprint(publicKeyPEM)

	err := r.publish(ctx, identity, publicKeyPEM)
	r.record(ctx, span, entry, err)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Info().
		Str("service", identity.String()).
		Str("fingerprint", entry.Fingerprint).
		Msg("public key updated")
	return nil
}

// DeleteKey removes the published key of identity. Deleting a missing key is
// not an error; existed reports whether a key was removed.
func (r *Registry) DeleteKey(ctx context.Context, identity core.ServiceIdentity) (existed bool, err error) {
	ctx, span := r.startSpan(ctx, "keys.DeleteKey", identity)
	defer span.End()

	if err := identity.Validate(); err != nil {
		return false, err
	}

	entry := audit.NewEntry(ctx, core.AuditKeyDelete, identity)

	dctx, cancel := r.withTimeout(ctx)
	defer cancel()

	existed, err = r.dir.Delete(dctx, identity.DirectoryKey())
	metrics.DirectoryOperations.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		err = unavailable(dctx, err)
	}
	r.record(ctx, span, entry, err)
	if err != nil {
		return false, err
	}

	log.Ctx(ctx).Info().
		Str("service", identity.String()).
		Bool("existed", existed).
		Msg("public key deleted")
	return existed, nil
}

// Ping checks that the directory is reachable.
func (r *Registry) Ping(ctx context.Context) error {
	dctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.dir.Ping(dctx)
	metrics.DirectoryOperations.WithLabelValues("ping", metrics.Result(err)).Inc()
	if err != nil {
		return unavailable(dctx, err)
	}
	return nil
}

// Directory returns the name of the backing directory.
func (r *Registry) Directory() string {
	return r.dir.Name()
}

func (r *Registry) publish(ctx context.Context, identity core.ServiceIdentity, publicKeyPEM string) error {
	dctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.dir.Set(dctx, identity.DirectoryKey(), publicKeyPEM)
	metrics.DirectoryOperations.WithLabelValues("set", metrics.Result(err)).Inc()
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrDirectoryUnavailable) || dctx.Err() != nil {
		return unavailable(dctx, err)
	}
	return fmt.Errorf("%w: %v", core.ErrPublish, err)
}

// record writes the audit entry and counts the event. Audit failures are logged
// but never fail the mutation.
func (r *Registry) record(ctx context.Context, span trace.Span, entry core.AuditEntry, err error) {
	entry = audit.Complete(entry, err)
	metrics.KeyEvents.WithLabelValues(entry.Action, metrics.Result(err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, entry.Action+" failed")
		log.Ctx(ctx).Warn().Err(err).
			Str("service", entry.Service.String()).
			Str("action", entry.Action).
			Msg("key lifecycle operation failed")
	}

	if auditErr := r.auditor.Log(entry); auditErr != nil {
		log.Ctx(ctx).Error().Err(auditErr).Str("action", entry.Action).Msg("failed to write audit log entry")
	}
}

func (r *Registry) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Registry) startSpan(ctx context.Context, name string, identity core.ServiceIdentity) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(
		attribute.String("noona.service", identity.String()),
		attribute.String("noona.directory", r.dir.Name()),
	))
}

// unavailable makes sure err carries core.ErrDirectoryUnavailable.
func unavailable(ctx context.Context, err error) error {
	if errors.Is(err, core.ErrDirectoryUnavailable) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, ctx.Err())
	}
	return fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, err)
}
