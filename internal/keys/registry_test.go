package keys

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/The-Noona-Project/Noona-Vault/internal/audit"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/internal/store"
)

// faultyDirectory fails every operation with err.
type faultyDirectory struct {
	err error
}

func (f *faultyDirectory) Name() string { return "faulty" }
func (f *faultyDirectory) Get(context.Context, string) (string, error) {
	return "", f.err
}
func (f *faultyDirectory) Set(context.Context, string, string) error { return f.err }
func (f *faultyDirectory) Delete(context.Context, string) (bool, error) {
	return false, f.err
}
func (f *faultyDirectory) Ping(context.Context) error { return f.err }
func (f *faultyDirectory) Close() error               { return nil }

// slowDirectory blocks until the context is done.
type slowDirectory struct {
	faultyDirectory
}

func (s *slowDirectory) Get(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

var (
	testPairOnce sync.Once
	testPair     core.KeyPair
	testPairErr  error
)

func fixedGenerator(t *testing.T) func() (core.KeyPair, error) {
	t.Helper()
	testPairOnce.Do(func() {
		testPair, testPairErr = GenerateKeyPair()
	})
	if testPairErr != nil {
		t.Fatal(testPairErr)
	}
	return func() (core.KeyPair, error) { return testPair, nil }
}

func TestRegistry_Lifecycle(t *testing.T) {
	ctx := context.Background()
	dir := store.NewMemoryDirectory()
	auditor := audit.NewInMemoryAuditor()
	reg := NewRegistry(dir, WithAuditor(auditor), WithGenerator(fixedGenerator(t)))

	const svc = core.ServiceIdentity("noona-moon")

	pair, err := reg.CreateKey(ctx, svc)
	if err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}
	if pair.PrivateKey == "" || pair.PublicKey == "" {
		t.Fatal("CreateKey() returned an incomplete key pair")
	}

	// the directory only ever sees the public half
	stored, err := dir.Get(ctx, "NOONA:TOKEN:noona-moon")
	if err != nil {
		t.Fatalf("directory Get() error = %v", err)
	}
	if stored != pair.PublicKey {
		t.Error("directory does not hold the published public key")
	}
	if strings.Contains(stored, "PRIVATE") {
		t.Error("private key leaked into the directory")
	}

	got, err := reg.ReadKey(ctx, svc)
	if err != nil {
		t.Fatalf("ReadKey() error = %v", err)
	}
	if got != pair.PublicKey {
		t.Error("ReadKey() returned a different key than CreateKey() published")
	}

	existed, err := reg.DeleteKey(ctx, svc)
	if err != nil || !existed {
		t.Fatalf("DeleteKey() = %v, %v; want true, nil", existed, err)
	}
	existed, err = reg.DeleteKey(ctx, svc)
	if err != nil || existed {
		t.Fatalf("second DeleteKey() = %v, %v; want false, nil", existed, err)
	}

	if _, err := reg.ReadKey(ctx, svc); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("ReadKey() after delete error = %v, want ErrNotFound", err)
	}

	entries, _ := auditor.GetRecent(10)
	var actions []string
	for _, e := range entries {
		actions = append(actions, e.Action)
		if e.Service != svc {
			t.Errorf("audit entry service = %q, want %q", e.Service, svc)
		}
		if !e.Success {
			t.Errorf("audit entry %s not successful: %s", e.Action, e.Error)
		}
	}
	want := []string{core.AuditKeyCreate, core.AuditKeyDelete, core.AuditKeyDelete}
	if diff := cmp.Diff(want, actions); diff != "" {
		t.Errorf("audit actions mismatch (-want +got):\n%s", diff)
	}
	if entries[0].Fingerprint != audit.Fingerprint(pair.PublicKey) {
		t.Errorf("create entry fingerprint = %q", entries[0].Fingerprint)
	}
}

func TestRegistry_CreateKey_Overwrites(t *testing.T) {
	ctx := context.Background()
	dir := store.NewMemoryDirectory()
	reg := NewRegistry(dir)

	first, err := reg.CreateKey(ctx, "noona-raven")
	if err != nil {
		t.Fatal(err)
	}
	second, err := reg.CreateKey(ctx, "noona-raven")
	if err != nil {
		t.Fatal(err)
	}
	if first.PublicKey == second.PublicKey {
		t.Fatal("expected a fresh key pair on every create")
	}

	got, _ := reg.ReadKey(ctx, "noona-raven")
	if got != second.PublicKey {
		t.Error("directory should hold the most recently created key")
	}
	if dir.Len() != 1 {
		t.Errorf("directory holds %d entries, want 1", dir.Len())
	}
}

func TestRegistry_UpdateKey(t *testing.T) {
	ctx := context.Background()
	auditor := audit.NewInMemoryAuditor()
	reg := NewRegistry(store.NewMemoryDirectory(), WithAuditor(auditor))

	replacement, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.UpdateKey(ctx, "noona-portal", replacement.PublicKey); err != nil {
		t.Fatalf("UpdateKey() error = %v", err)
	}
	got, err := reg.ReadKey(ctx, "noona-portal")
	if err != nil || got != replacement.PublicKey {
		t.Fatalf("ReadKey() = %q, %v", got, err)
	}

	err = reg.UpdateKey(ctx, "noona-portal", "not a key")
	if !errors.Is(err, core.ErrInvalidPublicKey) {
		t.Fatalf("UpdateKey() with garbage error = %v, want ErrInvalidPublicKey", err)
	}
	got, _ = reg.ReadKey(ctx, "noona-portal")
	if got != replacement.PublicKey {
		t.Error("rejected update must not touch the stored key")
	}

	entries, _ := auditor.GetRecent(10)
	if len(entries) != 1 || entries[0].Action != core.AuditKeyUpdate {
		t.Errorf("audit entries = %+v, want a single key.update", entries)
	}
}

func TestRegistry_InvalidIdentity(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(store.NewMemoryDirectory())

	for _, id := range []core.ServiceIdentity{"", "../etc", "has space", "a:b"} {
		if _, err := reg.CreateKey(ctx, id); !errors.Is(err, core.ErrInvalidIdentity) {
			t.Errorf("CreateKey(%q) error = %v, want ErrInvalidIdentity", id, err)
		}
		if _, err := reg.ReadKey(ctx, id); !errors.Is(err, core.ErrInvalidIdentity) {
			t.Errorf("ReadKey(%q) error = %v, want ErrInvalidIdentity", id, err)
		}
		if _, err := reg.DeleteKey(ctx, id); !errors.Is(err, core.ErrInvalidIdentity) {
			t.Errorf("DeleteKey(%q) error = %v, want ErrInvalidIdentity", id, err)
		}
	}
}

func TestRegistry_DirectoryFailures(t *testing.T) {
	ctx := context.Background()
	gen := fixedGenerator(t)

	t.Run("Unavailable", func(t *testing.T) {
		down := &faultyDirectory{err: errors.New("connection refused")}
		auditor := audit.NewInMemoryAuditor()
		reg := NewRegistry(down, WithAuditor(auditor), WithGenerator(gen))

		if _, err := reg.ReadKey(ctx, "noona-moon"); !errors.Is(err, core.ErrDirectoryUnavailable) {
			t.Errorf("ReadKey() error = %v, want ErrDirectoryUnavailable", err)
		}
		if _, err := reg.DeleteKey(ctx, "noona-moon"); !errors.Is(err, core.ErrDirectoryUnavailable) {
			t.Errorf("DeleteKey() error = %v, want ErrDirectoryUnavailable", err)
		}
		if err := reg.Ping(ctx); !errors.Is(err, core.ErrDirectoryUnavailable) {
			t.Errorf("Ping() error = %v, want ErrDirectoryUnavailable", err)
		}

		entries, _ := auditor.GetRecent(10)
		if len(entries) != 1 || entries[0].Success {
			t.Errorf("expected one failed audit entry, got %+v", entries)
		}
	})

	t.Run("Publish Rejected", func(t *testing.T) {
		reg := NewRegistry(&faultyDirectory{err: errors.New("READONLY replica")}, WithGenerator(gen))

		pair, err := reg.CreateKey(ctx, "noona-moon")
		if !errors.Is(err, core.ErrPublish) {
			t.Fatalf("CreateKey() error = %v, want ErrPublish", err)
		}
		if pair.PrivateKey != "" {
			t.Error("no private key may be handed out when publishing failed")
		}
	})

	t.Run("Publish Unavailable", func(t *testing.T) {
		down := &faultyDirectory{err: core.ErrDirectoryUnavailable}
		reg := NewRegistry(down, WithGenerator(gen))

		if _, err := reg.CreateKey(ctx, "noona-moon"); !errors.Is(err, core.ErrDirectoryUnavailable) {
			t.Errorf("CreateKey() error = %v, want ErrDirectoryUnavailable", err)
		}
	})

	t.Run("Generation Failure", func(t *testing.T) {
		dir := store.NewMemoryDirectory()
		reg := NewRegistry(dir, WithGenerator(func() (core.KeyPair, error) {
			return core.KeyPair{}, core.ErrKeyGeneration
		}))

		if _, err := reg.CreateKey(ctx, "noona-moon"); !errors.Is(err, core.ErrKeyGeneration) {
			t.Errorf("CreateKey() error = %v, want ErrKeyGeneration", err)
		}
		if dir.Len() != 0 {
			t.Error("nothing may be published when generation fails")
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		reg := NewRegistry(&slowDirectory{}, WithTimeout(20*time.Millisecond))

		start := time.Now()
		_, err := reg.ReadKey(ctx, "noona-moon")
		if !errors.Is(err, core.ErrDirectoryUnavailable) {
			t.Fatalf("ReadKey() error = %v, want ErrDirectoryUnavailable", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("ReadKey() took %s, timeout not applied", elapsed)
		}
	})
}

func TestRegistry_AuditActor(t *testing.T) {
	auditor := audit.NewInMemoryAuditor()
	reg := NewRegistry(store.NewMemoryDirectory(), WithAuditor(auditor))

	ctx := core.WithCorrelationID(context.Background(), "req-1")
	ctx = core.WithClaims(ctx, &core.Claims{Issuer: "noona-warden"})

	if _, err := reg.DeleteKey(ctx, "noona-moon"); err != nil {
		t.Fatal(err)
	}

	entries, _ := auditor.GetRecent(1)
	if len(entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(entries))
	}
	if entries[0].ID != "req-1" || entries[0].Actor != "noona-warden" {
		t.Errorf("audit entry = %+v, want correlation req-1 and actor noona-warden", entries[0])
	}
}
