package tasks

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/The-Noona-Project/Noona-Vault/internal/metrics"
)

type fakePinger struct {
	err atomic.Value
}

func (f *fakePinger) Ping(context.Context) error {
	if err, ok := f.err.Load().(error); ok {
		return err
	}
	return nil
}

func TestManager_Trigger(t *testing.T) {
	m := NewManager(context.Background())

	var calls int
	m.Register("count", 0, func(ctx context.Context, _ zerolog.Logger) error {
		calls++
		if _, ok := ctx.Deadline(); !ok {
			t.Error("task context has no deadline")
		}
		return nil
	})
	m.Register("broken", 0, func(context.Context, zerolog.Logger) error {
		return errors.New("boom")
	})

	if err := m.Trigger("count"); err != nil {
		t.Fatal(err)
	}
	if err := m.Trigger("broken"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	var nf TaskNotFoundError
	if err := m.Trigger("missing"); !errors.As(err, &nf) || nf.Name != "missing" {
		t.Errorf("Trigger(missing) error = %v", err)
	}

	status := m.ListStatus()
	if len(status) != 2 || status[0].Name != "broken" || status[1].Name != "count" {
		t.Fatalf("unexpected status list: %+v", status)
	}
	if !strings.HasPrefix(status[0].LastResult, "failed: boom") {
		t.Errorf("broken LastResult = %q", status[0].LastResult)
	}
	if status[1].LastResult != "success" || status[1].LastRun.IsZero() {
		t.Errorf("count status = %+v", status[1])
	}
	if !status[1].NextRun.IsZero() {
		t.Error("unscheduled task must not have a next run")
	}
}

func TestManager_Schedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(ctx)

	runs := make(chan struct{}, 10)
	m.Register("tick", 5*time.Millisecond, func(context.Context, zerolog.Logger) error {
		runs <- struct{}{}
		return nil
	})

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task did not run")
	}

	cancel()
	m.Wait()
}

func TestDirectoryProbe(t *testing.T) {
	p := &fakePinger{}
	probe := DirectoryProbe(p)
	logger := zerolog.Nop()

	if err := probe(context.Background(), logger); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(metrics.DirectoryUp); got != 1 {
		t.Errorf("directory_up = %v, want 1", got)
	}

	p.err.Store(errors.New("connection refused"))
	if err := probe(context.Background(), logger); err == nil {
		t.Fatal("expected probe error")
	}
	if got := testutil.ToFloat64(metrics.DirectoryUp); got != 0 {
		t.Errorf("directory_up = %v, want 0", got)
	}
}
