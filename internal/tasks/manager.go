// Package tasks runs periodic background work of the vault.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// TaskNotFoundError is returned for names that were never registered.
type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("no task registered as %q", e.Name)
}

type Manager struct {
	ctx   context.Context
	tasks sync.Map
	wg    sync.WaitGroup
}

// NewManager creates a manager whose tasks stop when ctx is done.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Register adds a task. Tasks with a positive interval are scheduled right away.
func (m *Manager) Register(name string, interval time.Duration, fn TaskFunc) {
	task := &RunnableTask{
		Name:         name,
		Interval:     interval,
		Handler:      fn,
		registeredAt: time.Now(),
	}
	m.tasks.Store(name, task)

	if interval > 0 {
		m.wg.Add(1)
		go m.scheduler(task)
	}
}

// Trigger runs the named task once in the calling goroutine.
func (m *Manager) Trigger(name string) error {
	t, ok := m.tasks.Load(name)
	if !ok {
		return TaskNotFoundError{Name: name}
	}
	t.(*RunnableTask).Run(m.ctx)
	return nil
}

func (m *Manager) ListStatus() []TaskStatus {
	var list []TaskStatus
	m.tasks.Range(func(key, value any) bool {
		list = append(list, value.(*RunnableTask).Status())
		return true
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// Wait blocks until every scheduler has stopped.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) scheduler(task *RunnableTask) {
	defer m.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			task.Run(m.ctx)
		}
	}
}
