package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/shipway/shipway/internal/ssh"
)

func TestWaiterSucceedsImmediately(t *testing.T) {
	exec := &ssh.MockExecutor{}
	w := NewWaiter(exec, "true")
	w.SetInterval(time.Millisecond)

	if err := w.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(exec.Commands) != 1 {
		t.Errorf("expected one check, got %d", len(exec.Commands))
	}
}

func TestWaiterRetriesUntilReady(t *testing.T) {
	calls := 0
	exec := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			calls++
			if calls < 3 {
				return &ssh.ExecResult{ExitCode: 1}, nil
			}
			return &ssh.ExecResult{}, nil
		},
	}
	w := NewWaiter(exec, "status")
	w.SetInterval(time.Millisecond)

	if err := w.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 checks, got %d", calls)
	}
}

func TestWaiterExhaustsRetries(t *testing.T) {
	exec := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			return &ssh.ExecResult{ExitCode: 1}, nil
		},
	}
	w := NewWaiter(exec, "status")
	w.SetRetries(4)
	w.SetInterval(time.Millisecond)

	err := w.Wait(context.Background())
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if len(exec.Commands) != 4 {
		t.Errorf("expected 4 checks, got %d", len(exec.Commands))
	}
}

func TestWaiterHonorsDeadline(t *testing.T) {
	exec := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			return &ssh.ExecResult{ExitCode: 1}, nil
		},
	}
	w := NewWaiter(exec, "status")
	w.SetRetries(1000)
	w.SetInterval(5 * time.Millisecond)
	w.SetTimeout(20 * time.Millisecond)

	start := time.Now()
	if err := w.Wait(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("deadline not honored, waited %s", elapsed)
	}
}

func TestWaiterStopsOnCancel(t *testing.T) {
	exec := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			return &ssh.ExecResult{ExitCode: 1}, nil
		},
	}
	w := NewWaiter(exec, "status")
	w.SetInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := w.Wait(ctx)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
