package ssh

import "context"

// Executor abstracts remote command execution for testability. Client
// implements it; tests use MockExecutor.
type Executor interface {
	Exec(ctx context.Context, command string) (*ExecResult, error)
	Close() error
}

var _ Executor = (*Client)(nil)
