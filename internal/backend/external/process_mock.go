package external

import (
	"context"
	"errors"
	"io"
)

// MockProcessRunner is a ProcessRunner for tests.
type MockProcessRunner struct {
	// RunFunc provides custom behaviour.
	RunFunc func(ctx context.Context, path string, args []string, stdin []byte) (stdout, stderr []byte, err error)

	// ShouldTimeout blocks until the context is cancelled.
	ShouldTimeout bool

	// Calls records the args of every call.
	Calls [][]string

	// LastStdin holds the stdin of the last call.
	LastStdin []byte
}

// Run executes the mock behaviour.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.Calls = append(m.Calls, args)

	m.LastStdin = nil
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, err
		}
		m.LastStdin = data
	}

	if m.ShouldTimeout {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args, m.LastStdin)
	}

	return nil, nil, errors.New("no behaviour configured")
}

// NewScriptedRunner returns a mock answering the info query with info and
// generate requests with colors.
func NewScriptedRunner(info, colors string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(_ context.Context, _ string, args []string, _ []byte) ([]byte, []byte, error) {
			if len(args) > 0 {
				return []byte(info), nil, nil
			}
			return []byte(colors), nil, nil
		},
	}
}

// NewErrorMockProcessRunner returns a mock that fails with errMsg on stderr.
func NewErrorMockProcessRunner(errMsg string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(context.Context, string, []string, []byte) ([]byte, []byte, error) {
			return nil, []byte(errMsg), errors.New("exit status 1")
		},
	}
}
