package cgi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	DefaultMaxOutput = 16 << 20
	stderrLimit      = 4096
	waitDelay        = 5 * time.Second
)

type Invocation struct {
	Method  string
	Path    string // normalized request path, then the raw query after a ?
	Ambient Environment
}

type Executor struct {
	dir       string
	maxOutput int64
	timeout   time.Duration
	logger    zerolog.Logger
}

type Option func(*Executor)

// WithMaxOutput caps how many bytes of script output are buffered.
func WithMaxOutput(n int64) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxOutput = n
		}
	}
}

// WithTimeout kills scripts that run longer than d. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

func NewExecutor(dir string, logger zerolog.Logger, opts ...Option) *Executor {
	e := &Executor{
		dir:       dir,
		maxOutput: DefaultMaxOutput,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Dir() string {
	return e.dir
}

// Run executes the script named by inv and returns its parsed output. The
// child is always waited for before Run returns.
func (e *Executor) Run(ctx context.Context, inv Invocation) (Output, error) {
	script, err := MapScript(e.dir, inv.Path)
	if err != nil {
		return Output{}, err
	}

	if err := unix.Access(script.Target, unix.X_OK); err != nil {
		return Output{}, fmt.Errorf("%w: %s: %v", ErrNotExecutable, script.Name, err)
	}
	if info, err := os.Stat(script.Target); err != nil || !info.Mode().IsRegular() {
		return Output{}, fmt.Errorf("%w: %s is not a regular file", ErrNotExecutable, script.Name)
	}

	logger := e.logger.With().Str("script", script.Name).Logger()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	env := requestEnvironment(inv.Method, script).
		Merge(inv.Ambient).
		With(EnvPath, os.Getenv(EnvPath))

	cmd := exec.CommandContext(ctx, script.Target)
	cmd.Env = env.Strings()
	cmd.Dir = filepath.Dir(script.Target)
	stderr := &limitedBuffer{limit: stderrLimit}
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return Output{}, fmt.Errorf("%w: %s: %v", ErrSpawn, script.Name, err)
	}

	logger.Debug().Int("pid", cmd.Process.Pid).Str("query", script.Query).Msg("started cgi script")

	raw, readErr := capture(stdout, e.maxOutput)
	if readErr != nil {
		// stop a script we are no longer reading from
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()

	if stderr.Len() > 0 {
		logger.Debug().Str("stderr", stderr.String()).Msg("cgi script wrote to stderr")
	}

	if readErr != nil {
		return Output{}, readErr
	}

	if ctx.Err() != nil {
		return Output{}, fmt.Errorf("%w: %s: %v", ErrKilled, script.Name, ctx.Err())
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Output{}, fmt.Errorf("%w: %s: %v", ErrSpawn, script.Name, waitErr)
		}
		logger.Warn().Int("exit_code", exitErr.ExitCode()).Msg("cgi script exited with failure")
	}

	if len(raw) == 0 {
		return Output{}, fmt.Errorf("%w: %s", ErrEmptyOutput, script.Name)
	}

	return ParseOutput(raw), nil
}

// capture reads r to EOF, failing once more than limit bytes arrive.
func capture(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("cgi: reading script output: %w", err)
	}
	if n > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrOutputTooLarge, limit)
	}
	return buf.Bytes(), nil
}

type limitedBuffer struct {
	bytes.Buffer
	limit int
}

// Write keeps at most limit bytes but always reports success so the child
// never sees a broken stderr.
func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.Len(); room > 0 {
		if len(p) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}
