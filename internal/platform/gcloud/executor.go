package gcloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/imamik/runway/internal/util/retry"
)

// timeoutExitCode is reported when a command is killed by its own timeout,
// matching coreutils timeout(1).
const timeoutExitCode = 124

// Result is the captured output of one gcloud invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs one gcloud command.
type Executor interface {
	Run(ctx context.Context, args ...string) (*Result, error)
}

// CommandError is returned when gcloud exits non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	if msg == "" {
		msg = "no output"
	}
	return fmt.Sprintf("gcloud %s: exit status %d: %s", commandName(e.Args), e.ExitCode, msg)
}

// CLIExecutor runs the gcloud binary.
type CLIExecutor struct {
	Binary  string
	Timeout time.Duration
}

// NewCLIExecutor creates an executor for the given binary.
func NewCLIExecutor(binary string, timeout time.Duration) *CLIExecutor {
	if binary == "" {
		binary = "gcloud"
	}
	return &CLIExecutor{Binary: binary, Timeout: timeout}
}

// Run executes gcloud with args and returns its output. A non-zero exit
// becomes a *CommandError.
func (e *CLIExecutor) Run(ctx context.Context, args ...string) (*Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	// #nosec G204 -- arguments are built from validated resource names
	cmd := exec.CommandContext(ctx, e.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.ExitCode = timeoutExitCode
		return res, &CommandError{
			Args:     args,
			ExitCode: timeoutExitCode,
			Stdout:   res.Stdout,
			Stderr:   fmt.Sprintf("command timed out after %s", e.Timeout),
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &CommandError{Args: args, ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}
	}
	return nil, fmt.Errorf("failed to run %s: %w", e.Binary, err)
}

// RetryOptions controls RetryingExecutor backoff.
type RetryOptions struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Exponential bool
	Jitter      float64
}

// DefaultRetryOptions returns the retry settings used when none are configured.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:  5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Exponential: true,
		Jitter:      0.3,
	}
}

// RetryingExecutor re-runs commands that fail with a transient error.
type RetryingExecutor struct {
	next Executor
	opts RetryOptions
}

// NewRetryingExecutor wraps next with backoff retries.
func NewRetryingExecutor(next Executor, opts RetryOptions) *RetryingExecutor {
	return &RetryingExecutor{next: next, opts: opts}
}

// Run executes the command, retrying transient failures. Permission failures
// and other permanent errors are returned after the first attempt.
func (e *RetryingExecutor) Run(ctx context.Context, args ...string) (*Result, error) {
	group, verb := commandLabels(args)
	multiplier := 1.0
	if e.opts.Exponential {
		multiplier = 2.0
	}

	var res *Result
	start := time.Now()
	err := retry.WithExponentialBackoff(ctx, func() error {
		var err error
		res, err = e.next.Run(ctx, args...)
		if err != nil && IsPermissionDenied(err) {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxRetries(e.opts.MaxRetries),
		retry.WithInitialDelay(e.opts.BaseDelay),
		retry.WithMaxDelay(e.opts.MaxDelay),
		retry.WithMultiplier(multiplier),
		retry.WithJitter(e.opts.Jitter),
		retry.WithRetryIf(IsTransient),
		retry.WithOnRetry(func(_ int, _ error, _ time.Duration) {
			recordRetry(group, verb)
		}),
	)
	recordCommand(group, verb, outcome(err), time.Since(start))
	return res, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsNotFound(err):
		return "not_found"
	case IsAlreadyExists(err):
		return "already_exists"
	default:
		return "error"
	}
}

// commandName renders the leading non-flag arguments, e.g. "compute addresses describe web-ip".
func commandName(args []string) string {
	var parts []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			break
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// commandLabels splits a command into its group ("compute addresses") and verb.
func commandLabels(args []string) (group, verb string) {
	for i, a := range args {
		if verbs[a] {
			return strings.Join(args[:i], " "), a
		}
		if strings.HasPrefix(a, "-") {
			break
		}
	}
	return commandName(args), "unknown"
}
