package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"mdexport/internal/models"
)

const pkg = "runner/"

// maxDiagnostic bounds how much of a tool's combined output is kept.
const maxDiagnostic = 4 << 10

type Task struct {
	Tool string
	Args []string
	Dir  string
}

type Result struct {
	ExitCode int
	Output   []byte
	Err      error
}

// Job is a submitted process. Wait blocks until the process exits or the
// runner timeout expires, whichever comes first.
type Job struct {
	done   chan struct{}
	result Result
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) Wait() Result {
	<-j.done
	return j.result
}

type Runner struct {
	log      *slog.Logger
	timeout  time.Duration
	lookPath func(file string) (string, error)
}

func New(log *slog.Logger, timeout time.Duration) *Runner {
	return &Runner{
		log:      log,
		timeout:  timeout,
		lookPath: exec.LookPath,
	}
}

// Submit starts the task in its own goroutine. A missing binary resolves the
// job with ErrConverterUnavailable; a non-zero exit or a timeout resolves it
// with a *models.ConverterError.
func (r *Runner) Submit(ctx context.Context, task Task) *Job {
	job := &Job{done: make(chan struct{})}

	go func() {
		defer close(job.done)
		job.result = r.run(ctx, task)
	}()

	return job
}

func (r *Runner) Run(ctx context.Context, task Task) error {
	return r.Submit(ctx, task).Wait().Err
}

func (r *Runner) run(ctx context.Context, task Task) Result {
	op := pkg + "run"

	log := r.log.With(slog.String("op", op), slog.String("tool", task.Tool))

	bin, err := r.lookPath(task.Tool)
	if err != nil {
		log.Error("converter binary not found", slog.String("error", err.Error()))
		return Result{ExitCode: -1, Err: fmt.Errorf("%s: %s: %w", op, task.Tool, models.ErrConverterUnavailable)}
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var out bytes.Buffer

	cmd := exec.CommandContext(runCtx, bin, task.Args...)
	cmd.Dir = task.Dir
	cmd.Stdout = &out
	cmd.Stderr = &out

	started := time.Now()

	log.Debug("starting converter", slog.Any("args", task.Args))

	err = cmd.Run()

	log.Debug("converter finished", slog.Duration("elapsed", time.Since(started)))

	if err == nil {
		return Result{ExitCode: 0, Output: out.Bytes()}
	}

	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	diagnostic := tail(out.String(), maxDiagnostic)

	if ctxErr := runCtx.Err(); ctxErr != nil {
		diagnostic = strings.TrimSpace(fmt.Sprintf("%v after %s; %s", ctxErr, time.Since(started).Round(time.Millisecond), diagnostic))
	}

	if diagnostic == "" {
		diagnostic = err.Error()
	}

	log.Error("converter failed", slog.Int("exit_code", exitCode), slog.String("diagnostic", diagnostic))

	return Result{
		ExitCode: exitCode,
		Output:   out.Bytes(),
		Err: &models.ConverterError{
			Tool:       task.Tool,
			ExitCode:   exitCode,
			Diagnostic: diagnostic,
		},
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
