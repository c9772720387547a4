// Package runner invokes the norminette executable and turns its output into
// diagnostics.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/normls/norminette"
)

// DefaultCommand is the command line used when none is configured.
const DefaultCommand = "norminette"

// MaxBufferBytes is the largest buffer LintBuffer passes inline. Linux caps a
// single argument at 128 KiB including its terminating NUL.
const MaxBufferBytes = 128*1024 - 1

// ErrBufferTooLarge is returned by LintBuffer for content over MaxBufferBytes.
var ErrBufferTooLarge = errors.New("buffer too large to pass inline")

var log = commonlog.GetLogger("normls.runner")

type Options struct {
	// Command is a shell-like command line, e.g. "python3 -m norminette".
	Command string
	// Args are appended after the command and before the file arguments.
	Args    []string
	Timeout time.Duration
}

// Linter runs norminette for one file at a time.
type Linter struct {
	argv    []string
	timeout time.Duration
}

func New(opts Options) (*Linter, error) {
	command := opts.Command
	if command == "" {
		command = DefaultCommand
	}
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("split command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("split command %q: no program", command)
	}
	return &Linter{
		argv:    append(argv, opts.Args...),
		timeout: opts.Timeout,
	}, nil
}

// LintFile runs norminette on the file at path.
func (l *Linter) LintFile(ctx context.Context, path string) ([]norminette.Diagnostic, error) {
	out, err := l.run(ctx, path)
	if err != nil {
		return nil, err
	}
	diags, err := norminette.DiagnoseBytes(out)
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", path, err)
	}
	return diags, nil
}

// LintBuffer runs norminette on unsaved content, reported under filename. The
// content is passed as one command-line argument, so it must not exceed
// MaxBufferBytes.
func (l *Linter) LintBuffer(ctx context.Context, filename string, content []byte) ([]norminette.Diagnostic, error) {
	if len(content) > MaxBufferBytes {
		return nil, fmt.Errorf("lint buffer %s: %w (%d bytes)", filename, ErrBufferTooLarge, len(content))
	}
	flag := "--cfile"
	if filepath.Ext(filename) == ".h" {
		flag = "--hfile"
	}
	out, err := l.run(ctx, flag, string(content), "--filename", filename)
	if err != nil {
		return nil, err
	}
	diags, err := norminette.DiagnoseBytes(out)
	if err != nil {
		return nil, fmt.Errorf("lint buffer %s: %w", filename, err)
	}
	return diags, nil
}

// run returns the captured standard output. norminette exits with a non-zero
// status when it finds issues, so that alone is not a failure.
func (l *Linter) run(ctx context.Context, args ...string) ([]byte, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	argv := append(l.argv[1:len(l.argv):len(l.argv)], args...)
	cmd := exec.CommandContext(ctx, l.argv[0], argv...)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("running %s", l.argv[0])
	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil && stdout.Len() > 0 {
		return stdout.Bytes(), nil
	}
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return nil, fmt.Errorf("%w: run %s: %v: %s", norminette.ErrIOFailure, l.argv[0], err, msg)
	}
	return nil, fmt.Errorf("%w: run %s: %v", norminette.ErrIOFailure, l.argv[0], err)
}
