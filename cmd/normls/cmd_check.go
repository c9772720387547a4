package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/normls/config"
	"github.com/dhamidi/normls/format"
	"github.com/dhamidi/normls/norminette"
	"github.com/dhamidi/normls/runner"
	"github.com/dhamidi/normls/workspace"
)

var errFindings = errors.New("norminette reported errors")

type checkResult struct {
	path  string
	diags []norminette.Diagnostic
	err   error
}

func newCheckCmd() *cobra.Command {
	var jobs int
	var watch bool
	var noColor bool
	var configPath string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Run norminette on files or directories and print diagnostics",
		Long: `Run norminette on the given files and directories and print its findings.

Directories are searched for files selected by the include and exclude patterns
of .normls.toml. Without arguments the current directory is checked. The exit
status is non-zero when any error is reported.

With --watch, directories are polled and changed files are checked again until
interrupted.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			if len(args) == 0 {
				args = []string{"."}
			}

			cfg, root, err := loadCheckConfig(configPath)
			if err != nil {
				return err
			}
			linter, err := runner.New(cfg.RunnerOptions())
			if err != nil {
				return err
			}
			newEncoder, err := encoderFor(outputFormat)
			if err != nil {
				return err
			}
			out := &syncWriter{w: cmd.OutOrStdout()}

			if watch {
				return watchPaths(cmd.Context(), args, cfg, root, linter, func() format.Encoder { return newEncoder(out) })
			}

			files, err := collectFiles(args, cfg, root)
			if err != nil {
				return err
			}
			results := checkFiles(cmd.Context(), linter, files, jobs)

			failed := false
			encoder := newEncoder(out)
			for _, r := range results {
				if report(encoder, cmd.ErrOrStderr(), r) {
					failed = true
				}
			}
			if failed {
				return errFindings
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of files checked in parallel")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep checking directories as files change")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (default: nearest .normls.toml)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "line", "output format (line, json)")

	return cmd
}

// loadCheckConfig returns the configuration and the directory its patterns are
// relative to.
func loadCheckConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		root, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, "", fmt.Errorf("resolve config directory: %w", err)
		}
		return cfg, root, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.LoadFrom(cwd)
	if err != nil {
		return nil, "", err
	}
	if cfg.Path != "" {
		return cfg, filepath.Dir(cfg.Path), nil
	}
	return cfg, cwd, nil
}

// matcher adapts the configuration patterns, relative to root, to paths
// relative to dir.
func matcher(cfg *config.Config, root, dir string) func(rel string) bool {
	return func(rel string) bool {
		abs, err := filepath.Abs(filepath.Join(dir, rel))
		if err != nil {
			return false
		}
		fromRoot, err := filepath.Rel(root, abs)
		if err != nil {
			return false
		}
		return cfg.Matches(fromRoot)
	}
}

// collectFiles expands directories with the configured patterns. Files named
// explicitly are always checked.
func collectFiles(args []string, cfg *config.Config, root string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		files = append(files, workspace.Expand(arg, matcher(cfg, root, arg))...)
	}
	return files, nil
}

func checkFiles(ctx context.Context, linter *runner.Linter, files []string, jobs int) []checkResult {
	results := make([]checkResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range files {
		g.Go(func() error {
			diags, err := linter.LintFile(gctx, path)
			results[i] = checkResult{path: path, diags: diags, err: err}
			return nil
		})
	}
	g.Wait()
	return results
}

func watchPaths(ctx context.Context, args []string, cfg *config.Config, root string, linter *runner.Linter, newEncoder func() format.Encoder) error {
	var watchers []*workspace.Watcher
	defer func() {
		for _, w := range watchers {
			w.Stop()
		}
	}()

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("watch %s: %w", arg, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("watch %s: not a directory", arg)
		}

		w := workspace.NewWatcher(arg, matcher(cfg, root, arg))
		w.OnChange = func(path string) {
			diags, err := linter.LintFile(ctx, path)
			report(newEncoder(), os.Stderr, checkResult{path: path, diags: diags, err: err})
		}
		w.Start()
		watchers = append(watchers, w)
	}

	<-ctx.Done()
	return nil
}

// report writes one result and tells whether it contains an error.
func report(encoder format.Encoder, stderr io.Writer, r checkResult) bool {
	if r.err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", r.path, r.err)
		return true
	}
	if err := encoder.Encode(format.FileDiagnostics{Path: r.path, Diagnostics: r.diags}); err != nil {
		fmt.Fprintf(stderr, "%s: encode: %v\n", r.path, err)
	}
	for _, d := range r.diags {
		if d.Severity == norminette.SeverityError {
			return true
		}
	}
	return false
}

func encoderFor(name string) (func(io.Writer) format.Encoder, error) {
	switch name {
	case "line":
		return func(w io.Writer) format.Encoder { return format.NewLineEncoder(w) }, nil
	case "json":
		return func(w io.Writer) format.Encoder { return format.NewJSONEncoder(w) }, nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}

// syncWriter serialises writes from watcher goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
