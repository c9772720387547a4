// Package lsp publishes norminette diagnostics over the Language Server Protocol.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/normls/config"
	"github.com/dhamidi/normls/norminette"
	"github.com/dhamidi/normls/runner"
	"github.com/dhamidi/normls/workspace"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "normls"

// DiagnosticProvider lints a document, either from disk or from an unsaved buffer.
type DiagnosticProvider interface {
	LintFile(ctx context.Context, path string) ([]norminette.Diagnostic, error)
	LintBuffer(ctx context.Context, filename string, content []byte) ([]norminette.Diagnostic, error)
}

type Option func(*Server)

// WithProvider makes the server use p regardless of configuration.
func WithProvider(p DiagnosticProvider) Option {
	return func(s *Server) {
		s.fixedProvider = p
	}
}

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
	docs    *workspace.Tracker
	log     commonlog.Logger

	mu            sync.RWMutex
	rootDir       string
	config        *config.Config
	provider      DiagnosticProvider
	fixedProvider DiagnosticProvider
}

func NewServer(version string, opts ...Option) *Server {
	ls := &Server{
		version: version,
		docs:    workspace.NewTracker(),
		log:     commonlog.GetLogger("normls.lsp"),
		rootDir: ".",
		config:  config.Default(),
	}
	for _, opt := range opts {
		opt(ls)
	}

	ls.handler = protocol.Handler{
		Initialize:                      ls.initialize,
		Initialized:                     ls.initialized,
		Shutdown:                        ls.shutdown,
		SetTrace:                        ls.setTrace,
		TextDocumentDidOpen:             ls.textDocumentDidOpen,
		TextDocumentDidChange:           ls.textDocumentDidChange,
		TextDocumentDidClose:            ls.textDocumentDidClose,
		TextDocumentDidSave:             ls.textDocumentDidSave,
		WorkspaceDidChangeConfiguration: ls.workspaceDidChangeConfiguration,
	}

	ls.server = server.NewServer(&pullHandler{inner: &ls.handler, ls: ls}, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cfg, err := config.LoadFrom(rootDir)
	if err != nil {
		ls.log.Errorf("load configuration: %s", err)
		ls.logMessage(ctx, protocol.MessageTypeWarning, fmt.Sprintf("normls: %v; using defaults", err))
		cfg = config.Default()
	}
	if params.InitializationOptions != nil {
		if next, err := cfg.Apply(params.InitializationOptions); err != nil {
			ls.log.Warningf("initialization options: %s", err)
		} else {
			cfg = next
		}
	}
	if err := ls.configure(rootDir, cfg); err != nil {
		return nil, err
	}

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return initializeResult{
		Capabilities: serverCapabilities{
			ServerCapabilities: capabilities,
			DiagnosticProvider: &diagnosticOptions{Identifier: lsName},
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// configure installs cfg and the provider built from it.
func (ls *Server) configure(rootDir string, cfg *config.Config) error {
	provider := ls.fixedProvider
	if provider == nil {
		linter, err := runner.New(cfg.RunnerOptions())
		if err != nil {
			return fmt.Errorf("configure norminette: %w", err)
		}
		provider = linter
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.rootDir = rootDir
	ls.config = cfg
	ls.provider = provider
	return nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	if ls.config.Path != "" {
		ls.log.Infof("using configuration %s", ls.config.Path)
	}
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.docs.Open(params.TextDocument.URI, path, params.TextDocument.Text, int32(params.TextDocument.Version))
	ls.lintOn(ctx, config.EventOpen, params.TextDocument.URI)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	if ls.docs.Update(params.TextDocument.URI, textChange.Text, int32(params.TextDocument.Version)) {
		ls.lintOn(ctx, config.EventChange, params.TextDocument.URI)
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.docs.Close(params.TextDocument.URI)
	ls.publish(ctx, params.TextDocument.URI, nil)
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if ls.docs.Saved(params.TextDocument.URI, params.Text) {
		ls.lintOn(ctx, config.EventSave, params.TextDocument.URI)
	}
	return nil
}

func (ls *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	ls.mu.RLock()
	current, rootDir := ls.config, ls.rootDir
	ls.mu.RUnlock()

	next, err := current.Apply(params.Settings)
	if err != nil {
		ls.log.Errorf("apply settings: %s", err)
		ls.logMessage(ctx, protocol.MessageTypeError, fmt.Sprintf("normls: %v", err))
		return nil
	}
	if err := ls.configure(rootDir, next); err != nil {
		ls.log.Errorf("%s", err)
		ls.logMessage(ctx, protocol.MessageTypeError, fmt.Sprintf("normls: %v", err))
		return nil
	}

	for _, uri := range ls.docs.URIs() {
		ls.lint(ctx, uri)
	}
	return nil
}

func (ls *Server) lintOn(ctx *glsp.Context, event config.Event, uri string) {
	ls.mu.RLock()
	enabled := ls.config.LintsOn(event)
	ls.mu.RUnlock()
	if enabled {
		ls.lint(ctx, uri)
	}
}

// lint runs the provider for uri and publishes the result. On failure the error is
// logged and the previously published diagnostics stay in place.
func (ls *Server) lint(ctx *glsp.Context, uri string) {
	diags, ok, err := ls.check(uri)
	if err != nil {
		ls.reportFailure(ctx, err)
		return
	}
	if ok {
		ls.publish(ctx, uri, diags)
	}
}

// check lints the open document at uri and records the result. It reports false
// for documents that are not open or that the configuration excludes.
func (ls *Server) check(uri string) ([]norminette.Diagnostic, bool, error) {
	doc, ok := ls.docs.Get(uri)
	if !ok {
		return nil, false, nil
	}

	ls.mu.RLock()
	cfg, rootDir, provider := ls.config, ls.rootDir, ls.provider
	ls.mu.RUnlock()

	if !selected(cfg, rootDir, doc.Path) {
		return nil, false, nil
	}

	var (
		diags []norminette.Diagnostic
		err   error
	)
	onDisk := existsOnDisk(doc.Path)
	if doc.Dirty || !onDisk {
		diags, err = provider.LintBuffer(context.Background(), filepath.Base(doc.Path), []byte(doc.Text))
		if errors.Is(err, runner.ErrBufferTooLarge) && onDisk {
			ls.log.Warningf("%s is too large to lint unsaved; using the saved file", doc.Path)
			diags, err = provider.LintFile(context.Background(), doc.Path)
		}
	} else {
		diags, err = provider.LintFile(context.Background(), doc.Path)
	}
	if err != nil {
		return nil, false, fmt.Errorf("norminette read of %s failed: %w", doc.Path, err)
	}

	ls.docs.SetDiagnostics(uri, diags)
	return diags, true, nil
}

func (ls *Server) reportFailure(ctx *glsp.Context, err error) {
	ls.log.Errorf("%s", err)
	ls.logMessage(ctx, protocol.MessageTypeError, err.Error())
}

func (ls *Server) publish(ctx *glsp.Context, uri string, diags []norminette.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(diags),
	})
}

func (ls *Server) logMessage(ctx *glsp.Context, typ protocol.MessageType, message string) {
	ctx.Notify(protocol.ServerWindowLogMessage, protocol.LogMessageParams{
		Type:    typ,
		Message: message,
	})
}

// selected applies the include and exclude patterns to paths inside the workspace.
// Documents outside of it are always linted.
func selected(cfg *config.Config, rootDir, path string) bool {
	rel, err := filepath.Rel(rootDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	return cfg.Matches(rel)
}

func existsOnDisk(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
