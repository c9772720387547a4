package lsp

import (
	"encoding/json"
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// protocol_3_16 predates pull diagnostics, so the request and the capability
// are declared here.
const methodTextDocumentDiagnostic = "textDocument/diagnostic"

type documentDiagnosticParams struct {
	TextDocument     protocol.TextDocumentIdentifier `json:"textDocument"`
	Identifier       *string                         `json:"identifier,omitempty"`
	PreviousResultID *string                         `json:"previousResultId,omitempty"`
}

type fullDocumentDiagnosticReport struct {
	Kind  string                `json:"kind"`
	Items []protocol.Diagnostic `json:"items"`
}

type diagnosticOptions struct {
	Identifier            string `json:"identifier,omitempty"`
	InterFileDependencies bool   `json:"interFileDependencies"`
	WorkspaceDiagnostics  bool   `json:"workspaceDiagnostics"`
}

type serverCapabilities struct {
	protocol.ServerCapabilities
	DiagnosticProvider *diagnosticOptions `json:"diagnosticProvider,omitempty"`
}

type initializeResult struct {
	Capabilities serverCapabilities                   `json:"capabilities"`
	ServerInfo   *protocol.InitializeResultServerInfo `json:"serverInfo,omitempty"`
}

// pullHandler answers textDocument/diagnostic and hands every other method to
// the protocol handler.
type pullHandler struct {
	inner *protocol.Handler
	ls    *Server
}

func (h *pullHandler) Handle(ctx *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	if ctx.Method != methodTextDocumentDiagnostic {
		return h.inner.Handle(ctx)
	}
	if !h.inner.IsInitialized() {
		return nil, true, true, errors.New("server not initialized")
	}
	var params documentDiagnosticParams
	if err := json.Unmarshal(ctx.Params, &params); err != nil {
		return nil, true, false, err
	}
	r, err = h.ls.textDocumentDiagnostic(ctx, &params)
	return r, true, true, err
}

// textDocumentDiagnostic returns the diagnostics last published for the document,
// linting it first if that has not happened yet. Documents that are not open or
// are excluded get an empty report.
func (ls *Server) textDocumentDiagnostic(ctx *glsp.Context, params *documentDiagnosticParams) (any, error) {
	uri := params.TextDocument.URI
	diags, ok := ls.docs.Published(uri)
	if !ok {
		var err error
		if diags, _, err = ls.check(uri); err != nil {
			ls.reportFailure(ctx, err)
			return nil, err
		}
	}
	return fullDocumentDiagnosticReport{
		Kind:  "full",
		Items: toProtocolDiagnostics(diags),
	}, nil
}
