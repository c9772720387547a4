package lsp

import (
	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/normls/norminette"
)

// toProtocolDiagnostics never returns nil so that an empty set is published as
// [] and clears the editor's markers.
func toProtocolDiagnostics(diags []norminette.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, toProtocolDiagnostic(d))
	}
	return out
}

func toProtocolDiagnostic(d norminette.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	if d.Severity == norminette.SeverityInformation {
		severity = protocol.DiagnosticSeverityInformation
	}
	source := d.Source

	pd := protocol.Diagnostic{
		Range:    toProtocolRange(d.Range),
		Severity: &severity,
		Source:   &source,
		Message:  d.Message,
	}
	if d.Code != "" {
		pd.Code = &protocol.IntegerOrString{Value: d.Code}
	}
	return pd
}

func toProtocolRange(r norminette.Range) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(r.Start),
		End:   toProtocolPosition(r.End),
	}
}

func toProtocolPosition(p norminette.Position) protocol.Position {
	return protocol.Position{
		Line:      toUInteger(p.Line),
		Character: toUInteger(p.Column),
	}
}

// toUInteger clamps values that do not fit to the end-of-line sentinel.
func toUInteger(v int) protocol.UInteger {
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		if v < 0 {
			return 0
		}
		return protocol.UInteger(norminette.EndOfLine)
	}
	return protocol.UInteger(u)
}
