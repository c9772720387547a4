package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dhamidi/normls/norminette"
)

var (
	pathColor  = color.New(color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
	infoColor  = color.New(color.FgCyan)
	codeColor  = color.New(color.FgYellow)
)

// LineEncoder writes one "path:line:col: severity: [CODE] message" line per
// diagnostic, with 1-based line and column.
type LineEncoder struct {
	w      io.Writer
	result FileDiagnostics
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(result FileDiagnostics) error {
	e.result = result
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, d := range e.result.Diagnostics {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: ",
			pathColor.Sprint(e.result.Path),
			d.Range.Start.Line+1,
			d.Range.Start.Column+1,
			severityColor(d.Severity).Sprint(d.Severity),
		)
		if d.Code != "" {
			sb.WriteString(codeColor.Sprint("[" + d.Code + "]"))
			sb.WriteByte(' ')
		}
		sb.WriteString(d.Message)
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

func severityColor(s norminette.Severity) *color.Color {
	if s == norminette.SeverityError {
		return errorColor
	}
	return infoColor
}

var _ Encoder = (*LineEncoder)(nil)
