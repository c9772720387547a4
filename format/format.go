// Package format renders lint results for the command line.
package format

import (
	"encoding"

	"github.com/dhamidi/normls/norminette"
)

// FileDiagnostics is the lint result for one file.
type FileDiagnostics struct {
	Path        string
	Diagnostics []norminette.Diagnostic
}

type Encoder interface {
	encoding.TextMarshaler
	Encode(result FileDiagnostics) error
}
