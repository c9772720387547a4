package norminette

// Source identifies norminette as the origin of a diagnostic.
const Source = "norminette"

type Severity int

const (
	SeverityError Severity = iota
	SeverityInformation
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityInformation:
		return "info"
	}
	return "unknown"
}

// Diagnostic is a positioned finding ready to be published. Code is empty when the
// linter did not name the rule.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code,omitempty"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
}

// Adapt turns messages into diagnostics, in order. Clean messages produce nothing.
func Adapt(msgs []Message) []Diagnostic {
	diags := make([]Diagnostic, 0, len(msgs))
	for _, m := range msgs {
		if d, ok := adaptOne(m); ok {
			diags = append(diags, d)
		}
	}
	return diags
}

func adaptOne(m Message) (Diagnostic, bool) {
	rng, ok := RangeOf(m)
	if !ok {
		return Diagnostic{}, false
	}
	d := Diagnostic{Range: rng, Source: Source}
	switch m := m.(type) {
	case HeaderWarning:
		d.Severity = SeverityInformation
		d.Message = m.Text
	case LocatedIssue:
		d.Severity = SeverityError
		if m.Level == LevelNotice {
			d.Severity = SeverityInformation
		}
		d.Code = m.Code
		d.Message = m.Text
	case UnlocatedIssue:
		d.Severity = SeverityError
		d.Message = m.Text
	default:
		return Diagnostic{}, false
	}
	return d, true
}

// Diagnose parses a report and adapts its messages.
func Diagnose(report string) ([]Diagnostic, error) {
	msgs, err := Parse(report)
	if err != nil {
		return nil, err
	}
	return Adapt(msgs), nil
}

// DiagnoseBytes is Diagnose for raw captured output, which must be valid UTF-8.
func DiagnoseBytes(out []byte) ([]Diagnostic, error) {
	r, err := ParseReportBytes(out)
	if err != nil {
		return nil, err
	}
	return r.Diagnostics(), nil
}

// Diagnostics adapts the messages of r.
func (r *Report) Diagnostics() []Diagnostic {
	return Adapt(r.Messages)
}
