// Package norminette turns the text report of the norminette C style linter into
// positioned diagnostics.
//
// The package is pure: it never runs the linter and holds no state between calls.
package norminette

// Status is the verdict printed on the summary line of a report.
type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "Error"
	}
	return "unknown"
}

// Level is the keyword that opens a located issue line.
type Level int

const (
	LevelError Level = iota
	LevelNotice
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "Error"
	case LevelNotice:
		return "Notice"
	}
	return "unknown"
}

// Message is one entry of a parsed report. The concrete types are Clean,
// HeaderWarning, LocatedIssue and UnlocatedIssue.
type Message interface {
	message()
}

// Clean means the linter found nothing to report.
// Status tells an "OK" summary apart from an "Error" summary with no issue lines.
type Clean struct {
	Status Status
}

// HeaderWarning is the structural warning printed before the summary line when the
// file header is missing. Line is 0 when the report gives no line.
type HeaderWarning struct {
	Line int
	Text string
}

// LocatedIssue is a violation anchored at a 1-based line and 0-based column,
// exactly as the linter printed them.
type LocatedIssue struct {
	Level  Level
	Code   string
	Line   int32
	Column int32
	Text   string
}

// UnlocatedIssue holds an issue line that did not match the located grammar.
type UnlocatedIssue struct {
	Text string
}

func (Clean) message()          {}
func (HeaderWarning) message()  {}
func (LocatedIssue) message()   {}
func (UnlocatedIssue) message() {}

// Report is a parsed report together with its summary line.
type Report struct {
	File     string
	Status   Status
	Messages []Message
}
