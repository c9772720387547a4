package norminette

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	headerPrefix  = "Missing or invalid"
	summaryOK     = ": OK!"
	summaryError  = ": Error!"
	maxFoundBytes = 64
)

// Parse parses a complete report and returns its messages in report order.
func Parse(report string) ([]Message, error) {
	r, err := ParseReport(report)
	if err != nil {
		return nil, err
	}
	return r.Messages, nil
}

// ParseReport parses a complete report.
//
// An "OK" summary yields exactly one Clean message. An "Error" summary yields the
// optional header warning followed by one message per non-blank issue line, or a
// single Clean message when no issue line follows. End of input terminates a line
// like a newline does. A report that is not valid UTF-8 is rejected with
// ErrIOFailure before any parsing.
func ParseReport(report string) (*Report, error) {
	if !utf8.ValidString(report) {
		return nil, fmt.Errorf("%w: linter output is not valid UTF-8", ErrIOFailure)
	}
	p := &parser{input: report}
	return p.parseReport()
}

// ParseReportBytes is ParseReport for raw captured output.
func ParseReportBytes(out []byte) (*Report, error) {
	return ParseReport(string(out))
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseReport() (*Report, error) {
	p.skipBlankLines()

	var header *HeaderWarning
	if strings.HasPrefix(p.input[p.pos:], headerPrefix) {
		save := p.pos
		line, _ := p.nextLine()
		if h, ok := parseHeader(line); ok {
			header = &h
		} else {
			p.pos = save
		}
		p.skipBlankLines()
	}

	if p.atEnd() {
		return nil, mismatch(p.pos, "summary line", "")
	}
	line, start := p.nextLine()
	file, status, err := parseSummary(line, start)
	if err != nil {
		return nil, err
	}

	report := &Report{File: file, Status: status}
	if status == StatusOK {
		p.skipBlankLines()
		if !p.atEnd() {
			next := p.pos
			trailing, _ := p.nextLine()
			return nil, mismatch(next, "end of report after OK summary", trailing)
		}
		report.Messages = []Message{Clean{Status: StatusOK}}
		return report, nil
	}

	var issues []Message
	for !p.atEnd() {
		line, _ := p.nextLine()
		if isBlank(line) {
			continue
		}
		issues = append(issues, parseIssue(line))
	}

	switch {
	case len(issues) == 0:
		report.Messages = []Message{Clean{Status: StatusError}}
	case header != nil:
		report.Messages = append([]Message{*header}, issues...)
	default:
		report.Messages = issues
	}
	return report, nil
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.input)
}

// nextLine returns the line at the current offset without its terminator, along
// with the offset it starts at, and moves past it.
func (p *parser) nextLine() (string, int) {
	start := p.pos
	n := strings.IndexByte(p.input[start:], '\n')
	if n < 0 {
		p.pos = len(p.input)
		return strings.TrimSuffix(p.input[start:], "\r"), start
	}
	p.pos = start + n + 1
	return strings.TrimSuffix(p.input[start:start+n], "\r"), start
}

func (p *parser) skipBlankLines() {
	for !p.atEnd() {
		save := p.pos
		line, _ := p.nextLine()
		if !isBlank(line) {
			p.pos = save
			return
		}
	}
}

func mismatch(offset int, expected, found string) *GrammarError {
	if len(found) > maxFoundBytes {
		found = found[:maxFoundBytes]
	}
	return &GrammarError{Offset: offset, Expected: expected, Found: found}
}

// parseSummary reads "<file>: OK!" or "<file>: Error!". The file name is whatever
// precedes the verdict, so names containing colons survive.
func parseSummary(line string, start int) (string, Status, error) {
	var (
		file   string
		status Status
	)
	switch {
	case strings.HasSuffix(line, summaryOK):
		file, status = strings.TrimSuffix(line, summaryOK), StatusOK
	case strings.HasSuffix(line, summaryError):
		file, status = strings.TrimSuffix(line, summaryError), StatusError
	default:
		if i := strings.LastIndex(line, ": "); i >= 0 {
			return "", 0, mismatch(start+i+2, `"OK!" or "Error!"`, line[i+2:])
		}
		return "", 0, mismatch(start, `summary line "<file>: OK!" or "<file>: Error!"`, line)
	}
	if strings.TrimSpace(file) == "" {
		return "", 0, mismatch(start, "file name", line)
	}
	return file, status, nil
}

func parseHeader(line string) (HeaderWarning, bool) {
	text := strings.TrimSpace(line)
	if !strings.Contains(strings.ToLower(text), "header") {
		return HeaderWarning{}, false
	}
	return HeaderWarning{Line: headerLine(text), Text: text}, true
}

// headerLine extracts N from a "(line: N" marker, or returns 0.
func headerLine(text string) int {
	i := strings.Index(text, "(line:")
	if i < 0 {
		return 0
	}
	rest := strings.TrimLeft(text[i+len("(line:"):], " \t")
	j := 0
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	n, err := strconv.Atoi(rest[:j])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
