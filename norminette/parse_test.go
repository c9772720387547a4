package norminette

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseOK(t *testing.T) {
	msgs, err := Parse("file.c: OK!\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Message{Clean{Status: StatusOK}}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestParseErrorWithoutIssues(t *testing.T) {
	msgs, err := Parse("file.c: Error!\n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Message{Clean{Status: StatusError}}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestParseLocatedIssueWithTab(t *testing.T) {
	msgs, err := Parse("file.c: Error!\nError: SPACE_BEFORE_FUNC   (line: 12, col: 3):\tspace before function\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Message{LocatedIssue{
		Level:  LevelError,
		Code:   "SPACE_BEFORE_FUNC",
		Line:   12,
		Column: 3,
		Text:   "space before function",
	}}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestParseWhitespaceVariants(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"spaces after delimiter", "Error: TOO_MANY_ARGS (line: 4, col: 0):   too many arguments"},
		{"tab after delimiter", "Error:\tTOO_MANY_ARGS\t(line: 4, col: 0):\ttoo many arguments"},
		{"no space after markers", "Error: TOO_MANY_ARGS (line:4,col:0):too many arguments"},
		{"padded numbers", "Error:   TOO_MANY_ARGS    (line:   4, col:   0 ):  too many arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := Parse("a.c: Error!\n" + tt.line + "\n")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(msgs) != 1 {
				t.Fatalf("expected 1 message, got %d: %+v", len(msgs), msgs)
			}
			issue, ok := msgs[0].(LocatedIssue)
			if !ok {
				t.Fatalf("expected LocatedIssue, got %T", msgs[0])
			}
			if issue.Code != "TOO_MANY_ARGS" || issue.Line != 4 || issue.Column != 0 {
				t.Errorf("unexpected issue %+v", issue)
			}
			if issue.Text != "too many arguments" {
				t.Errorf("expected 'too many arguments', got %q", issue.Text)
			}
		})
	}
}

func TestParseNotice(t *testing.T) {
	msgs, err := Parse("a.c: Error!\nNotice: GLOBAL_VAR_DETECTED (line: 2, col: 1): Global variable present in file. Make sure it is a reasonable choice.\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issue, ok := msgs[0].(LocatedIssue)
	if !ok {
		t.Fatalf("expected LocatedIssue, got %T", msgs[0])
	}
	if issue.Level != LevelNotice {
		t.Errorf("expected notice level, got %v", issue.Level)
	}
	if issue.Code != "GLOBAL_VAR_DETECTED" {
		t.Errorf("expected GLOBAL_VAR_DETECTED, got %q", issue.Code)
	}
}

func TestParseFallbackKeepsOrder(t *testing.T) {
	report := "a.c: Error!\n" +
		"Error: TOO_MANY_ARGS (line: 4, col: 0): too many arguments\n" +
		"Error: something the linter printed differently\n" +
		"Error: TOO_MANY_LINES (line: 9, col: 2): too many lines\n"
	msgs, err := Parse(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Message{
		LocatedIssue{Code: "TOO_MANY_ARGS", Line: 4, Column: 0, Text: "too many arguments"},
		UnlocatedIssue{Text: "Error: something the linter printed differently"},
		LocatedIssue{Code: "TOO_MANY_LINES", Line: 9, Column: 2, Text: "too many lines"},
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestParseFallbackKeepsTrailingText(t *testing.T) {
	msgs, err := Parse("a.c: Error!\n  \tsomething odd  \t\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Message{UnlocatedIssue{Text: "something odd  \t"}}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestParseFallbackCases(t *testing.T) {
	lines := []string{
		"Error: BAD1CODE (line: 1, col: 1): digits are not part of a code",
		"Error: NOSPACE(line: 1, col: 1): code must be followed by a blank",
		"Error: LINE_ZERO (line: 0, col: 1): lines start at one",
		"Error: NEGATIVE (line: 3, col: -1): negative column",
		"Error: HUGE (line: 99999999999, col: 1): does not fit",
		"Warning: UNKNOWN_LEVEL (line: 1, col: 1): not a known level",
	}
	for _, line := range lines {
		msgs, err := Parse("a.c: Error!\n" + line + "\n")
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", line, err)
		}
		if _, ok := msgs[0].(UnlocatedIssue); !ok {
			t.Errorf("expected UnlocatedIssue for %q, got %T", line, msgs[0])
		}
	}
}

func TestParseHeaderBlock(t *testing.T) {
	report := "Missing or invalid header (line: 1)\n" +
		"a.c: Error!\n" +
		"Error: TOO_MANY_ARGS (line: 4, col: 0): too many arguments\n"
	r, err := ParseReport(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.File != "a.c" {
		t.Errorf("expected file a.c, got %q", r.File)
	}
	if len(r.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(r.Messages))
	}
	header, ok := r.Messages[0].(HeaderWarning)
	if !ok {
		t.Fatalf("expected HeaderWarning first, got %T", r.Messages[0])
	}
	if header.Line != 1 {
		t.Errorf("expected header line 1, got %d", header.Line)
	}
	if header.Text != "Missing or invalid header (line: 1)" {
		t.Errorf("unexpected header text %q", header.Text)
	}
}

func TestParseHeaderDroppedWhenClean(t *testing.T) {
	for _, summary := range []string{"a.c: OK!\n", "a.c: Error!\n"} {
		msgs, err := Parse("Missing or invalid 42 header\n" + summary)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(msgs))
		}
		if _, ok := msgs[0].(Clean); !ok {
			t.Errorf("expected Clean, got %T", msgs[0])
		}
	}
}

func TestParseEOFTerminatesLines(t *testing.T) {
	msgs, err := Parse("a.c: Error!\nError: TOO_MANY_LINES (line: 9, col: 2): too many lines")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := msgs[0].(LocatedIssue); !ok {
		t.Errorf("expected LocatedIssue, got %T", msgs[0])
	}

	msgs, err = Parse("a.c: Error!\nError: TOO_MANY_LINES (line: 9, co")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := msgs[0].(UnlocatedIssue); !ok {
		t.Errorf("expected UnlocatedIssue for truncated line, got %T", msgs[0])
	}

	if _, err := Parse("a.c: OK!"); err != nil {
		t.Errorf("unexpected error for summary without newline: %v", err)
	}
}

func TestParseCRLF(t *testing.T) {
	msgs, err := Parse("a.c: Error!\r\nError: TOO_MANY_LINES (line: 9, col: 2): too many lines\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issue, ok := msgs[0].(LocatedIssue)
	if !ok {
		t.Fatalf("expected LocatedIssue, got %T", msgs[0])
	}
	if issue.Text != "too many lines" {
		t.Errorf("expected 'too many lines', got %q", issue.Text)
	}
}

func TestParseGrammarMismatch(t *testing.T) {
	tests := []struct {
		name   string
		report string
		offset int
	}{
		{"empty", "", 0},
		{"blank", "\n  \n", 4},
		{"no summary", "hello world\n", 0},
		{"bad verdict", "a.c: Fine!\n", 5},
		{"truncated summary", "a.c: Err", 5},
		{"empty file name", ": OK!\n", 0},
		{"trailing after OK", "a.c: OK!\n\nError: X (line: 1, col: 1): y\n", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.report)
			if !errors.Is(err, ErrGrammarMismatch) {
				t.Fatalf("expected ErrGrammarMismatch, got %v", err)
			}
			var gerr *GrammarError
			if !errors.As(err, &gerr) {
				t.Fatalf("expected *GrammarError, got %T", err)
			}
			if gerr.Offset != tt.offset {
				t.Errorf("expected offset %d, got %d", tt.offset, gerr.Offset)
			}
			if gerr.Expected == "" {
				t.Error("expected a description of the expected token")
			}
		})
	}
}

func TestParseFileNameWithColon(t *testing.T) {
	r, err := ParseReport("C:/src/a.c: OK!\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.File != "C:/src/a.c" {
		t.Errorf("expected 'C:/src/a.c', got %q", r.File)
	}
}
