package norminette

import (
	"errors"
	"fmt"
)

var (
	// ErrIOFailure reports linter output that cannot be read as a report at all,
	// such as bytes that are not valid UTF-8, or a linter that could not be run.
	ErrIOFailure = errors.New("norminette: io failure")

	// ErrGrammarMismatch reports a report that does not follow the report grammar.
	// Errors returned by the parser carry details as a *GrammarError.
	ErrGrammarMismatch = errors.New("norminette: grammar mismatch")
)

// GrammarError locates a grammar mismatch by byte offset into the report.
type GrammarError struct {
	Offset   int
	Expected string
	Found    string
}

func (e *GrammarError) Error() string {
	found := e.Found
	if found == "" {
		found = "end of report"
	} else {
		found = fmt.Sprintf("%q", found)
	}
	return fmt.Sprintf("norminette report: offset %d: expected %s, found %s", e.Offset, e.Expected, found)
}

func (e *GrammarError) Is(target error) bool {
	return target == ErrGrammarMismatch
}
