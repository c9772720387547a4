package norminette

import (
	"strings"

	"fortio.org/safecast"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Example: Error: SPACE_BEFORE_FUNC   (line:  12, col:   3):	space before function
//
// Whitespace is significant: the code must be followed by at least one blank, and
// the "):" delimiter may be preceded and followed by any run of blanks or none.
var issueLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Level", Pattern: `(?:Error|Notice):`},
		{Name: "LineOpen", Pattern: `\(line:`},
		{Name: "ColTag", Pattern: `col:`},
		{Name: "Close", Pattern: `\):[ \t]*`, Action: lexer.Push("Message")},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Space", Pattern: `[ \t]+`},
		{Name: "Code", Pattern: `[A-Za-z_]+`},
	},
	"Message": {
		{Name: "Text", Pattern: `[^\r\n]+`},
	},
})

type issueLine struct {
	Level  string `@Level Space`
	Code   string `@Code Space`
	Line   int    `LineOpen Space? @Int Space? Comma Space? ColTag Space?`
	Column int    `@Int Space? Close`
	Text   string `@Text?`
}

var issueParser = participle.MustBuild[issueLine](participle.Lexer(issueLexer))

// parseIssue never fails: a line the located grammar rejects is kept verbatim as
// an UnlocatedIssue so the rest of the report stays usable.
func parseIssue(line string) Message {
	if issue, ok := parseLocated(line); ok {
		return issue
	}
	return UnlocatedIssue{Text: strings.TrimLeft(line, " \t")}
}

func parseLocated(line string) (LocatedIssue, bool) {
	parsed, err := issueParser.ParseString("", line)
	if err != nil {
		return LocatedIssue{}, false
	}
	lineNo, err := safecast.Conv[int32](parsed.Line)
	if err != nil || lineNo < 1 {
		return LocatedIssue{}, false
	}
	col, err := safecast.Conv[int32](parsed.Column)
	if err != nil {
		return LocatedIssue{}, false
	}

	level := LevelError
	if parsed.Level == "Notice:" {
		level = LevelNotice
	}
	return LocatedIssue{
		Level:  level,
		Code:   parsed.Code,
		Line:   lineNo,
		Column: col,
		Text:   parsed.Text,
	}, true
}
