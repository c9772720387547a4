package format

import (
	"encoding/json"
	"io"
)

type JSONEncoder struct {
	w      io.Writer
	result FileDiagnostics
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(result FileDiagnostics) error {
	e.result = result
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data := jsonFile{
		Path:        e.result.Path,
		Diagnostics: make([]jsonDiagnostic, 0, len(e.result.Diagnostics)),
	}
	for _, d := range e.result.Diagnostics {
		data.Diagnostics = append(data.Diagnostics, jsonDiagnostic{
			Range: jsonRange{
				Start: jsonPosition{Line: d.Range.Start.Line, Character: d.Range.Start.Column},
				End:   jsonPosition{Line: d.Range.End.Line, Character: d.Range.End.Column},
			},
			Severity: d.Severity.String(),
			Code:     d.Code,
			Source:   d.Source,
			Message:  d.Message,
		})
	}
	return json.MarshalIndent(data, "", "  ")
}

type jsonFile struct {
	Path        string           `json:"path,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonDiagnostic struct {
	Range    jsonRange `json:"range"`
	Severity string    `json:"severity"`
	Code     string    `json:"code,omitempty"`
	Source   string    `json:"source"`
	Message  string    `json:"message"`
}

type jsonRange struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

var _ Encoder = (*JSONEncoder)(nil)
