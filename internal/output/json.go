package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter emits the report as one indented JSON document, including
// every patch path, for scripts that post-process a dump.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
