package output

import (
	"fmt"
	"io"
)

// Writer renders the summary of one dump run. The dump command sends it to
// stdout; logs go to stderr so the report can be piped.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// GetWriter returns the writer for a configured report format ("text" or
// "json").
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format %q (want text or json)", format)
	}
}
