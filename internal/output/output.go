// Package output writes GitHub Actions step outputs and the job summary.
//
// Outputs are appended to the file named by $GITHUB_OUTPUT and markdown to
// the file named by $GITHUB_STEP_SUMMARY. When a path is empty the content is
// written to a fallback writer instead, which keeps local runs readable.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Emitter appends step outputs and summary markdown.
type Emitter struct {
	OutputPath  string
	SummaryPath string
	Fallback    io.Writer

	// delimiter generates heredoc delimiters for multi-line values.
	delimiter func() string
}

// NewEmitter returns an Emitter that falls back to stdout.
func NewEmitter(outputPath, summaryPath string) *Emitter {
	return &Emitter{
		OutputPath:  outputPath,
		SummaryPath: summaryPath,
		Fallback:    os.Stdout,
	}
}

// SetOutput records key=value as a step output.
func (e *Emitter) SetOutput(key, value string) error {
	if key == "" {
		return fmt.Errorf("output key must not be empty")
	}
	return e.appendTo(e.OutputPath, e.formatOutput(key, value))
}

// AppendSummary appends markdown to the job summary.
func (e *Emitter) AppendSummary(markdown string) error {
	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}
	return e.appendTo(e.SummaryPath, markdown)
}

func (e *Emitter) formatOutput(key, value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return key + "=" + value + "\n"
	}
	delim := e.newDelimiter()
	for strings.Contains(value, delim) {
		delim = e.newDelimiter()
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", key, delim, value, delim)
}

func (e *Emitter) newDelimiter() string {
	if e.delimiter != nil {
		return e.delimiter()
	}
	return "ghadelimiter_" + uuid.NewString()
}

func (e *Emitter) appendTo(path, content string) error {
	if path == "" {
		w := e.Fallback
		if w == nil {
			w = os.Stdout
		}
		_, err := io.WriteString(w, content)
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
