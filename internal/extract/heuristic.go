package extract

import (
	"context"
	"strings"
)

// HeuristicExtractor scans the raw document bytes for printable text runs and
// applies the contact-detail heuristics to them. It needs no external service,
// which makes it the default when no DocAI processor is configured.
type HeuristicExtractor struct{}

func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

func (e *HeuristicExtractor) Extract(_ context.Context, fileName, _ string, data []byte) (*Fields, error) {
	return FieldsFromText(fileName, printableRuns(data))
}

// printableRuns pulls runs of printable ASCII out of a binary document.
// Contact details in PDFs and DOCX archives frequently survive verbatim in
// the uncompressed portions of the file.
func printableRuns(data []byte) string {
	const minRun = 4

	var b strings.Builder
	var run []byte
	flush := func() {
		if len(run) >= minRun {
			b.Write(run)
			b.WriteByte('\n')
		}
		run = run[:0]
	}

	for _, c := range data {
		if c >= 0x20 && c < 0x7f {
			run = append(run, c)
		} else {
			flush()
		}
	}
	flush()
	return b.String()
}
