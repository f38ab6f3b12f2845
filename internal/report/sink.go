package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/prevalent/internal/colour"
)

// DefaultDelimiter separates fields in CSV output.
const DefaultDelimiter = ';'

// Record is the outcome for one image: its identifier and dominant colour
// names, or the error that prevented them.
type Record struct {
	ID      string
	Colours []string
	Err     error
}

// Sink receives records in input order.
type Sink interface {
	Write(rec Record) error
	Close() error
}

// CSVSink writes one delimited line per record: the identifier followed by each colour.
// A record without colours is written with a single empty colour field.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
}

// CSVOption configures a CSVSink.
type CSVOption func(*CSVSink)

// WithDelimiter sets the field delimiter.
func WithDelimiter(r rune) CSVOption {
	return func(s *CSVSink) {
		s.w.Comma = r
	}
}

// NewCSVSink creates a CSVSink writing to w. If w is an io.Closer it is
// closed by Close.
func NewCSVSink(w io.Writer, opts ...CSVOption) *CSVSink {
	s := &CSVSink{w: csv.NewWriter(w)}
	s.w.Comma = DefaultDelimiter
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write writes rec as a single line.
func (s *CSVSink) Write(rec Record) error {
	fields := make([]string, 0, len(rec.Colours)+1)
	fields = append(fields, rec.ID)
	if len(rec.Colours) == 0 {
		fields = append(fields, "")
	}
	fields = append(fields, rec.Colours...)

	if err := s.w.Write(fields); err != nil {
		return fmt.Errorf("failed to write record for %s: %w", rec.ID, err)
	}
	return nil
}

// Close flushes buffered output and closes the underlying writer if it owns one.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// TextSink writes human readable lines, optionally with ANSI colour swatches.
type TextSink struct {
	w       io.Writer
	closer  io.Closer
	catalog *colour.Catalog
	preview bool
}

// NewTextSink creates a TextSink. When preview is set each colour name is
// preceded by a swatch of its catalog colour. If w is an io.Closer it is
// closed by Close.
func NewTextSink(w io.Writer, catalog *colour.Catalog, preview bool) *TextSink {
	if catalog == nil {
		catalog = colour.DefaultCatalog()
	}
	s := &TextSink{w: w, catalog: catalog, preview: preview}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Write writes rec as "id: colour, colour" or "id: error: ...".
func (s *TextSink) Write(rec Record) error {
	var line string
	switch {
	case rec.Err != nil:
		line = fmt.Sprintf("%s: error: %v", rec.ID, rec.Err)
	case len(rec.Colours) == 0:
		line = fmt.Sprintf("%s: (none)", rec.ID)
	default:
		names := make([]string, len(rec.Colours))
		for i, name := range rec.Colours {
			names[i] = s.label(name)
		}
		line = fmt.Sprintf("%s: %s", rec.ID, strings.Join(names, ", "))
	}

	if _, err := fmt.Fprintln(s.w, line); err != nil {
		return fmt.Errorf("failed to write record for %s: %w", rec.ID, err)
	}
	return nil
}

func (s *TextSink) label(name string) string {
	if !s.preview {
		return name
	}
	nc, ok := s.catalog.Lookup(name)
	if !ok {
		return name
	}
	return colour.ColourPreview(nc.RGB, 2) + " " + name
}

// Close closes the underlying writer if it owns one.
func (s *TextSink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
