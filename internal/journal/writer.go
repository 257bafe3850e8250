package journal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/crowdplay/crowdplay/internal/tally"
)

// Writer appends statistics records to the journal file. Records are
// written unbuffered, so every Append is durable on return.
type Writer struct {
	f *os.File
}

// Open opens the journal at path for appending, creating it if absent.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Writer{f: f}, nil
}

// Append writes one record derived from the window sum c covering the span
// window. Columns, tab-separated: unix timestamp, messages/s, commands/s,
// then the eleven per-command ratios (command count over total commands).
// When the window saw no commands the rate and ratio columns are all zero.
func (w *Writer) Append(now time.Time, c tally.Counts, window time.Duration) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%d\t%g", now.Unix(), float64(c.Messages)/window.Seconds())
	if c.Commands > 0 {
		fmt.Fprintf(&b, "\t%g", float64(c.Commands)/window.Seconds())
		for _, v := range c.Votes() {
			fmt.Fprintf(&b, "\t%g", float64(v)/float64(c.Commands))
		}
	} else {
		b.WriteString(strings.Repeat("\t0", 12))
	}
	b.WriteByte('\n')

	if _, err := w.f.WriteString(b.String()); err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}
