package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter duplicates each write to all of its writers. A failing
// writer does not stop the rest; the write counts as done when at least
// one writer took the whole buffer.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		writers: append([]io.Writer(nil), writers...),
	}
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		err     error
		written bool
	)
	for _, w := range cw.writers {
		n, werr := w.Write(p)
		if werr == nil && n < len(p) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		written = true
	}
	if !written {
		return 0, err
	}
	return len(p), err
}
