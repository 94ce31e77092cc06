package util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Writer buffers output from worker threads in a strings.Builder.
// When the Flush method is called the buffer is emptied into the shared destination writer. Several Writers may
// share one destination; the destination is guarded by a mutex so that flushed chunks never interleave.
type Writer struct {
	sb  strings.Builder
	dst *Sink
}

// Sink is the shared destination of one or more Writers.
type Sink struct {
	w  io.Writer
	mx sync.Mutex
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewSink returns a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// NewWriter returns a new Writer to be used by a worker thread to write strings to the Sink s.
func (s *Sink) NewWriter() *Writer {
	return &Writer{dst: s}
}

// Write writes a format string to the Writer's buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString writes s verbatim to the Writer's buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Flush empties the Writer's buffer into the Sink.
func (w *Writer) Flush() error {
	w.dst.mx.Lock()
	defer w.dst.mx.Unlock()
	_, err := io.WriteString(w.dst.w, w.sb.String())
	w.sb.Reset()
	return err
}

// ReadSource reads source code from file or from stdin. If the Options structure holds a path the file is read,
// else all of stdin is consumed.
func ReadSource(opt Options, stdin io.Reader) (string, error) {
	if len(opt.Src) > 0 {
		b, err := os.ReadFile(opt.Src)
		if err != nil {
			return "", errors.Wrapf(err, "could not read %s", opt.Src)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(err, "could not read stdin")
	}
	if len(b) == 0 {
		return "", errors.New("expected input from stdin, got none")
	}
	return string(b), nil
}

// Logf writes a log line to stderr if verbose mode is enabled.
func Logf(opt Options, format string, args ...interface{}) {
	if !opt.Verbose {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "jlc: "+format+"\n", args...)
}
