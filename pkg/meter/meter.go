// Package meter wraps a byte source with read-progress accounting.
//
// A Reader delegates every read to an underlying source and reports the
// number of bytes actually delivered to a Sink before returning them.
// Only delivered bytes are counted: internal buffering never inflates
// the total, so a source read to completion reports exactly its size.
package meter

import (
	"bufio"
	"io"
	"iter"
)

// Sink receives byte-count deltas as reads complete.
// *progressbar.ProgressBar satisfies this interface.
type Sink interface {
	Add64(n int64) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(n int64) error

// Add64 implements Sink.
func (f SinkFunc) Add64(n int64) error { return f(n) }

// Discard is a Sink that drops all deltas.
var Discard Sink = SinkFunc(func(int64) error { return nil })

// Reader is a transparent metering wrapper around an io.Reader.
// It exposes the operations the downstream parser needs (byte reads,
// line reads, line iteration) and forwards each one to the source
// unmodified; failures propagate unchanged.
type Reader struct {
	src  io.Reader
	sink Sink

	// br is installed on the first line-oriented read. Once present,
	// byte reads drain it first so no buffered byte is lost or
	// double-counted.
	br *bufio.Reader
}

// NewReader wraps src, reporting consumption to sink.
// A nil sink discards deltas.
func NewReader(src io.Reader, sink Sink) *Reader {
	if sink == nil {
		sink = Discard
	}
	return &Reader{src: src, sink: sink}
}

// Read implements io.Reader. The delta is reported before the data is
// returned, even when the read also yields an error.
func (r *Reader) Read(p []byte) (int, error) {
	var (
		n   int
		err error
	)
	if r.br != nil {
		n, err = r.br.Read(p)
	} else {
		n, err = r.src.Read(p)
	}
	if n > 0 {
		_ = r.sink.Add64(int64(n))
	}
	return n, err
}

// ReadLine returns the next line including its terminator, reporting
// its byte length to the sink. At EOF a final unterminated line is
// returned with io.EOF.
func (r *Reader) ReadLine() ([]byte, error) {
	line, err := r.buffered().ReadBytes('\n')
	if len(line) > 0 {
		_ = r.sink.Add64(int64(len(line)))
	}
	return line, err
}

// Lines returns a lazy sequence of lines. Each line is reported to the
// sink before it is yielded. Iteration stops at EOF; any other source
// failure is yielded alongside a nil line.
func (r *Reader) Lines() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			line, err := r.ReadLine()
			if len(line) > 0 {
				if !yield(line, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

func (r *Reader) buffered() *bufio.Reader {
	if r.br == nil {
		r.br = bufio.NewReader(r.src)
	}
	return r.br
}
