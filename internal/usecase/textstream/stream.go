package textstream

import (
	"errors"
	"io"
	"iter"
)

// DefaultChunkSize is the read buffer used by Fragments.
const DefaultChunkSize = 4096

type options struct {
	chunkSize int
	alive     func() bool
}

// Option configures Fragments.
type Option func(*options)

// WithChunkSize sets the maximum number of bytes consumed per read.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithAlive installs a staleness check consulted before every chunk is
// consumed. Once it returns false the sequence stops without yielding again.
func WithAlive(alive func() bool) Option {
	return func(o *options) {
		o.alive = alive
	}
}

// Fragments lazily decodes r into text fragments. Each read from r is one
// chunk; chunks that complete no character yield nothing. At end of stream
// any held-back bytes are flushed; a malformed tail is yielded together with
// the best-effort fragment as a non-fatal domain.ErrDecode. A read error is
// yielded once and ends the sequence. The sequence is single-use.
func Fragments(r io.Reader, opts ...Option) iter.Seq2[string, error] {
	o := options{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(string, error) bool) {
		dec := NewDecoder()
		buf := make([]byte, o.chunkSize)
		for {
			n, readErr := r.Read(buf)
			if o.alive != nil && !o.alive() {
				return
			}
			if n > 0 {
				if frag := dec.Decode(buf[:n]); frag != "" {
					if !yield(frag, nil) {
						return
					}
				}
			}
			if readErr == nil {
				continue
			}
			if errors.Is(readErr, io.EOF) {
				frag, err := dec.Flush()
				if frag != "" || err != nil {
					yield(frag, err)
				}
				return
			}
			yield("", readErr)
			return
		}
	}
}
