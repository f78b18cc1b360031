// Package textstream turns a chunked byte stream into UTF-8 text fragments.
//
// Network chunk boundaries do not respect character boundaries, so a
// multi-byte character may arrive split across two reads. Decoder keeps the
// incomplete tail of one chunk and prepends it to the next, so every fragment
// it returns is valid text.
package textstream

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"gift-advisor/internal/domain"
)

// Decoder is a stateful UTF-8 decoder. It is not safe for concurrent use and
// cannot be restarted once flushed; decode a new stream with a new Decoder.
type Decoder struct {
	t       transform.Transformer
	pending []byte // incomplete trailing sequence carried to the next chunk
	flushed bool
}

// NewDecoder returns a Decoder ready for the first chunk.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode consumes one chunk and returns the text it completes. Bytes that
// start a character finished by a later chunk are held back. Ill-formed
// sequences in the middle of the stream are replaced with U+FFFD.
func (d *Decoder) Decode(chunk []byte) string {
	if d.flushed || (len(chunk) == 0 && len(d.pending) == 0) {
		return ""
	}
	return d.transform(chunk, false)
}

// Flush ends the stream and returns any text still held back. An unterminated
// trailing sequence is emitted as U+FFFD and reported as domain.ErrDecode;
// the returned fragment is still usable. Flush is idempotent.
func (d *Decoder) Flush() (string, error) {
	if d.flushed {
		return "", nil
	}
	held := len(d.pending)
	out := d.transform(nil, true)
	d.flushed = true
	if held > 0 {
		return out, domain.NewDomainError("Decoder.Flush", domain.ErrDecode,
			fmt.Sprintf("%d trailing byte(s) of an incomplete character", held))
	}
	return out, nil
}

// Pending reports how many bytes are held back awaiting the next chunk.
func (d *Decoder) Pending() int { return len(d.pending) }

func (d *Decoder) transform(chunk []byte, atEOF bool) string {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)

	// Each ill-formed byte may expand to the 3-byte replacement character.
	dst := make([]byte, len(src)*3+utf8.UTFMax)
	nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
	if err != nil && !errors.Is(err, transform.ErrShortSrc) {
		// The UTF-8 transformer only reports short buffers; dst is sized so
		// that ErrShortDst cannot happen. Keep everything for the next call.
		d.pending = src
		return ""
	}
	d.pending = append(d.pending[:0], src[nSrc:]...)
	if atEOF {
		d.pending = nil
		d.t.Reset()
	}
	return string(dst[:nDst])
}
