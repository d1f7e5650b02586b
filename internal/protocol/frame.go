// Package protocol implements the text frame codec used on bankd
// connections. A frame is an ordered sequence of string fields; fields are
// separated by a single terminator byte and a frame ends at an empty field,
// i.e. two consecutive terminators. The format has no escaping: a field
// value containing the terminator corrupts framing. That is a documented
// limitation of the wire contract, not something this layer repairs.
package protocol

import (
	"bufio"
	"io"
)

// Terminator separates fields on the wire; two in a row close a frame.
const Terminator byte = '\n'

const (
	stateReadingField = iota
	stateAfterTerminator
)

// Reader decodes frames from a byte stream.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadFrame returns the fields of the next frame. A stream that ends with
// no pending fields returns io.EOF, signaling that the peer is done. A
// stream that ends mid-frame yields the fields terminated so far; an
// unterminated trailing field is discarded.
func (r *Reader) ReadFrame() ([]string, error) {
	var fields []string
	var field []byte
	state := stateReadingField

	for {
		b, err := r.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(fields) > 0 {
				return fields, nil
			}
			return nil, err
		}

		switch state {
		case stateAfterTerminator:
			if b == Terminator {
				return fields, nil
			}
			field = append(field, b)
			state = stateReadingField
		default:
			if b == Terminator {
				fields = append(fields, string(field))
				field = field[:0]
				state = stateAfterTerminator
			} else {
				field = append(field, b)
			}
		}
	}
}

// Writer encodes frames onto a byte stream.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteFrame writes each field followed by one terminator, closes the frame
// with an extra terminator and flushes.
func (w *Writer) WriteFrame(fields []string) error {
	for _, f := range fields {
		if _, err := w.w.WriteString(f); err != nil {
			return err
		}
		if err := w.w.WriteByte(Terminator); err != nil {
			return err
		}
	}
	if err := w.w.WriteByte(Terminator); err != nil {
		return err
	}
	return w.w.Flush()
}
