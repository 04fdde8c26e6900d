package pbbp2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxFrameSize bounds the length prefix accepted by the stream readers.
const MaxFrameSize = 16 << 20

// ByteReader is the reader accepted by the delimited stream functions.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

// MarshalDelimited encodes the frame prefixed with its varint length.
func (f *Frame) MarshalDelimited() []byte {
	size := f.Size()
	b := make([]byte, 0, protowire.SizeVarint(uint64(size))+size)
	b = protowire.AppendVarint(b, uint64(size))

	return f.AppendTo(b)
}

// UnmarshalFrameDelimited decodes a length-prefixed frame from the start of b
// and reports the number of bytes consumed.
func UnmarshalFrameDelimited(b []byte) (*Frame, int, error) {
	body, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, &ProtocolError{Message: frameMessageName, Err: wrapParseError(n)}
	}

	f, err := UnmarshalFrame(body)
	if err != nil {
		return nil, 0, err
	}

	return f, n, nil
}

// WriteFrameDelimited writes a length-prefixed frame to w.
func WriteFrameDelimited(w io.Writer, f *Frame) error {
	if _, err := w.Write(f.MarshalDelimited()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}

	return nil
}

// ReadFrameDelimited reads one length-prefixed frame from r. It returns
// io.EOF when r is exhausted before the first byte of the prefix.
func ReadFrameDelimited(r ByteReader) (*Frame, error) {
	body, err := readDelimited(r, frameMessageName)
	if err != nil {
		return nil, err
	}

	return UnmarshalFrame(body)
}

// ReadHeaderDelimited reads one length-prefixed header from r.
func ReadHeaderDelimited(r ByteReader) (*Header, error) {
	body, err := readDelimited(r, headerMessageName)
	if err != nil {
		return nil, err
	}

	return UnmarshalHeader(body)
}

func readDelimited(r ByteReader, message string) ([]byte, error) {
	size, err := binary.ReadUvarint(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, &ProtocolError{Message: message, Err: fmt.Errorf("%w: length prefix: %w", ErrMalformed, err)}
	}

	if size > MaxFrameSize {
		return nil, &ProtocolError{Message: message, Err: fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)}
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, &ProtocolError{Message: message, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}

	return body, nil
}
