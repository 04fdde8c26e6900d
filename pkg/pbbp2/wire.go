package pbbp2

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	headerMessageName = "pbbp2.Header"
	frameMessageName  = "pbbp2.Frame"
)

// decoder walks a message body field by field. The first failure is kept
// and turns every later call into a no-op.
type decoder struct {
	message  string
	instance interface{}
	buf      []byte
	err      error
}

// next reads the next tag. It reports false at the end of input or after an
// error.
func (d *decoder) next() (protowire.Number, protowire.Type, bool) {
	if d.err != nil || len(d.buf) == 0 {
		return 0, 0, false
	}

	num, typ, n := protowire.ConsumeTag(d.buf)
	if n < 0 {
		d.fail("", wrapParseError(n))

		return 0, 0, false
	}

	d.buf = d.buf[n:]

	return num, typ, true
}

func (d *decoder) varint(field string, typ protowire.Type) uint64 {
	if !d.expect(field, typ, protowire.VarintType) {
		return 0
	}

	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		d.fail(field, wrapParseError(n))

		return 0
	}

	d.buf = d.buf[n:]

	return v
}

// bytes returns a copy of a length-delimited value. The copy is never nil.
func (d *decoder) bytes(field string, typ protowire.Type) []byte {
	if !d.expect(field, typ, protowire.BytesType) {
		return nil
	}

	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		d.fail(field, wrapParseError(n))

		return nil
	}

	d.buf = d.buf[n:]

	return append([]byte{}, v...)
}

func (d *decoder) string(field string, typ protowire.Type) string {
	return string(d.bytes(field, typ))
}

// skip discards the value of an unknown field.
func (d *decoder) skip(num protowire.Number, typ protowire.Type) {
	n := protowire.ConsumeFieldValue(num, typ, d.buf)
	if n < 0 {
		d.fail("", fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n)))

		return
	}

	d.buf = d.buf[n:]
}

func (d *decoder) expect(field string, got, want protowire.Type) bool {
	if d.err != nil {
		return false
	}

	if got != want {
		d.fail(field, fmt.Errorf("%w: got %d, want %d", ErrWireType, got, want))

		return false
	}

	return true
}

func (d *decoder) fail(field string, err error) {
	d.err = &ProtocolError{
		Message:  d.message,
		Field:    field,
		Instance: d.instance,
		Err:      err,
	}
}

// require records a missing-field error unless present is true.
func (d *decoder) require(field string, present bool) {
	if d.err == nil && !present {
		d.fail(field, ErrMissingRequired)
	}
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)

	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendString(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendBytes(b, v)
}

func wrapParseError(n int) error {
	return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
}

// int32 fields are sign extended to 64 bits on the wire.
func encodeInt32(v int32) uint64 {
	return uint64(int64(v))
}
