package pbbp2

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Frame is the envelope of every message on the push channel. SeqID, LogID,
// Service and Method are required. A nil optional field is absent and is
// not written on encode.
type Frame struct {
	SeqID           uint64
	LogID           uint64
	Service         int32
	Method          int32
	Headers         []Header
	PayloadEncoding *string
	PayloadType     *string
	Payload         []byte
	LogIDNew        *string
}

// String returns a pointer to s, for setting optional frame fields.
func String(s string) *string {
	return &s
}

// HeaderValue returns the value of the first header named key.
func (f *Frame) HeaderValue(key string) (string, bool) {
	for i := range f.Headers {
		if f.Headers[i].Key == key {
			return f.Headers[i].Value, true
		}
	}

	return "", false
}

// SetHeader replaces the first header named key or appends a new one.
func (f *Frame) SetHeader(key, value string) {
	for i := range f.Headers {
		if f.Headers[i].Key == key {
			f.Headers[i].Value = value

			return
		}
	}

	f.Headers = append(f.Headers, Header{Key: key, Value: value})
}

// Marshal encodes the frame.
func (f *Frame) Marshal() []byte {
	return f.AppendTo(make([]byte, 0, f.Size()))
}

// AppendTo appends the encoded frame to b. Fields are written in ascending
// field number order.
func (f *Frame) AppendTo(b []byte) []byte {
	b = appendVarintField(b, frameSeqIDNumber, f.SeqID)
	b = appendVarintField(b, frameLogIDNumber, f.LogID)
	b = appendVarintField(b, frameServiceNumber, encodeInt32(f.Service))
	b = appendVarintField(b, frameMethodNumber, encodeInt32(f.Method))

	for i := range f.Headers {
		h := &f.Headers[i]
		b = protowire.AppendTag(b, frameHeadersNumber, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(h.Size()))
		b = h.AppendTo(b)
	}

	if f.PayloadEncoding != nil {
		b = appendStringField(b, framePayloadEncodingNumber, *f.PayloadEncoding)
	}

	if f.PayloadType != nil {
		b = appendStringField(b, framePayloadTypeNumber, *f.PayloadType)
	}

	if f.Payload != nil {
		b = appendBytesField(b, framePayloadNumber, f.Payload)
	}

	if f.LogIDNew != nil {
		b = appendStringField(b, frameLogIDNewNumber, *f.LogIDNew)
	}

	return b
}

// Size returns the encoded length of the frame.
func (f *Frame) Size() int {
	n := protowire.SizeTag(frameSeqIDNumber) + protowire.SizeVarint(f.SeqID) +
		protowire.SizeTag(frameLogIDNumber) + protowire.SizeVarint(f.LogID) +
		protowire.SizeTag(frameServiceNumber) + protowire.SizeVarint(encodeInt32(f.Service)) +
		protowire.SizeTag(frameMethodNumber) + protowire.SizeVarint(encodeInt32(f.Method))

	for i := range f.Headers {
		n += protowire.SizeTag(frameHeadersNumber) + protowire.SizeBytes(f.Headers[i].Size())
	}

	if f.PayloadEncoding != nil {
		n += protowire.SizeTag(framePayloadEncodingNumber) + protowire.SizeBytes(len(*f.PayloadEncoding))
	}

	if f.PayloadType != nil {
		n += protowire.SizeTag(framePayloadTypeNumber) + protowire.SizeBytes(len(*f.PayloadType))
	}

	if f.Payload != nil {
		n += protowire.SizeTag(framePayloadNumber) + protowire.SizeBytes(len(f.Payload))
	}

	if f.LogIDNew != nil {
		n += protowire.SizeTag(frameLogIDNewNumber) + protowire.SizeBytes(len(*f.LogIDNew))
	}

	return n
}

// TypeURL returns the type URL of the Frame message.
func (f *Frame) TypeURL(prefix string) string {
	return TypeURL(FrameDescriptor(), prefix)
}

// UnmarshalFrame decodes a frame. Unknown fields are skipped. A repeated
// occurrence of a scalar field overwrites the earlier value.
func UnmarshalFrame(b []byte) (*Frame, error) {
	f := &Frame{}
	d := &decoder{message: frameMessageName, instance: f, buf: b}

	var hasSeqID, hasLogID, hasService, hasMethod bool

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case frameSeqIDNumber:
			f.SeqID = d.varint("SeqID", typ)
			hasSeqID = true
		case frameLogIDNumber:
			f.LogID = d.varint("LogID", typ)
			hasLogID = true
		case frameServiceNumber:
			f.Service = int32(d.varint("service", typ)) //nolint:gosec // int32 wire truncation
			hasService = true
		case frameMethodNumber:
			f.Method = int32(d.varint("method", typ)) //nolint:gosec // int32 wire truncation
			hasMethod = true
		case frameHeadersNumber:
			raw := d.bytes("headers", typ)
			if d.err != nil {
				break
			}

			h, err := UnmarshalHeader(raw)
			if err != nil {
				d.fail("headers", err)

				break
			}

			f.Headers = append(f.Headers, *h)
		case framePayloadEncodingNumber:
			f.PayloadEncoding = String(d.string("payload_encoding", typ))
		case framePayloadTypeNumber:
			f.PayloadType = String(d.string("payload_type", typ))
		case framePayloadNumber:
			f.Payload = d.bytes("payload", typ)
		case frameLogIDNewNumber:
			f.LogIDNew = String(d.string("LogIDNew", typ))
		default:
			d.skip(num, typ)
		}
	}

	d.require("SeqID", hasSeqID)
	d.require("LogID", hasLogID)
	d.require("service", hasService)
	d.require("method", hasMethod)

	if d.err != nil {
		return nil, d.err
	}

	return f, nil
}
