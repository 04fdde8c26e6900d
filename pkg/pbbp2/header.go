package pbbp2

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Header is a key/value pair carried by a Frame. Both fields are required.
type Header struct {
	Key   string
	Value string
}

// Marshal encodes the header.
func (h *Header) Marshal() []byte {
	return h.AppendTo(make([]byte, 0, h.Size()))
}

// AppendTo appends the encoded header to b.
func (h *Header) AppendTo(b []byte) []byte {
	b = appendStringField(b, headerKeyNumber, h.Key)
	b = appendStringField(b, headerValueNumber, h.Value)

	return b
}

// Size returns the encoded length of the header.
func (h *Header) Size() int {
	return protowire.SizeTag(headerKeyNumber) + protowire.SizeBytes(len(h.Key)) +
		protowire.SizeTag(headerValueNumber) + protowire.SizeBytes(len(h.Value))
}

// MarshalDelimited encodes the header prefixed with its length.
func (h *Header) MarshalDelimited() []byte {
	b := protowire.AppendVarint(make([]byte, 0, h.Size()+protowire.SizeVarint(uint64(h.Size()))), uint64(h.Size()))

	return h.AppendTo(b)
}

// TypeURL returns the type URL of the Header message.
func (h *Header) TypeURL(prefix string) string {
	return TypeURL(HeaderDescriptor(), prefix)
}

// UnmarshalHeader decodes a header.
func UnmarshalHeader(b []byte) (*Header, error) {
	h := &Header{}
	d := &decoder{message: headerMessageName, instance: h, buf: b}

	var hasKey, hasValue bool

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case headerKeyNumber:
			h.Key = d.string("key", typ)
			hasKey = true
		case headerValueNumber:
			h.Value = d.string("value", typ)
			hasValue = true
		default:
			d.skip(num, typ)
		}
	}

	d.require("key", hasKey)
	d.require("value", hasValue)

	if d.err != nil {
		return nil, d.err
	}

	return h, nil
}

// UnmarshalHeaderDelimited decodes a length-prefixed header and reports the
// number of bytes consumed.
func UnmarshalHeaderDelimited(b []byte) (*Header, int, error) {
	body, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, &ProtocolError{Message: headerMessageName, Err: wrapParseError(n)}
	}

	h, err := UnmarshalHeader(body)
	if err != nil {
		return nil, 0, err
	}

	return h, n, nil
}
