package pppoe

import "encoding/binary"

// Tag is a decoded PPPoE TLV. Opaque tags carry their value as a slice
// borrowed from the buffer they were parsed out of; fixed-width numeric
// tags also carry a parsed value so callers do not have to re-decode
// the bytes themselves.
//
// A Tag returned by ParseTag or a TagIterator must not outlive the
// buffer it was parsed from.
type Tag struct {
	Type PPPoETagType
	data []byte
	num  uint32 // decoded value for fixed-width numeric tags
}

// Data returns the tag's value bytes. For fixed-width numeric tags this
// is the raw big-endian encoding; use the typed accessor instead.
func (t Tag) Data() []byte {
	return t.data
}

// Credits returns the (up, down) values of a Credits tag. ok is false
// if t is not a Credits tag.
func (t Tag) Credits() (up, down uint16, ok bool) {
	if t.Type != PPPoETagTypeCredits {
		return 0, 0, false
	}
	return uint16(t.num >> 16), uint16(t.num), true
}

// SequenceNumber returns the value of a Sequence-Number tag. ok is
// false if t is not a Sequence-Number tag.
func (t Tag) SequenceNumber() (value uint16, ok bool) {
	if t.Type != PPPoETagTypeSequenceNumber {
		return 0, false
	}
	return uint16(t.num), true
}

// CreditScaleFactor returns the value of a Credit-Scale-Factor tag. ok
// is false if t is not a Credit-Scale-Factor tag.
func (t Tag) CreditScaleFactor() (value uint16, ok bool) {
	if t.Type != PPPoETagTypeCreditScaleFactor {
		return 0, false
	}
	return uint16(t.num), true
}

// PPPMaxPayload returns the MTU value of a PPP-Max-Payload tag. ok is
// false if t is not a PPP-Max-Payload tag.
func (t Tag) PPPMaxPayload() (mtu uint16, ok bool) {
	if t.Type != PPPoETagTypePPPMaxPayload {
		return 0, false
	}
	return uint16(t.num), true
}

// NewOpaqueTag builds a Tag carrying opaque bytes. It does not validate
// length constraints for types with a fixed width; use the dedicated
// constructors (NewCreditsTag etc.) for those.
func NewOpaqueTag(typ PPPoETagType, value []byte) Tag {
	return Tag{Type: typ, data: value}
}

// NewCreditsTag builds a Credits tag from its (up, down) values.
func NewCreditsTag(up, down uint16) Tag {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:2], up)
	binary.BigEndian.PutUint16(buf[2:4], down)
	return Tag{Type: PPPoETagTypeCredits, data: buf, num: uint32(up)<<16 | uint32(down)}
}

// NewSequenceNumberTag builds a Sequence-Number tag.
func NewSequenceNumberTag(value uint16) Tag {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, value)
	return Tag{Type: PPPoETagTypeSequenceNumber, data: buf, num: uint32(value)}
}

// NewCreditScaleFactorTag builds a Credit-Scale-Factor tag.
func NewCreditScaleFactorTag(value uint16) Tag {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, value)
	return Tag{Type: PPPoETagTypeCreditScaleFactor, data: buf, num: uint32(value)}
}

// NewPPPMaxPayloadTag builds a PPP-Max-Payload tag carrying mtu.
func NewPPPMaxPayloadTag(mtu uint16) Tag {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, mtu)
	return Tag{Type: PPPoETagTypePPPMaxPayload, data: buf, num: uint32(mtu)}
}

// NewEndOfListTag builds the End-Of-List sentinel tag.
func NewEndOfListTag() Tag {
	return Tag{Type: PPPoETagTypeEOL}
}

// wireLen returns the number of bytes this tag occupies on the wire,
// including its 4-byte type/length header.
func (t Tag) wireLen() int {
	return pppoeTagMinLength + len(t.data)
}

// write encodes t into buf, returning the number of bytes written.
// Fails with ErrBufferTooSmallForTag if buf cannot hold the full tag.
func (t Tag) write(buf []byte) (int, error) {
	need := t.wireLen()
	if len(buf) < need {
		return 0, &ErrBufferTooSmallForTag{Available: len(buf), Requested: need}
	}
	binary.BigEndian.PutUint16(buf[0:2], uint16(t.Type))
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(t.data)))
	copy(buf[4:need], t.data)
	return need, nil
}

// ParseTag decodes a single tag from the front of buf, returning the
// tag and the remainder of buf following it.
//
// buf shorter than 4 bytes yields ErrIncompleteTag. A declared length
// that does not fit in buf yields ErrTagLengthOutOfBound. A fixed-width
// numeric type decoded with the wrong length yields
// ErrTagWithInvalidLength.
func ParseTag(buf []byte) (tag Tag, rest []byte, err error) {
	if len(buf) < pppoeTagMinLength {
		return Tag{}, nil, &ErrIncompleteTag{Len: len(buf)}
	}
	typ := PPPoETagType(binary.BigEndian.Uint16(buf[0:2]))
	length := int(binary.BigEndian.Uint16(buf[2:4]))
	if length+pppoeTagMinLength > len(buf) {
		return Tag{}, nil, &ErrTagLengthOutOfBound{Expected: length, Remaining: len(buf) - pppoeTagMinLength}
	}
	value := buf[pppoeTagMinLength : pppoeTagMinLength+length]
	rest = buf[pppoeTagMinLength+length:]

	if want, ok := fixedTagLength(typ); ok && length != want {
		return Tag{}, nil, &ErrTagWithInvalidLength{Type: typ, Length: length}
	}

	t := Tag{Type: typ, data: value}
	switch typ {
	case PPPoETagTypeCredits:
		t.num = uint32(binary.BigEndian.Uint16(value[0:2]))<<16 | uint32(binary.BigEndian.Uint16(value[2:4]))
	case PPPoETagTypeSequenceNumber, PPPoETagTypeCreditScaleFactor, PPPoETagTypePPPMaxPayload:
		t.num = uint32(binary.BigEndian.Uint16(value))
	}
	return t, rest, nil
}

// TagIterator yields the tags of an already-validated PPPoE payload in
// order. Because the payload has already been accepted by
// validateTags, iteration cannot fail: any error from ParseTag here
// would indicate a bug in validateTags, not a malformed buffer.
type TagIterator struct {
	remaining []byte
	done      bool
}

// NewTagIterator returns an iterator over payload. payload must already
// have been validated by ParseHeader or equivalent.
func NewTagIterator(payload []byte) *TagIterator {
	return &TagIterator{remaining: payload}
}

// Next returns the next tag in the payload, or ok=false once the
// payload is exhausted or an End-Of-List tag has been yielded.
func (it *TagIterator) Next() (tag Tag, ok bool) {
	if it.done || len(it.remaining) == 0 {
		return Tag{}, false
	}
	t, rest, err := ParseTag(it.remaining)
	if err != nil {
		// validateTags guarantees this cannot happen for a payload
		// that reached this point.
		panic("pppoe: tag iteration over invalidated payload: " + err.Error())
	}
	it.remaining = rest
	if t.Type == PPPoETagTypeEOL {
		it.done = true
	}
	return t, true
}
