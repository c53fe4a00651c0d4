package pppoe

import (
	"bytes"
	"encoding/binary"
)

// Header is a validated view over a PPPoE discovery header and its tag
// payload. It borrows its underlying buffer; it must not outlive it.
//
// Once a buffer has been accepted by ParseHeader, every read through Header
// is infallible: the payload has already been walked and found
// well-formed.
type Header struct {
	buf []byte // buf[:pppoeHeaderLength+payloadLen], validated
}

// VerType returns the raw version/type byte.
func (h *Header) VerType() byte { return h.buf[0] }

// Code returns the packet's discovery code.
func (h *Header) Code() PPPoECode { return PPPoECode(h.buf[1]) }

// SessionID returns the packet's session ID.
func (h *Header) SessionID() PPPoESessionID {
	return PPPoESessionID(binary.BigEndian.Uint16(h.buf[2:4]))
}

// PayloadLen returns the declared tag payload length.
func (h *Header) PayloadLen() int {
	return int(binary.BigEndian.Uint16(h.buf[4:6]))
}

// Payload returns the raw tag payload bytes.
func (h *Header) Payload() []byte {
	return h.buf[pppoeHeaderLength : pppoeHeaderLength+h.PayloadLen()]
}

// Tags returns an iterator over the header's tag payload. Because the
// payload was validated at Parse time, iteration cannot fail.
func (h *Header) Tags() *TagIterator {
	return NewTagIterator(h.Payload())
}

// Bytes returns the header's wire encoding, header plus payload.
func (h *Header) Bytes() []byte {
	return h.buf
}

// Len returns the total on-wire length of the header plus payload.
func (h *Header) Len() int {
	return len(h.buf)
}

// ParseHeader validates and constructs a view over buf.
//
// Fails with ErrBufferTooSmall if buf is shorter than 6 bytes,
// ErrInvalidVersion/ErrInvalidType if the version/type nibbles are
// wrong, ErrInvalidCode if the code byte is not one of the five
// discovery codes, ErrPayloadLengthOutOfBound if the declared payload
// does not fit in buf, ErrMissingServiceName if the payload lacks a
// Service-Name tag, or any of the tag-layer errors from validateTags.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < pppoeHeaderLength {
		return nil, &ErrBufferTooSmall{Need: pppoeHeaderLength, Have: len(buf)}
	}

	verType := buf[0]
	if version := verType >> 4; version != pppoeVersion {
		return nil, &ErrInvalidVersion{Version: version}
	}
	if typ := verType & 0x0F; typ != pppoeType {
		return nil, &ErrInvalidType{Type: typ}
	}

	switch PPPoECode(buf[1]) {
	case PPPoECodePADI, PPPoECodePADO, PPPoECodePADR, PPPoECodePADS, PPPoECodePADT:
	default:
		return nil, &ErrInvalidCode{Code: buf[1]}
	}

	length := int(binary.BigEndian.Uint16(buf[4:6]))
	if pppoeHeaderLength+length > len(buf) {
		return nil, &ErrPayloadLengthOutOfBound{Actual: len(buf), Payload: length}
	}
	if length == 0 {
		return nil, &ErrMissingServiceName{}
	}

	payload := buf[pppoeHeaderLength : pppoeHeaderLength+length]
	if err := validateTags(payload); err != nil {
		return nil, err
	}

	return &Header{buf: buf[:pppoeHeaderLength+length]}, nil
}

// ParseHeaderWithCode is equivalent to ParseHeader, additionally
// failing with ErrUnexpectedCode if the parsed header's code does not
// equal expected.
func ParseHeaderWithCode(buf []byte, expected PPPoECode) (*Header, error) {
	h, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Code() != expected {
		return nil, &ErrUnexpectedCode{Code: h.Code()}
	}
	return h, nil
}

// ParsePADI parses buf as a PADI header.
func ParsePADI(buf []byte) (*Header, error) { return ParseHeaderWithCode(buf, PPPoECodePADI) }

// ParsePADO parses buf as a PADO header.
func ParsePADO(buf []byte) (*Header, error) { return ParseHeaderWithCode(buf, PPPoECodePADO) }

// ParsePADR parses buf as a PADR header.
func ParsePADR(buf []byte) (*Header, error) { return ParseHeaderWithCode(buf, PPPoECodePADR) }

// ParsePADS parses buf as a PADS header.
func ParsePADS(buf []byte) (*Header, error) { return ParseHeaderWithCode(buf, PPPoECodePADS) }

// ParsePADT parses buf as a PADT header.
func ParsePADT(buf []byte) (*Header, error) { return ParseHeaderWithCode(buf, PPPoECodePADT) }

// validateTags walks payload left to right enforcing the structural
// invariants of a PPPoE tag stream: duplicate detection for
// at-most-once tags, length bounds, EOL terminality, and the
// overarching requirement that a Service-Name tag be present
// somewhere in the stream.
func validateTags(payload []byte) error {
	seen := make(map[PPPoETagType]bool, len(mustOccurAtMostOnce))
	sawServiceName := false
	remaining := payload

	for len(remaining) > 0 {
		if len(remaining) < pppoeTagMinLength {
			return &ErrIncompleteTagAtPacketEnd{Total: len(payload), Leftover: len(remaining)}
		}

		typ := PPPoETagType(binary.BigEndian.Uint16(remaining[0:2]))
		length := int(binary.BigEndian.Uint16(remaining[2:4]))
		if length+pppoeTagMinLength > len(remaining) {
			return &ErrTagLengthOutOfBound{Expected: length, Remaining: len(remaining) - pppoeTagMinLength}
		}
		if want, ok := fixedTagLength(typ); ok && length != want {
			return &ErrTagWithInvalidLength{Type: typ, Length: length}
		}

		if mustOccurAtMostOnce[typ] {
			if seen[typ] {
				return &ErrDuplicateTag{Type: typ}
			}
			seen[typ] = true
		}
		if typ == PPPoETagTypeServiceName {
			sawServiceName = true
		}

		if typ == PPPoETagTypeEOL {
			if len(remaining) != pppoeTagMinLength {
				return &ErrDataBehindEolTag{}
			}
			remaining = nil
			break
		}

		remaining = remaining[pppoeTagMinLength+length:]
	}

	if !sawServiceName {
		return &ErrMissingServiceName{}
	}
	return nil
}

// HeaderBuilder is a mutable view over a PPPoE header under
// construction. Only HeaderBuilder.Build, which re-runs the full
// validator, may hand back a Header suitable for transmission; this
// prevents a malformed outbound frame from being silently accepted.
type HeaderBuilder struct {
	buf        []byte
	payloadLen int
}

// CreateHeader writes a zero-payload PPPoE header for code and
// sessionID at the front of buf and returns a builder over it.
func CreateHeader(buf []byte, code PPPoECode, sessionID PPPoESessionID) (*HeaderBuilder, error) {
	if len(buf) < pppoeHeaderLength {
		return nil, &ErrBufferTooSmall{Need: pppoeHeaderLength, Have: len(buf)}
	}
	buf[0] = pppoeVersion<<4 | pppoeType
	buf[1] = byte(code)
	binary.BigEndian.PutUint16(buf[2:4], uint16(sessionID))
	binary.BigEndian.PutUint16(buf[4:6], 0)
	return &HeaderBuilder{buf: buf}, nil
}

// CreatePADI returns a builder for a PADI header (session ID 0).
func CreatePADI(buf []byte) (*HeaderBuilder, error) {
	return CreateHeader(buf, PPPoECodePADI, 0)
}

// CreatePADO returns a builder for a PADO header (session ID 0).
func CreatePADO(buf []byte) (*HeaderBuilder, error) {
	return CreateHeader(buf, PPPoECodePADO, 0)
}

// CreatePADR returns a builder for a PADR header (session ID 0).
func CreatePADR(buf []byte) (*HeaderBuilder, error) {
	return CreateHeader(buf, PPPoECodePADR, 0)
}

// CreatePADS returns a builder for a PADS header carrying sessionID.
// Pass sessionID 0 to build a failure-path PADS.
func CreatePADS(buf []byte, sessionID PPPoESessionID) (*HeaderBuilder, error) {
	return CreateHeader(buf, PPPoECodePADS, sessionID)
}

// CreatePADT returns a builder for a PADT header terminating sessionID.
func CreatePADT(buf []byte, sessionID PPPoESessionID) (*HeaderBuilder, error) {
	return CreateHeader(buf, PPPoECodePADT, sessionID)
}

// Code returns the builder's discovery code.
func (b *HeaderBuilder) Code() PPPoECode { return PPPoECode(b.buf[1]) }

// SessionID returns the builder's session ID.
func (b *HeaderBuilder) SessionID() PPPoESessionID {
	return PPPoESessionID(binary.BigEndian.Uint16(b.buf[2:4]))
}

// Len returns the header's current on-wire length, header plus
// whatever tags have been appended so far.
func (b *HeaderBuilder) Len() int { return pppoeHeaderLength + b.payloadLen }

// Bytes returns the builder's current wire encoding.
func (b *HeaderBuilder) Bytes() []byte { return b.buf[:b.Len()] }

// setPayloadLen writes payloadLen both into the builder's bookkeeping
// and into the on-wire length field, keeping the two in lock-step.
func (b *HeaderBuilder) setPayloadLen(n int) {
	b.payloadLen = n
	binary.BigEndian.PutUint16(b.buf[4:6], uint16(n))
}

// AddTag appends tag after the current payload end and updates the
// header's length field. Fails with ErrBufferTooSmallForTag if the
// remaining buffer cannot hold the tag's type, length and value.
func (b *HeaderBuilder) AddTag(tag Tag) error {
	need := tag.wireLen()
	avail := len(b.buf) - b.Len()
	if avail < need {
		return &ErrBufferTooSmallForTag{Available: avail, Requested: need}
	}
	dst := b.buf[b.Len() : b.Len()+need]
	if _, err := tag.write(dst); err != nil {
		return err
	}
	b.setPayloadLen(b.payloadLen + need)
	return nil
}

// AddVendorTag reserves the 4-byte Vendor-Specific tag header at the
// current payload end, then invokes fn with the remainder of the
// buffer so it can write "vendor-id || sub-TLVs" directly in place.
// fn must return the number of bytes it wrote.
func (b *HeaderBuilder) AddVendorTag(fn func(tail []byte) (int, error)) error {
	headerOff := b.Len()
	if len(b.buf)-headerOff < pppoeTagMinLength {
		return &ErrBufferTooSmallForTag{Available: len(b.buf) - headerOff, Requested: pppoeTagMinLength}
	}
	tail := b.buf[headerOff+pppoeTagMinLength:]
	n, err := fn(tail)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b.buf[headerOff:headerOff+2], uint16(PPPoETagTypeVendorSpecific))
	binary.BigEndian.PutUint16(b.buf[headerOff+2:headerOff+4], uint16(n))
	b.setPayloadLen(b.payloadLen + pppoeTagMinLength + n)
	return nil
}

// AddEndTag appends an End-Of-List tag.
func (b *HeaderBuilder) AddEndTag() error {
	return b.AddTag(NewEndOfListTag())
}

// ClearPayload resets the payload length to 0. Buffer content beyond
// the header is left untouched but is no longer considered part of the
// frame.
func (b *HeaderBuilder) ClearPayload() {
	b.setPayloadLen(0)
}

// ClearEOL removes a trailing End-Of-List tag if present, shrinking the
// payload length by 4 bytes so further tags may be appended. It is a
// no-op if the payload does not currently end in an EOL tag.
func (b *HeaderBuilder) ClearEOL() {
	if b.payloadLen < pppoeTagMinLength {
		return
	}
	tail := b.buf[pppoeHeaderLength+b.payloadLen-pppoeTagMinLength : pppoeHeaderLength+b.payloadLen]
	if PPPoETagType(binary.BigEndian.Uint16(tail[0:2])) == PPPoETagTypeEOL && binary.BigEndian.Uint16(tail[2:4]) == 0 {
		b.setPayloadLen(b.payloadLen - pppoeTagMinLength)
	}
}

// Build re-runs the full header validator over the builder's current
// bytes and returns the resulting Header.
func (b *HeaderBuilder) Build() (*Header, error) {
	return ParseHeader(b.buf[:b.Len()])
}

// CreatePadrFromPado derives a PADR builder from a received PADO view.
//
// Service-Name, Relay-Session-ID and AC-Cookie tags are copied
// verbatim from pado; AC-Name is not carried over. If
// expectedServiceName is non-nil, a Service-Name tag not matching it
// yields ErrServiceNameMismatch; likewise expectedAcName against
// AC-Name yields ErrAcNameMismatch. A PADO lacking Service-Name yields
// ErrMissingServiceName; lacking AC-Name yields ErrMissingAcName.
func CreatePadrFromPado(buf []byte, pado *Header, expectedServiceName, expectedAcName []byte) (*HeaderBuilder, error) {
	b, err := CreatePADR(buf)
	if err != nil {
		return nil, err
	}

	var sawServiceName, sawAcName bool
	it := pado.Tags()
	for {
		tag, ok := it.Next()
		if !ok {
			break
		}
		switch tag.Type {
		case PPPoETagTypeServiceName:
			sawServiceName = true
			if expectedServiceName != nil && !bytes.Equal(tag.Data(), expectedServiceName) {
				return nil, &ErrServiceNameMismatch{}
			}
			if err := b.AddTag(NewOpaqueTag(PPPoETagTypeServiceName, tag.Data())); err != nil {
				return nil, err
			}
		case PPPoETagTypeACName:
			sawAcName = true
			if expectedAcName != nil && !bytes.Equal(tag.Data(), expectedAcName) {
				return nil, &ErrAcNameMismatch{}
			}
		case PPPoETagTypeRelaySessionID, PPPoETagTypeACCookie:
			if err := b.AddTag(NewOpaqueTag(tag.Type, tag.Data())); err != nil {
				return nil, err
			}
		}
	}

	if !sawServiceName {
		return nil, &ErrMissingServiceName{}
	}
	if !sawAcName {
		return nil, &ErrMissingAcName{}
	}
	return b, nil
}
