package pppoe

import "fmt"

// ErrBufferTooSmall is returned when a buffer is too small to hold a
// structure of a given minimum size.
type ErrBufferTooSmall struct {
	Need int
	Have int
}

func (e *ErrBufferTooSmall) Error() string {
	return fmt.Sprintf("pppoe: buffer too small: need %d bytes, have %d", e.Need, e.Have)
}

// ErrBufferTooSmallForTag is returned by a builder's AddTag when the
// remaining buffer cannot hold the tag being appended.
type ErrBufferTooSmallForTag struct {
	Available int
	Requested int
}

func (e *ErrBufferTooSmallForTag) Error() string {
	return fmt.Sprintf("pppoe: buffer too small for tag: %d bytes available, %d requested", e.Available, e.Requested)
}

// ErrInvalidVersion is returned when the PPPoE header version nibble is
// not 1.
type ErrInvalidVersion struct {
	Version byte
}

func (e *ErrInvalidVersion) Error() string {
	return fmt.Sprintf("pppoe: invalid version %#x", e.Version)
}

// ErrInvalidType is returned when the PPPoE header type nibble is not 1.
type ErrInvalidType struct {
	Type byte
}

func (e *ErrInvalidType) Error() string {
	return fmt.Sprintf("pppoe: invalid type %#x", e.Type)
}

// ErrInvalidCode is returned when a PPPoE header's code byte does not
// match any of PADI, PADO, PADR, PADS, PADT.
type ErrInvalidCode struct {
	Code byte
}

func (e *ErrInvalidCode) Error() string {
	return fmt.Sprintf("pppoe: invalid code %#x", e.Code)
}

// ErrUnexpectedCode is returned by a code-specific parse when the
// buffer holds a well-formed header of a different code.
type ErrUnexpectedCode struct {
	Code PPPoECode
}

func (e *ErrUnexpectedCode) Error() string {
	return fmt.Sprintf("pppoe: unexpected code %v", e.Code)
}

// ErrPayloadLengthOutOfBound is returned when a header's declared
// payload length does not fit within the available buffer.
type ErrPayloadLengthOutOfBound struct {
	Actual  int
	Payload int
}

func (e *ErrPayloadLengthOutOfBound) Error() string {
	return fmt.Sprintf("pppoe: payload length %d exceeds available buffer of %d bytes", e.Payload, e.Actual)
}

// ErrIncompleteTag is returned when fewer than 4 bytes remain to decode
// a tag header.
type ErrIncompleteTag struct {
	Len int
}

func (e *ErrIncompleteTag) Error() string {
	return fmt.Sprintf("pppoe: incomplete tag: only %d bytes remaining", e.Len)
}

// ErrIncompleteTagAtPacketEnd is returned by validateTags when a
// trailing 1-3 byte fragment follows the last complete tag.
type ErrIncompleteTagAtPacketEnd struct {
	Total    int
	Leftover int
}

func (e *ErrIncompleteTagAtPacketEnd) Error() string {
	return fmt.Sprintf("pppoe: incomplete tag at packet end: %d bytes leftover of %d total", e.Leftover, e.Total)
}

// ErrTagLengthOutOfBound is returned when a tag's declared length does
// not fit the bytes remaining in the payload.
type ErrTagLengthOutOfBound struct {
	Expected  int
	Remaining int
}

func (e *ErrTagLengthOutOfBound) Error() string {
	return fmt.Sprintf("pppoe: tag length %d exceeds %d bytes remaining", e.Expected, e.Remaining)
}

// ErrTagWithInvalidLength is returned when a fixed-width tag type
// (End-Of-List, Credits, Sequence-Number, Credit-Scale-Factor,
// PPP-Max-Payload) is
// decoded with a length other than its mandated width.
type ErrTagWithInvalidLength struct {
	Type   PPPoETagType
	Length int
}

func (e *ErrTagWithInvalidLength) Error() string {
	return fmt.Sprintf("pppoe: tag %v has invalid length %d", e.Type, e.Length)
}

// ErrDataBehindEolTag is returned when bytes follow an End-Of-List tag
// within a payload.
type ErrDataBehindEolTag struct{}

func (e *ErrDataBehindEolTag) Error() string {
	return "pppoe: data present behind End-Of-List tag"
}

// ErrDuplicateTag is returned when a tag type constrained to appear at
// most once is seen twice in the same payload.
type ErrDuplicateTag struct {
	Type PPPoETagType
}

func (e *ErrDuplicateTag) Error() string {
	return fmt.Sprintf("pppoe: duplicate tag %v", e.Type)
}

// ErrMissingServiceName is returned when a frame's payload has no
// Service-Name tag.
type ErrMissingServiceName struct{}

func (e *ErrMissingServiceName) Error() string {
	return "pppoe: missing Service-Name tag"
}

// ErrMissingAcName is returned by CreatePadrFromPado when the
// source PADO carries no AC-Name tag.
type ErrMissingAcName struct{}

func (e *ErrMissingAcName) Error() string {
	return "pppoe: missing AC-Name tag"
}

// ErrServiceNameMismatch is returned by CreatePadrFromPado when the
// caller's expected service name does not match the PADO's.
type ErrServiceNameMismatch struct{}

func (e *ErrServiceNameMismatch) Error() string {
	return "pppoe: Service-Name tag does not match expected value"
}

// ErrAcNameMismatch is returned by CreatePadrFromPado when the
// caller's expected AC name does not match the PADO's.
type ErrAcNameMismatch struct{}

func (e *ErrAcNameMismatch) Error() string {
	return "pppoe: AC-Name tag does not match expected value"
}

// ErrInvalidSubTlvLength is returned when a TR-101 sub-TLV's length
// falls outside the bounds mandated for its type.
type ErrInvalidSubTlvLength struct {
	Type   byte
	Min    int
	Max    int
	Actual int
}

func (e *ErrInvalidSubTlvLength) Error() string {
	return fmt.Sprintf("pppoe: tr101 sub-tlv %#x has invalid length %d (want %d..%d)", e.Type, e.Actual, e.Min, e.Max)
}

// ErrSubTlvLengthOutOfBound is returned when a TR-101 sub-TLV's
// declared length does not fit the bytes remaining.
type ErrSubTlvLengthOutOfBound struct {
	Remaining int
	Requested int
}

func (e *ErrSubTlvLengthOutOfBound) Error() string {
	return fmt.Sprintf("pppoe: tr101 sub-tlv length %d exceeds %d bytes remaining", e.Requested, e.Remaining)
}

// ErrInvalidVendorId is returned when a Vendor-Specific tag's leading
// 4 bytes do not equal the Broadband Forum vendor ID.
type ErrInvalidVendorId struct {
	VendorID uint32
}

func (e *ErrInvalidVendorId) Error() string {
	return fmt.Sprintf("pppoe: invalid tr101 vendor id %#08x", e.VendorID)
}

// ErrTagIsNotVendorSpecific is returned when TR-101 decode is
// attempted on a tag whose type is not Vendor-Specific.
type ErrTagIsNotVendorSpecific struct {
	Type PPPoETagType
}

func (e *ErrTagIsNotVendorSpecific) Error() string {
	return fmt.Sprintf("pppoe: tag %v is not Vendor-Specific", e.Type)
}
