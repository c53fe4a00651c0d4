package pppoe

import "encoding/binary"

// EthHeader is a view over the 14-byte Ethernet II header fronting a
// PPPoE frame. It borrows its underlying buffer; it must not outlive
// it.
type EthHeader struct {
	buf []byte // buf[:ethHeaderLength]
}

// ParseEthHeader constructs a view over the first 14 bytes of buf.
// Fails with ErrBufferTooSmall if buf is shorter than that.
func ParseEthHeader(buf []byte) (*EthHeader, error) {
	if len(buf) < ethHeaderLength {
		return nil, &ErrBufferTooSmall{Need: ethHeaderLength, Have: len(buf)}
	}
	return &EthHeader{buf: buf[:ethHeaderLength]}, nil
}

// NewEthHeaderBuilder constructs a mutable view over the first 14 bytes
// of buf, for use while assembling an outbound frame. The construction
// contract is identical to ParseEthHeader.
func NewEthHeaderBuilder(buf []byte) (*EthHeader, error) {
	return ParseEthHeader(buf)
}

// DstMAC returns the destination hardware address.
func (h *EthHeader) DstMAC() (addr [6]byte) {
	copy(addr[:], h.buf[0:6])
	return addr
}

// SrcMAC returns the source hardware address.
func (h *EthHeader) SrcMAC() (addr [6]byte) {
	copy(addr[:], h.buf[6:12])
	return addr
}

// EtherType returns the EtherType field in host byte order.
func (h *EthHeader) EtherType() uint16 {
	return binary.BigEndian.Uint16(h.buf[12:14])
}

// SetDstMAC writes the destination hardware address.
func (h *EthHeader) SetDstMAC(addr [6]byte) {
	copy(h.buf[0:6], addr[:])
}

// SetSrcMAC writes the source hardware address.
func (h *EthHeader) SetSrcMAC(addr [6]byte) {
	copy(h.buf[6:12], addr[:])
}

// SetEtherType writes the EtherType field.
func (h *EthHeader) SetEtherType(et uint16) {
	binary.BigEndian.PutUint16(h.buf[12:14], et)
}

// Bytes returns the 14-byte wire encoding of the header.
func (h *EthHeader) Bytes() []byte {
	return h.buf
}

// Build re-runs the 14-byte length check and returns h as a finished
// view. It exists to mirror the parse/build symmetry of the PPPoE
// header and frame layers; EthHeader has no further validation to
// perform.
func (h *EthHeader) Build() (*EthHeader, error) {
	if len(h.buf) < ethHeaderLength {
		return nil, &ErrBufferTooSmall{Need: ethHeaderLength, Have: len(h.buf)}
	}
	return h, nil
}
