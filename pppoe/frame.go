package pppoe

// Frame is a validated view composing an Ethernet II header and a
// PPPoE header over one contiguous buffer, split at offset 14. It
// borrows its underlying buffer; it must not outlive it.
type Frame struct {
	buf   []byte
	eth   *EthHeader
	pppoe *Header
}

// ParseFrame validates and constructs a view over buf: 14 bytes of
// Ethernet header followed by a PPPoE header and its tag payload.
// Fails with ErrBufferTooSmall if buf is shorter than
// ethHeaderLength+pppoeHeaderLength, or with any error ParseHeader can
// return.
func ParseFrame(buf []byte) (*Frame, error) {
	if len(buf) < pppoePacketMinLength {
		return nil, &ErrBufferTooSmall{Need: pppoePacketMinLength, Have: len(buf)}
	}
	eth, err := ParseEthHeader(buf)
	if err != nil {
		return nil, err
	}
	pppoeHdr, err := ParseHeader(buf[ethHeaderLength:])
	if err != nil {
		return nil, err
	}
	return &Frame{
		buf:   buf[:ethHeaderLength+pppoeHdr.Len()],
		eth:   eth,
		pppoe: pppoeHdr,
	}, nil
}

// Ethernet returns the frame's Ethernet header view.
func (f *Frame) Ethernet() *EthHeader { return f.eth }

// Pppoe returns the frame's PPPoE header view.
func (f *Frame) Pppoe() *Header { return f.pppoe }

// Bytes returns the composed frame bytes, suitable for writing to a
// raw socket.
func (f *Frame) Bytes() []byte { return f.buf }

// FrameBuilder is a mutable view composing an Ethernet header builder
// and a PPPoE header builder, for assembling an outbound frame.
type FrameBuilder struct {
	buf   []byte
	eth   *EthHeader
	pppoe *HeaderBuilder
}

// NewFrame returns a builder over buf preloaded with an Ethernet header
// (etherType, src, dst) and a zero-payload PPPoE header for code and
// sessionID.
func NewFrame(buf []byte, src, dst [6]byte, etherType uint16, code PPPoECode, sessionID PPPoESessionID) (*FrameBuilder, error) {
	if len(buf) < pppoePacketMinLength {
		return nil, &ErrBufferTooSmall{Need: pppoePacketMinLength, Have: len(buf)}
	}
	eth, err := NewEthHeaderBuilder(buf)
	if err != nil {
		return nil, err
	}
	eth.SetSrcMAC(src)
	eth.SetDstMAC(dst)
	eth.SetEtherType(etherType)

	pppoeBuilder, err := CreateHeader(buf[ethHeaderLength:], code, sessionID)
	if err != nil {
		return nil, err
	}

	return &FrameBuilder{buf: buf, eth: eth, pppoe: pppoeBuilder}, nil
}

// NewPadrFrameFromPado returns a frame builder addressed from src to
// dst, carrying a PADR header derived from pado via
// CreatePadrFromPado. See CreatePadrFromPado for the tag-copying and
// validation rules applied.
func NewPadrFrameFromPado(buf []byte, src, dst [6]byte, pado *Header, expectedServiceName, expectedAcName []byte) (*FrameBuilder, error) {
	if len(buf) < pppoePacketMinLength {
		return nil, &ErrBufferTooSmall{Need: pppoePacketMinLength, Have: len(buf)}
	}
	eth, err := NewEthHeaderBuilder(buf)
	if err != nil {
		return nil, err
	}
	eth.SetSrcMAC(src)
	eth.SetDstMAC(dst)
	eth.SetEtherType(EtherTypeDiscovery)

	pppoeBuilder, err := CreatePadrFromPado(buf[ethHeaderLength:], pado, expectedServiceName, expectedAcName)
	if err != nil {
		return nil, err
	}

	return &FrameBuilder{buf: buf, eth: eth, pppoe: pppoeBuilder}, nil
}

// NewDiscoveryFrame returns a builder over buf preloaded with EtherType
// 0x8863 (PPPoE Discovery) and a zero-length PADI header addressed from
// src to dst.
func NewDiscoveryFrame(buf []byte, src, dst [6]byte) (*FrameBuilder, error) {
	return NewFrame(buf, src, dst, EtherTypeDiscovery, PPPoECodePADI, 0)
}

// Ethernet returns the builder's Ethernet header view.
func (b *FrameBuilder) Ethernet() *EthHeader { return b.eth }

// Pppoe returns the builder's PPPoE header builder.
func (b *FrameBuilder) Pppoe() *HeaderBuilder { return b.pppoe }

// Len returns the frame's current on-wire length.
func (b *FrameBuilder) Len() int { return ethHeaderLength + b.pppoe.Len() }

// Bytes returns the builder's current wire encoding.
func (b *FrameBuilder) Bytes() []byte { return b.buf[:b.Len()] }

// Build re-validates the PPPoE payload and returns a finished Frame
// view.
func (b *FrameBuilder) Build() (*Frame, error) {
	pppoeHdr, err := b.pppoe.Build()
	if err != nil {
		return nil, err
	}
	return &Frame{
		buf:   b.buf[:ethHeaderLength+pppoeHdr.Len()],
		eth:   b.eth,
		pppoe: pppoeHdr,
	}, nil
}
