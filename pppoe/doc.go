/*
Package pppoe implements the PPPoE (RFC2516) discovery-stage wire
format: Ethernet-encapsulated PADI, PADO, PADR, PADS and PADT frames
and their tag payloads, plus the RFC4638 PPP-Max-Payload tag and the
TR-101 Broadband Forum vendor-specific sub-TLVs carried inside a
Vendor-Specific tag.

Every type in this package is a view over a caller-owned byte buffer.
Parsing never copies the buffer's bytes: headers, frames and tags slice
the caller's buffer. It does make small heap allocations (the returned
view structs, and a map of seen tag types during validation). The one
type that holds data outside the buffer is
Tr101Information, which holds its Circuit-Id and Remote-Id inline in
fixed-size storage rather than on the buffer, since TR-101 information
is typically assembled from several independent sources before being
written out in one shot.

This package performs no I/O: it consumes and produces byte slices. A
raw-socket transport, built on top of this package, lives in
github.com/katalix/pppoe-discovery/transport.

Usage

	# Note we're ignoring errors for brevity

	import "github.com/katalix/pppoe-discovery/pppoe"

	// Build a PADI in a caller-owned buffer.
	buf := make([]byte, 1500)
	fb, _ := pppoe.NewDiscoveryFrame(buf, srcHWAddr, broadcastHWAddr)
	fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeServiceName, []byte("internet")))
	fb.Pppoe().AddEndTag()
	frame, _ := fb.Build()

	// Send frame.Bytes() on a raw socket, then parse what comes back.
	parsed, _ := pppoe.ParseFrame(received)
	if parsed.Pppoe().Code() == pppoe.PPPoECodePADO {
		it := parsed.Pppoe().Tags()
		for {
			tag, ok := it.Next()
			if !ok {
				break
			}
			fmt.Printf("%v: %q\n", tag.Type, tag.Data())
		}
	}
*/
package pppoe
