package pppoe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func mac(b byte) (addr [6]byte) {
	for i := range addr {
		addr[i] = b
	}
	return addr
}

// TestMinimumPADI is scenario S1: a PADI with an empty Service-Name and
// a trailing EOL tag, checked against its exact wire bytes.
func TestMinimumPADI(t *testing.T) {
	buf := make([]byte, 28)
	fb, err := NewDiscoveryFrame(buf, mac(0x02), mac(0xFF))
	if err != nil {
		t.Fatalf("NewDiscoveryFrame: %v", err)
	}
	if err := fb.Pppoe().AddTag(NewOpaqueTag(PPPoETagTypeServiceName, []byte(""))); err != nil {
		t.Fatalf("AddTag(ServiceName): %v", err)
	}
	if err := fb.Pppoe().AddEndTag(); err != nil {
		t.Fatalf("AddEndTag: %v", err)
	}
	frame, err := fb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0x02, 0x02, 0x02, 0x02, 0x02, 0x02,
		0x88, 0x63,
		0x11, 0x09, 0x00, 0x00, 0x00, 0x08,
		0x01, 0x01, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	if diff := cmp.Diff(want, frame.Bytes()); diff != "" {
		t.Errorf("unexpected wire bytes (-want +got):\n%s", diff)
	}
}

// TestMissingServiceNameRejected is scenario S2.
func TestMissingServiceNameRejected(t *testing.T) {
	buf := make([]byte, 20)
	buf[14] = 0x11
	buf[15] = byte(PPPoECodePADI)
	// session ID 0, length 0

	_, err := ParseHeader(buf[ethHeaderLength:])
	if _, ok := err.(*ErrMissingServiceName); !ok {
		t.Fatalf("expected ErrMissingServiceName, got %#v", err)
	}
}

// TestDuplicateACCookie is scenario S3.
func TestDuplicateACCookie(t *testing.T) {
	buf := make([]byte, 64)
	b, err := CreatePADO(buf)
	if err != nil {
		t.Fatalf("CreatePADO: %v", err)
	}
	mustAdd := func(tag Tag) {
		t.Helper()
		if err := b.AddTag(tag); err != nil {
			t.Fatalf("AddTag: %v", err)
		}
	}
	mustAdd(NewOpaqueTag(PPPoETagTypeServiceName, []byte("")))
	mustAdd(NewOpaqueTag(PPPoETagTypeACCookie, []byte("abc")))
	mustAdd(NewOpaqueTag(PPPoETagTypeACCookie, []byte("abc")))

	_, err = ParseHeader(b.Bytes())
	dup, ok := err.(*ErrDuplicateTag)
	if !ok {
		t.Fatalf("expected ErrDuplicateTag, got %#v", err)
	}
	if dup.Type != PPPoETagTypeACCookie {
		t.Errorf("expected duplicate on AC-Cookie, got %v", dup.Type)
	}
}

// TestPayloadLengthOutOfBound is scenario S4.
func TestPayloadLengthOutOfBound(t *testing.T) {
	buf := []byte{0x11, 0x09, 0x00, 0x00, 0x02, 0x00, 0x01, 0x01, 0x00, 0x00}
	_, err := ParseHeader(buf)
	oob, ok := err.(*ErrPayloadLengthOutOfBound)
	if !ok {
		t.Fatalf("expected ErrPayloadLengthOutOfBound, got %#v", err)
	}
	if oob.Actual != len(buf) || oob.Payload != 512 {
		t.Errorf("got Actual=%d Payload=%d, want Actual=%d Payload=512", oob.Actual, oob.Payload, len(buf))
	}
}

// TestPadrFromPado is scenario S5.
func TestPadrFromPado(t *testing.T) {
	padoBuf := make([]byte, 64)
	pb, err := CreatePADO(padoBuf)
	if err != nil {
		t.Fatalf("CreatePADO: %v", err)
	}
	for _, tag := range []Tag{
		NewOpaqueTag(PPPoETagTypeServiceName, []byte("svc")),
		NewOpaqueTag(PPPoETagTypeACName, []byte("ac")),
		NewOpaqueTag(PPPoETagTypeACCookie, []byte("ck")),
	} {
		if err := pb.AddTag(tag); err != nil {
			t.Fatalf("AddTag: %v", err)
		}
	}
	if err := pb.AddEndTag(); err != nil {
		t.Fatalf("AddEndTag: %v", err)
	}
	pado, err := pb.Build()
	if err != nil {
		t.Fatalf("Build PADO: %v", err)
	}

	padrBuf := make([]byte, 64)
	padr, err := CreatePadrFromPado(padrBuf, pado, []byte("svc"), []byte("ac"))
	if err != nil {
		t.Fatalf("CreatePadrFromPado: %v", err)
	}

	built, err := padr.Build()
	if err != nil {
		t.Fatalf("Build PADR: %v", err)
	}

	var gotServiceName, gotACCookie []byte
	sawACName := false
	it := built.Tags()
	for {
		tag, ok := it.Next()
		if !ok {
			break
		}
		switch tag.Type {
		case PPPoETagTypeServiceName:
			gotServiceName = tag.Data()
		case PPPoETagTypeACCookie:
			gotACCookie = tag.Data()
		case PPPoETagTypeACName:
			sawACName = true
		}
	}
	if string(gotServiceName) != "svc" {
		t.Errorf("ServiceName = %q, want %q", gotServiceName, "svc")
	}
	if string(gotACCookie) != "ck" {
		t.Errorf("AcCookie = %q, want %q", gotACCookie, "ck")
	}
	if sawACName {
		t.Errorf("PADR unexpectedly carries an AC-Name tag")
	}
}

// TestTr101RoundTrip is scenario S6.
func TestTr101RoundTrip(t *testing.T) {
	info, err := WithBothIDs("circuit", "remote")
	if err != nil {
		t.Fatalf("WithBothIDs: %v", err)
	}
	info.ActualDataRateUp = 1_000_000

	buf := make([]byte, info.Len())
	n, err := info.Write(buf)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	tag := NewOpaqueTag(PPPoETagTypeVendorSpecific, buf[:n])
	decoded, err := DecodeTr101(tag)
	if err != nil {
		t.Fatalf("DecodeTr101: %v", err)
	}

	if decoded.CircuitID() != "circuit" {
		t.Errorf("CircuitID = %q, want %q", decoded.CircuitID(), "circuit")
	}
	if decoded.RemoteID() != "remote" {
		t.Errorf("RemoteID = %q, want %q", decoded.RemoteID(), "remote")
	}
	if decoded.ActualDataRateUp != 1_000_000 {
		t.Errorf("ActualDataRateUp = %d, want 1000000", decoded.ActualDataRateUp)
	}
}

// TestTr101DoesNotReproduceSourceBug exercises the four interleaving
// delay sub-types that the original implementation's decode table
// cross-wired into the wrong fields, and checks each decodes into its
// own, distinct field.
func TestTr101DoesNotReproduceSourceBug(t *testing.T) {
	info := NewTr101Information()
	info.MaximumInterleavingDelayUp = 1
	info.ActualInterleavingDelayUp = 2
	info.MaximumInterleavingDelayDown = 3
	info.ActualInterleavingDelayDown = 4

	buf := make([]byte, info.Len())
	n, err := info.Write(buf)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	decoded, err := DecodeTr101(NewOpaqueTag(PPPoETagTypeVendorSpecific, buf[:n]))
	if err != nil {
		t.Fatalf("DecodeTr101: %v", err)
	}

	got := []uint32{
		decoded.MaximumInterleavingDelayUp,
		decoded.ActualInterleavingDelayUp,
		decoded.MaximumInterleavingDelayDown,
		decoded.ActualInterleavingDelayDown,
	}
	want := []uint32{1, 2, 3, 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("interleaving delay fields cross-wired (-want +got):\n%s", diff)
	}
}

func TestTagRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		tag  Tag
	}{
		{"ServiceName", NewOpaqueTag(PPPoETagTypeServiceName, []byte("internet"))},
		{"ACName", NewOpaqueTag(PPPoETagTypeACName, []byte("ac1"))},
		{"HostUniq", NewOpaqueTag(PPPoETagTypeHostUniq, []byte{0x01, 0x02, 0x03, 0x04})},
		{"Credits", NewCreditsTag(10, 20)},
		{"SequenceNumber", NewSequenceNumberTag(42)},
		{"CreditScaleFactor", NewCreditScaleFactorTag(7)},
		{"PPPMaxPayload", NewPPPMaxPayloadTag(1492)},
		{"EOL", NewEndOfListTag()},
		{"Unknown", NewOpaqueTag(0x0300, []byte{0xAA})},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := make([]byte, c.tag.wireLen())
			if _, err := c.tag.write(buf); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, rest, err := ParseTag(buf)
			if err != nil {
				t.Fatalf("ParseTag: %v", err)
			}
			if len(rest) != 0 {
				t.Errorf("unexpected remainder: %v", rest)
			}
			if got.Type != c.tag.Type {
				t.Errorf("Type = %v, want %v", got.Type, c.tag.Type)
			}
			if diff := cmp.Diff(c.tag.Data(), got.Data(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTagWithInvalidLength(t *testing.T) {
	buf := []byte{0x01, 0x20, 0x00, 0x03, 0xAA, 0xBB, 0xCC} // PPP-Max-Payload, length 3
	_, _, err := ParseTag(buf)
	if _, ok := err.(*ErrTagWithInvalidLength); !ok {
		t.Fatalf("expected ErrTagWithInvalidLength, got %#v", err)
	}
}

func TestBufferTooSmall(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		_, err := ParseHeader(make([]byte, n))
		if _, ok := err.(*ErrBufferTooSmall); !ok {
			t.Fatalf("len=%d: expected ErrBufferTooSmall, got %#v", n, err)
		}
	}
}

func TestInvalidVersionAndType(t *testing.T) {
	buf := make([]byte, 20)
	buf[0] = 0x21 // version 2, type 1
	if _, err := ParseHeader(buf); err == nil {
		t.Fatal("expected error")
	} else if v, ok := err.(*ErrInvalidVersion); !ok || v.Version != 2 {
		t.Fatalf("expected ErrInvalidVersion{2}, got %#v", err)
	}

	buf[0] = 0x12 // version 1, type 2
	if _, err := ParseHeader(buf); err == nil {
		t.Fatal("expected error")
	} else if tv, ok := err.(*ErrInvalidType); !ok || tv.Type != 2 {
		t.Fatalf("expected ErrInvalidType{2}, got %#v", err)
	}
}

func TestDataBehindEolTag(t *testing.T) {
	buf := make([]byte, 64)
	b, err := CreatePADI(buf)
	if err != nil {
		t.Fatalf("CreatePADI: %v", err)
	}
	if err := b.AddTag(NewOpaqueTag(PPPoETagTypeServiceName, nil)); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := b.AddEndTag(); err != nil {
		t.Fatalf("AddEndTag: %v", err)
	}
	if err := b.AddTag(NewOpaqueTag(PPPoETagTypeACCookie, []byte("x"))); err != nil {
		t.Fatalf("AddTag: %v", err)
	}

	_, err = ParseHeader(b.Bytes())
	if _, ok := err.(*ErrDataBehindEolTag); !ok {
		t.Fatalf("expected ErrDataBehindEolTag, got %#v", err)
	}
}

func TestClearEOLAllowsFurtherAppends(t *testing.T) {
	buf := make([]byte, 64)
	b, err := CreatePADI(buf)
	if err != nil {
		t.Fatalf("CreatePADI: %v", err)
	}
	if err := b.AddTag(NewOpaqueTag(PPPoETagTypeServiceName, nil)); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := b.AddEndTag(); err != nil {
		t.Fatalf("AddEndTag: %v", err)
	}
	b.ClearEOL()
	if err := b.AddTag(NewOpaqueTag(PPPoETagTypeACCookie, []byte("x"))); err != nil {
		t.Fatalf("AddTag after ClearEOL: %v", err)
	}
	if err := b.AddEndTag(); err != nil {
		t.Fatalf("AddEndTag: %v", err)
	}

	hdr, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if hdr.PayloadLen() == 0 {
		t.Fatalf("expected non-empty payload after re-adding tags")
	}
}

func TestParseFrameMinimum(t *testing.T) {
	buf := make([]byte, 28)
	fb, err := NewDiscoveryFrame(buf, mac(0x02), mac(0xFF))
	if err != nil {
		t.Fatalf("NewDiscoveryFrame: %v", err)
	}
	if err := fb.Pppoe().AddTag(NewOpaqueTag(PPPoETagTypeServiceName, []byte(""))); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := fb.Pppoe().AddEndTag(); err != nil {
		t.Fatalf("AddEndTag: %v", err)
	}
	built, err := fb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	parsed, err := ParseFrame(built.Bytes())
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if parsed.Ethernet().EtherType() != EtherTypeDiscovery {
		t.Errorf("EtherType = %#x, want %#x", parsed.Ethernet().EtherType(), EtherTypeDiscovery)
	}
	if parsed.Pppoe().Code() != PPPoECodePADI {
		t.Errorf("Code = %v, want PADI", parsed.Pppoe().Code())
	}
}
