package client

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/katalix/pppoe-discovery/concentrator"
)

// fakeWire is an in-memory loopback connecting a client's fakeConn to
// an in-process concentrator.Concentrator, so Dial can be exercised
// without a real network interface.
type fakeWire struct {
	toAC     chan []byte
	toClient chan []byte
}

func newFakeWire() *fakeWire {
	return &fakeWire{
		toAC:     make(chan []byte, 8),
		toClient: make(chan []byte, 8),
	}
}

// acSender implements concentrator.Sender, writing the AC's responses
// onto the wire toward the client.
type acSender struct{ wire *fakeWire }

func (s *acSender) Send(b []byte) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	s.wire.toClient <- cp
	return len(b), nil
}

// fakeConn implements client.Conn over the wire, from the client's
// point of view.
type fakeConn struct {
	wire     *fakeWire
	hwAddr   [6]byte
	deadline time.Time
}

func (c *fakeConn) Send(b []byte) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	c.wire.toAC <- cp
	return len(b), nil
}

func (c *fakeConn) Recv(b []byte) (int, error) {
	var timer <-chan time.Time
	if !c.deadline.IsZero() {
		if d := time.Until(c.deadline); d > 0 {
			t := time.NewTimer(d)
			defer t.Stop()
			timer = t.C
		} else {
			return 0, context.DeadlineExceeded
		}
	}
	select {
	case frame := <-c.wire.toClient:
		return copy(b, frame), nil
	case <-timer:
		return 0, context.DeadlineExceeded
	}
}

func (c *fakeConn) SetReadDeadline(t time.Time) error {
	c.deadline = t
	return nil
}

func (c *fakeConn) HWAddr() [6]byte { return c.hwAddr }

// runFakeAC drains wire.toAC through conc until ctx is done.
func runFakeAC(ctx context.Context, wire *fakeWire, conc *concentrator.Concentrator) {
	go func() {
		for {
			select {
			case frame := <-wire.toAC:
				_ = conc.HandleFrame(frame)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func TestDialAgainstFakeAC(t *testing.T) {
	wire := newFakeWire()
	acHW := [6]byte{0x02, 0x02, 0x02, 0x02, 0x02, 0x01}
	clientHW := [6]byte{0x02, 0x02, 0x02, 0x02, 0x02, 0x02}

	conc := concentrator.New(&acSender{wire: wire}, acHW, "test-ac", []string{"internet"}, log.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runFakeAC(ctx, wire, conc)

	conn := &fakeConn{wire: wire, hwAddr: clientHW}
	session, err := Dial(ctx, conn, "internet", WithTimeout(500*time.Millisecond), WithRetries(2))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if session.SessionID == 0 {
		t.Fatalf("expected nonzero session ID")
	}
	if session.ACName != "test-ac" {
		t.Fatalf("ACName = %q, want %q", session.ACName, "test-ac")
	}
	if session.PeerHWAddr != acHW {
		t.Fatalf("PeerHWAddr = %v, want %v", session.PeerHWAddr, acHW)
	}

	if err := session.Close(clientHW); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDialUnavailableServiceFails(t *testing.T) {
	wire := newFakeWire()
	acHW := [6]byte{0x02, 0x02, 0x02, 0x02, 0x02, 0x01}
	clientHW := [6]byte{0x02, 0x02, 0x02, 0x02, 0x02, 0x02}

	conc := concentrator.New(&acSender{wire: wire}, acHW, "test-ac", []string{"voip"}, log.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	runFakeAC(ctx, wire, conc)

	conn := &fakeConn{wire: wire, hwAddr: clientHW}
	_, err := Dial(ctx, conn, "internet", WithTimeout(300*time.Millisecond), WithRetries(1))
	if err == nil {
		t.Fatal("expected Dial to fail for an unavailable service")
	}
}
