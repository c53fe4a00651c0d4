// Package client implements the dialing side of the PPPoE discovery
// handshake: broadcasting PADI, selecting a PADO, sending PADR, and
// waiting for PADS to produce an established Session.
package client

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalix/pppoe-discovery/pppoe"
)

// Conn is the transport collaborator a dial needs. *transport.Conn
// satisfies it.
type Conn interface {
	Send([]byte) (int, error)
	Recv([]byte) (int, error)
	SetReadDeadline(t time.Time) error
	HWAddr() [6]byte
}

// broadcastMAC is the destination address for PADI, per RFC2516
// section 5.1.
var broadcastMAC = [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

const frameBufSize = 1500

// options holds the tunable parameters of a Dial call.
type options struct {
	retries int
	timeout time.Duration
}

// Option configures a Dial call.
type Option func(*options)

// WithRetries overrides the number of times Dial retries the PADI/PADO
// and PADR/PADS exchanges before giving up. The default is 3.
func WithRetries(n int) Option {
	return func(o *options) { o.retries = n }
}

// WithTimeout overrides how long Dial waits for a PADO or PADS before
// retrying. The default is 3 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Session is an established PPPoE discovery-stage session: a session
// ID bound to a specific peer MAC address. It carries no PPP framing
// of its own; its SessionID and PeerHWAddr are what a caller needs to
// open a PPPoE session-stage socket (EtherTypeSession) to the peer.
type Session struct {
	conn        Conn
	SessionID   pppoe.PPPoESessionID
	PeerHWAddr  [6]byte
	ServiceName string
	ACName      string
}

// Dial runs the PADI/PADO/PADR/PADS discovery handshake over conn,
// requesting serviceName (the empty string is the RFC2516 wildcard,
// meaning "any service"), and returns the resulting Session.
//
// Dial retries the handshake from PADI if no matching PADO or PADS
// arrives within the configured timeout, up to the configured retry
// count, and aborts early if ctx is cancelled.
func Dial(ctx context.Context, conn Conn, serviceName string, opts ...Option) (*Session, error) {
	o := options{retries: 3, timeout: 3 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	hostUniq := make([]byte, 4)
	rand.Read(hostUniq)

	selfHW := conn.HWAddr()

	var lastErr error
	for attempt := 0; attempt <= o.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pado, err := dialPADI(ctx, conn, selfHW, serviceName, hostUniq, o.timeout)
		if err != nil {
			lastErr = err
			continue
		}

		session, err := dialPADR(ctx, conn, selfHW, pado.Pppoe(), pado.Ethernet().SrcMAC(), serviceName, hostUniq, o.timeout)
		if err != nil {
			lastErr = err
			continue
		}
		return session, nil
	}
	return nil, fmt.Errorf("pppoe dial: exhausted %d attempts: %w", o.retries+1, lastErr)
}

// recvMatching blocks until conn yields a discovery frame satisfying
// match, ctx is cancelled, or timeout elapses, whichever comes first.
// It races the blocking Recv call against ctx.Done() by forcing the
// read deadline to the present the moment ctx is cancelled.
func recvMatching(ctx context.Context, conn Conn, timeout time.Duration, match func(*pppoe.Header) bool) (*pppoe.Frame, error) {
	deadline := time.Now().Add(timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	result := make(chan *pppoe.Frame, 1)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		buf := make([]byte, frameBufSize)
		for {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			n, err := conn.Recv(buf)
			if err != nil {
				return err
			}
			frame, err := pppoe.ParseFrame(buf[:n])
			if err != nil {
				continue
			}
			if frame.Ethernet().EtherType() != pppoe.EtherTypeDiscovery {
				continue
			}
			if !match(frame.Pppoe()) {
				continue
			}
			result <- frame
			return nil
		}
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			// unblock the concurrent Recv by forcing its deadline to now
			_ = conn.SetReadDeadline(time.Now())
			return gctx.Err()
		case <-done:
			return nil
		}
	})

	err := g.Wait()
	select {
	case frame := <-result:
		return frame, nil
	default:
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("pppoe dial: timed out waiting for response")
}

func findTag(h *pppoe.Header, typ pppoe.PPPoETagType) (pppoe.Tag, bool) {
	it := h.Tags()
	for {
		tag, ok := it.Next()
		if !ok {
			return pppoe.Tag{}, false
		}
		if tag.Type == typ {
			return tag, true
		}
	}
}

func dialPADI(ctx context.Context, conn Conn, selfHW [6]byte, serviceName string, hostUniq []byte, timeout time.Duration) (*pppoe.Frame, error) {
	buf := make([]byte, frameBufSize)
	fb, err := pppoe.NewDiscoveryFrame(buf, selfHW, broadcastMAC)
	if err != nil {
		return nil, err
	}
	if err := fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeServiceName, []byte(serviceName))); err != nil {
		return nil, err
	}
	if err := fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeHostUniq, hostUniq)); err != nil {
		return nil, err
	}
	if err := fb.Pppoe().AddEndTag(); err != nil {
		return nil, err
	}
	frame, err := fb.Build()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Send(frame.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to send PADI: %v", err)
	}

	reply, err := recvMatching(ctx, conn, timeout, func(h *pppoe.Header) bool {
		if h.Code() != pppoe.PPPoECodePADO {
			return false
		}
		tag, ok := findTag(h, pppoe.PPPoETagTypeHostUniq)
		return ok && bytes.Equal(tag.Data(), hostUniq)
	})
	if err != nil {
		return nil, fmt.Errorf("no PADO received: %v", err)
	}
	return reply, nil
}

func dialPADR(ctx context.Context, conn Conn, selfHW [6]byte, pado *pppoe.Header, padoPeerHW [6]byte, serviceName string, hostUniq []byte, timeout time.Duration) (*Session, error) {
	acNameTag, ok := findTag(pado, pppoe.PPPoETagTypeACName)
	if !ok {
		return nil, &pppoe.ErrMissingAcName{}
	}
	acName := string(acNameTag.Data())

	var expectedServiceName []byte
	if serviceName != "" {
		expectedServiceName = []byte(serviceName)
	}

	buf := make([]byte, frameBufSize)
	fb, err := pppoe.NewPadrFrameFromPado(buf, selfHW, padoPeerHW, pado, expectedServiceName, nil)
	if err != nil {
		return nil, err
	}
	if err := fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeHostUniq, hostUniq)); err != nil {
		return nil, err
	}
	if err := fb.Pppoe().AddEndTag(); err != nil {
		return nil, err
	}
	padr, err := fb.Build()
	if err != nil {
		return nil, err
	}

	if _, err := conn.Send(padr.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to send PADR: %v", err)
	}

	reply, err := recvMatching(ctx, conn, timeout, func(h *pppoe.Header) bool {
		if h.Code() != pppoe.PPPoECodePADS {
			return false
		}
		tag, ok := findTag(h, pppoe.PPPoETagTypeHostUniq)
		return ok && bytes.Equal(tag.Data(), hostUniq)
	})
	if err != nil {
		return nil, fmt.Errorf("no PADS received: %v", err)
	}

	pads := reply.Pppoe()
	if tag, ok := findTag(pads, pppoe.PPPoETagTypeServiceNameError); ok {
		return nil, fmt.Errorf("AC rejected service name %q: %s", serviceName, tag.Data())
	}
	if pads.SessionID() == 0 {
		return nil, fmt.Errorf("AC returned session ID 0")
	}

	return &Session{
		conn:        conn,
		SessionID:   pads.SessionID(),
		PeerHWAddr:  reply.Ethernet().SrcMAC(),
		ServiceName: serviceName,
		ACName:      acName,
	}, nil
}

// Close sends PADT to terminate the session.
func (s *Session) Close(selfHW [6]byte) error {
	buf := make([]byte, frameBufSize)
	fb, err := pppoe.NewFrame(buf, selfHW, s.PeerHWAddr, pppoe.EtherTypeDiscovery, pppoe.PPPoECodePADT, s.SessionID)
	if err != nil {
		return err
	}
	if err := fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeServiceName, []byte(s.ServiceName))); err != nil {
		return err
	}
	if err := fb.Pppoe().AddEndTag(); err != nil {
		return err
	}
	frame, err := fb.Build()
	if err != nil {
		return err
	}
	_, err = s.conn.Send(frame.Bytes())
	return err
}
