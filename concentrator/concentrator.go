// Package concentrator implements the Access Concentrator side of the
// PPPoE discovery handshake: responding to PADI with PADO, PADR with
// PADS, and tracking enough per-session state to validate a later
// PADT. It deliberately stops at the discovery handshake; bringing up
// a PPP session on an assigned session ID is outside its scope.
package concentrator

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/katalix/pppoe-discovery/pppoe"
)

// Sender is the transport collaborator a Concentrator sends frames
// through. *transport.Conn satisfies it.
type Sender interface {
	Send([]byte) (int, error)
}

// frameBufSize is the scratch buffer size used to build outbound
// frames, matching the standard Ethernet MTU.
const frameBufSize = 1500

type session struct {
	peerHWAddr  [6]byte
	serviceName string
}

// Concentrator tracks enough state to answer the PPPoE discovery
// handshake for one Ethernet interface. It is not safe to share a
// single Concentrator across connections bound to different
// interfaces.
type Concentrator struct {
	conn     Sender
	hwAddr   [6]byte
	acName   string
	services []string
	logger   log.Logger

	mu       sync.Mutex
	sessions map[pppoe.PPPoESessionID]*session
}

// New returns a Concentrator that sends its responses through conn,
// identifying itself with hwAddr and acName, offering services (an
// empty list accepts any requested service name).
func New(conn Sender, hwAddr [6]byte, acName string, services []string, logger log.Logger) *Concentrator {
	return &Concentrator{
		conn:     conn,
		hwAddr:   hwAddr,
		acName:   acName,
		services: services,
		logger:   logger,
		sessions: make(map[pppoe.PPPoESessionID]*session),
	}
}

// HandleFrame processes one received Ethernet frame. Frames that are
// not PPPoE discovery frames, or that fail to parse, are dropped rather
// than returned as an error (parse failures are logged at debug level): a shared
// Ethernet segment carries plenty of traffic that isn't meant for this
// concentrator.
func (c *Concentrator) HandleFrame(raw []byte) error {
	frame, err := pppoe.ParseFrame(raw)
	if err != nil {
		level.Debug(c.logger).Log("message", "dropping unparsable frame", "error", err)
		return nil
	}
	if frame.Ethernet().EtherType() != pppoe.EtherTypeDiscovery {
		return nil
	}

	hdr := frame.Pppoe()
	peer := frame.Ethernet().SrcMAC()

	switch hdr.Code() {
	case pppoe.PPPoECodePADI:
		return c.handlePADI(hdr, peer)
	case pppoe.PPPoECodePADR:
		return c.handlePADR(hdr, peer)
	case pppoe.PPPoECodePADT:
		return c.handlePADT(hdr)
	default:
		level.Debug(c.logger).Log("message", "ignoring frame", "code", hdr.Code())
		return nil
	}
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

// mapServiceName checks requested against the configured service
// list. An empty requested name is the RFC2516 wildcard and is always
// accepted; an empty configured list means this concentrator accepts
// any requested name.
func (c *Concentrator) mapServiceName(requested string) (string, error) {
	if requested == "" || len(c.services) == 0 {
		return requested, nil
	}
	for _, sn := range c.services {
		if sn == requested {
			return requested, nil
		}
	}
	return requested, fmt.Errorf("requested service %q not available", requested)
}

// genSessionID allocates a random, nonzero, currently-unused session
// ID. The caller must hold c.mu.
func (c *Concentrator) genSessionID() (pppoe.PPPoESessionID, error) {
	for i := 0; i < 100; i++ {
		sid := pppoe.PPPoESessionID(1 + rand.Intn(65534))
		if _, ok := c.sessions[sid]; !ok {
			return sid, nil
		}
	}
	return 0, fmt.Errorf("exhausted session ID space")
}

// appendEchoedTags copies Host-Uniq and Relay-Session-ID from in onto
// out, if present, so the peer can correlate this response with its
// request.
func appendEchoedTags(in *pppoe.Header, out *pppoe.HeaderBuilder) error {
	for _, typ := range []pppoe.PPPoETagType{pppoe.PPPoETagTypeHostUniq, pppoe.PPPoETagTypeRelaySessionID} {
		if tag, ok := findTag(in, typ); ok {
			if err := out.AddTag(pppoe.NewOpaqueTag(typ, tag.Data())); err != nil {
				return fmt.Errorf("failed to echo %v tag: %v", typ, err)
			}
		}
	}
	return nil
}

func (c *Concentrator) send(b *pppoe.FrameBuilder) error {
	frame, err := b.Build()
	if err != nil {
		return fmt.Errorf("failed to build %v: %v", b.Pppoe().Code(), err)
	}
	level.Debug(c.logger).Log("message", "send", "code", frame.Pppoe().Code(), "session", frame.Pppoe().SessionID())
	_, err = c.conn.Send(frame.Bytes())
	return err
}

func (c *Concentrator) handlePADI(in *pppoe.Header, peer [6]byte) error {
	snTag, ok := findTag(in, pppoe.PPPoETagTypeServiceName)
	if !ok {
		// unreachable: ParseHeader already enforces Service-Name presence
		return nil
	}

	serviceName, err := c.mapServiceName(string(snTag.Data()))
	if err != nil {
		level.Debug(c.logger).Log("message", "rejecting PADI", "reason", err)
		return nil
	}

	buf := make([]byte, frameBufSize)
	fb, err := pppoe.NewFrame(buf, c.hwAddr, peer, pppoe.EtherTypeDiscovery, pppoe.PPPoECodePADO, 0)
	if err != nil {
		return err
	}
	if err := fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeServiceName, []byte(serviceName))); err != nil {
		return err
	}
	if err := fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeACName, []byte(c.acName))); err != nil {
		return err
	}
	if err := appendEchoedTags(in, fb.Pppoe()); err != nil {
		return err
	}
	if err := fb.Pppoe().AddEndTag(); err != nil {
		return err
	}

	return c.send(fb)
}

func (c *Concentrator) handlePADR(in *pppoe.Header, peer [6]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessionID := pppoe.PPPoESessionID(0)
	errorReason := ""

	snTag, ok := findTag(in, pppoe.PPPoETagTypeServiceName)
	if !ok {
		errorReason = "missing Service-Name tag"
	} else {
		serviceName, err := c.mapServiceName(string(snTag.Data()))
		if err != nil {
			errorReason = err.Error()
		} else if sessionID, err = c.genSessionID(); err != nil {
			errorReason = fmt.Sprintf("failed to allocate session ID: %v", err)
		} else {
			c.sessions[sessionID] = &session{peerHWAddr: peer, serviceName: serviceName}
		}
	}

	buf := make([]byte, frameBufSize)
	fb, err := pppoe.NewFrame(buf, c.hwAddr, peer, pppoe.EtherTypeDiscovery, pppoe.PPPoECodePADS, sessionID)
	if err != nil {
		return err
	}

	if snTag, ok := findTag(in, pppoe.PPPoETagTypeServiceName); ok {
		if err := fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeServiceName, snTag.Data())); err != nil {
			return err
		}
	}
	if err := appendEchoedTags(in, fb.Pppoe()); err != nil {
		return err
	}
	if errorReason != "" {
		if err := fb.Pppoe().AddTag(pppoe.NewOpaqueTag(pppoe.PPPoETagTypeServiceNameError, []byte(errorReason))); err != nil {
			return err
		}
	}
	if err := fb.Pppoe().AddEndTag(); err != nil {
		return err
	}

	return c.send(fb)
}

func (c *Concentrator) handlePADT(in *pppoe.Header) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sid := in.SessionID()
	if _, ok := c.sessions[sid]; ok {
		delete(c.sessions, sid)
		level.Info(c.logger).Log("message", "session terminated", "session", sid)
	}
	return nil
}
