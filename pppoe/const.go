package pppoe

// PPPoECode indicates the PPPoE packet type.
type PPPoECode uint8

// PPPoESessionID, in combination with the peer's Ethernet addresses,
// uniquely identifies a given PPPoE session.
type PPPoESessionID uint16

// PPPoETagType identifies the tags contained in the data payload of
// PPPoE discovery packets.
type PPPoETagType uint16

// PPPoE packet codes, per RFC2516 section 5.
const (
	// PPPoECodePADI is the PPPoE Active Discovery Initiation packet.
	PPPoECodePADI PPPoECode = 0x09
	// PPPoECodePADO is the PPPoE Active Discovery Offer packet.
	PPPoECodePADO PPPoECode = 0x07
	// PPPoECodePADR is the PPPoE Active Discovery Request packet.
	PPPoECodePADR PPPoECode = 0x19
	// PPPoECodePADS is the PPPoE Active Discovery Session-confirmation packet.
	PPPoECodePADS PPPoECode = 0x65
	// PPPoECodePADT is the PPPoE Active Discovery Terminate packet.
	PPPoECodePADT PPPoECode = 0xa7
)

// PPPoE Tag types.
//
// PPPoE packets may contain zero or more tags, which are TLV constructs.
// Types 0x0106-0x0109 and 0x0120 are defined by RFC5578 and RFC4638
// respectively, and are only of interest to sessions which negotiate
// bandwidth credits or a non-default MTU during discovery.
const (
	PPPoETagTypeEOL               PPPoETagType = 0x0000
	PPPoETagTypeServiceName       PPPoETagType = 0x0101
	PPPoETagTypeACName            PPPoETagType = 0x0102
	PPPoETagTypeHostUniq          PPPoETagType = 0x0103
	PPPoETagTypeACCookie          PPPoETagType = 0x0104
	PPPoETagTypeVendorSpecific    PPPoETagType = 0x0105
	PPPoETagTypeCredits           PPPoETagType = 0x0106
	PPPoETagTypeMetrics           PPPoETagType = 0x0107
	PPPoETagTypeSequenceNumber    PPPoETagType = 0x0108
	PPPoETagTypeCreditScaleFactor PPPoETagType = 0x0109
	PPPoETagTypeRelaySessionID    PPPoETagType = 0x0110
	PPPoETagTypePPPMaxPayload     PPPoETagType = 0x0120
	PPPoETagTypeServiceNameError  PPPoETagType = 0x0201
	PPPoETagTypeACSystemError     PPPoETagType = 0x0202
	PPPoETagTypeGenericError      PPPoETagType = 0x0203
)

// internal constants
const (
	ethHeaderLength      = 14 // bytes: 6 dst, 6 src, 2 ethertype
	pppoeHeaderLength    = 6  // bytes: 1 ver/type, 1 code, 2 session id, 2 length
	pppoeTagMinLength    = 4  // bytes: 2 for type, 2 for length
	pppoePacketMinLength = ethHeaderLength + pppoeHeaderLength

	// EtherTypeDiscovery is the Ethernet type for PPPoE discovery frames.
	EtherTypeDiscovery uint16 = 0x8863
	// EtherTypeSession is the Ethernet type for PPPoE session frames.
	EtherTypeSession uint16 = 0x8864

	pppoeVersion = 0x1
	pppoeType    = 0x1
)

// String provides a human-readable representation of PPPoECode.
func (code PPPoECode) String() string {
	switch code {
	case PPPoECodePADI:
		return "PADI"
	case PPPoECodePADO:
		return "PADO"
	case PPPoECodePADR:
		return "PADR"
	case PPPoECodePADS:
		return "PADS"
	case PPPoECodePADT:
		return "PADT"
	}
	return "???"
}

// String provides a human-readable representation of PPPoETagType.
func (typ PPPoETagType) String() string {
	switch typ {
	case PPPoETagTypeEOL:
		return "EOL"
	case PPPoETagTypeServiceName:
		return "Service-Name"
	case PPPoETagTypeACName:
		return "AC-Name"
	case PPPoETagTypeHostUniq:
		return "Host-Uniq"
	case PPPoETagTypeACCookie:
		return "AC-Cookie"
	case PPPoETagTypeVendorSpecific:
		return "Vendor-Specific"
	case PPPoETagTypeCredits:
		return "Credits"
	case PPPoETagTypeMetrics:
		return "Metrics"
	case PPPoETagTypeSequenceNumber:
		return "Sequence-Number"
	case PPPoETagTypeCreditScaleFactor:
		return "Credit-Scale-Factor"
	case PPPoETagTypeRelaySessionID:
		return "Relay-Session-ID"
	case PPPoETagTypePPPMaxPayload:
		return "PPP-Max-Payload"
	case PPPoETagTypeServiceNameError:
		return "Service-Name-Error"
	case PPPoETagTypeACSystemError:
		return "AC-System-Error"
	case PPPoETagTypeGenericError:
		return "Generic-Error"
	default:
		return "Unknown"
	}
}

// mustOccurAtMostOnce is the set of tag types which RFC2516 (and this
// library) permit to appear at most once in a given frame's payload.
var mustOccurAtMostOnce = map[PPPoETagType]bool{
	PPPoETagTypeServiceName:    true,
	PPPoETagTypeACName:         true,
	PPPoETagTypeHostUniq:       true,
	PPPoETagTypeACCookie:       true,
	PPPoETagTypeRelaySessionID: true,
	PPPoETagTypePPPMaxPayload:  true,
}

// fixedTagLength returns the exact wire length required for tag types
// with a fixed-width value, and ok=true if typ is such a type.
func fixedTagLength(typ PPPoETagType) (length int, ok bool) {
	switch typ {
	case PPPoETagTypeEOL:
		return 0, true
	case PPPoETagTypeCredits:
		return 4, true
	case PPPoETagTypeSequenceNumber:
		return 2, true
	case PPPoETagTypeCreditScaleFactor:
		return 2, true
	case PPPoETagTypePPPMaxPayload:
		return 2, true
	}
	return 0, false
}
