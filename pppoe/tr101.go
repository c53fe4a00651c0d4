package pppoe

import "encoding/binary"

// tr101VendorID is the Broadband Forum's IANA enterprise number, which
// identifies a Vendor-Specific tag's payload as TR-101 access-loop
// information.
const tr101VendorID uint32 = 0x00000DE9

// TR-101 sub-TLV types.
const (
	tr101SubTagCircuitID                    = 0x01
	tr101SubTagRemoteID                     = 0x02
	tr101SubTagActualDataRateUp             = 0x81
	tr101SubTagActualDataRateDown           = 0x82
	tr101SubTagMinimumDataRateUp            = 0x83
	tr101SubTagMinimumDataRateDown          = 0x84
	tr101SubTagAttainableDataRateUp         = 0x85
	tr101SubTagAttainableDataRateDown       = 0x86
	tr101SubTagMaximumDataRateUp            = 0x87
	tr101SubTagMaximumDataRateDown          = 0x88
	tr101SubTagMinimumDataRateUpLowPower    = 0x89
	tr101SubTagMinimumDataRateDownLowPower  = 0x8A
	tr101SubTagMaximumInterleavingDelayUp   = 0x8B
	tr101SubTagActualInterleavingDelayUp    = 0x8C
	tr101SubTagMaximumInterleavingDelayDown = 0x8D
	tr101SubTagActualInterleavingDelayDown  = 0x8E
	tr101SubTagAccessLoopEncapsulation      = 0x90

	tr101MaxIDLength = 63
	tr101ALELength   = 3
)

// AccessLoopEncapsulation describes the data link and encapsulation of
// the subscriber's access loop, per the TR-101 Access-Loop-Encapsulation
// sub-TLV.
type AccessLoopEncapsulation struct {
	DataLink byte
	Encaps1  byte
	Encaps2  byte
}

// Tr101Information is the owned staging entity for a TR-101
// Vendor-Specific tag. Circuit-Id and Remote-Id are held in fixed
// 64-byte inline storage rather than heap-allocated strings, so the
// structure itself never allocates. It is encoded into a caller-owned
// buffer on demand by Write, or decoded from a received Vendor-Specific
// tag by DecodeTr101.
type Tr101Information struct {
	circuitID    [64]byte
	circuitIDLen byte
	remoteID     [64]byte
	remoteIDLen  byte

	AccessLoopEncapsulation AccessLoopEncapsulation

	ActualDataRateUp             uint32
	ActualDataRateDown           uint32
	MinimumDataRateUp            uint32
	MinimumDataRateDown          uint32
	AttainableDataRateUp         uint32
	AttainableDataRateDown       uint32
	MaximumDataRateUp            uint32
	MaximumDataRateDown          uint32
	MinimumDataRateUpLowPower    uint32
	MinimumDataRateDownLowPower  uint32
	MaximumInterleavingDelayUp   uint32
	ActualInterleavingDelayUp    uint32
	MaximumInterleavingDelayDown uint32
	ActualInterleavingDelayDown  uint32
}

// tr101RateField binds a sub-TLV type byte to the field that holds its
// decoded value, so Write and DecodeTr101 share a single table instead
// of duplicating the type-to-field mapping.
type tr101RateField struct {
	subType byte
	value   *uint32
}

func (info *Tr101Information) rateFields() [14]tr101RateField {
	return [14]tr101RateField{
		{tr101SubTagActualDataRateUp, &info.ActualDataRateUp},
		{tr101SubTagActualDataRateDown, &info.ActualDataRateDown},
		{tr101SubTagMinimumDataRateUp, &info.MinimumDataRateUp},
		{tr101SubTagMinimumDataRateDown, &info.MinimumDataRateDown},
		{tr101SubTagAttainableDataRateUp, &info.AttainableDataRateUp},
		{tr101SubTagAttainableDataRateDown, &info.AttainableDataRateDown},
		{tr101SubTagMaximumDataRateUp, &info.MaximumDataRateUp},
		{tr101SubTagMaximumDataRateDown, &info.MaximumDataRateDown},
		{tr101SubTagMinimumDataRateUpLowPower, &info.MinimumDataRateUpLowPower},
		{tr101SubTagMinimumDataRateDownLowPower, &info.MinimumDataRateDownLowPower},
		{tr101SubTagMaximumInterleavingDelayUp, &info.MaximumInterleavingDelayUp},
		{tr101SubTagActualInterleavingDelayUp, &info.ActualInterleavingDelayUp},
		{tr101SubTagMaximumInterleavingDelayDown, &info.MaximumInterleavingDelayDown},
		{tr101SubTagActualInterleavingDelayDown, &info.ActualInterleavingDelayDown},
	}
}

// NewTr101Information returns an empty Tr101Information with neither
// Circuit-Id nor Remote-Id set.
func NewTr101Information() *Tr101Information {
	return &Tr101Information{}
}

// WithCircuitID returns a Tr101Information with Circuit-Id set to id.
// id must be 1..63 bytes.
func WithCircuitID(id string) (*Tr101Information, error) {
	info := &Tr101Information{}
	if err := info.SetCircuitID(id); err != nil {
		return nil, err
	}
	return info, nil
}

// WithRemoteID returns a Tr101Information with Remote-Id set to id. id
// must be 1..63 bytes.
func WithRemoteID(id string) (*Tr101Information, error) {
	info := &Tr101Information{}
	if err := info.SetRemoteID(id); err != nil {
		return nil, err
	}
	return info, nil
}

// WithBothIDs returns a Tr101Information with both Circuit-Id and
// Remote-Id set. Both must be 1..63 bytes.
func WithBothIDs(circuitID, remoteID string) (*Tr101Information, error) {
	info := &Tr101Information{}
	if err := info.SetCircuitID(circuitID); err != nil {
		return nil, err
	}
	if err := info.SetRemoteID(remoteID); err != nil {
		return nil, err
	}
	return info, nil
}

// SetCircuitID sets the Circuit-Id field. id must be 1..63 bytes.
func (info *Tr101Information) SetCircuitID(id string) error {
	if len(id) < 1 || len(id) > tr101MaxIDLength {
		return &ErrInvalidSubTlvLength{Type: tr101SubTagCircuitID, Min: 1, Max: tr101MaxIDLength, Actual: len(id)}
	}
	info.circuitIDLen = byte(len(id))
	copy(info.circuitID[:], id)
	return nil
}

// SetRemoteID sets the Remote-Id field. id must be 1..63 bytes.
func (info *Tr101Information) SetRemoteID(id string) error {
	if len(id) < 1 || len(id) > tr101MaxIDLength {
		return &ErrInvalidSubTlvLength{Type: tr101SubTagRemoteID, Min: 1, Max: tr101MaxIDLength, Actual: len(id)}
	}
	info.remoteIDLen = byte(len(id))
	copy(info.remoteID[:], id)
	return nil
}

// CircuitID returns the Circuit-Id field, or "" if unset.
func (info *Tr101Information) CircuitID() string {
	return string(info.circuitID[:info.circuitIDLen])
}

// RemoteID returns the Remote-Id field, or "" if unset.
func (info *Tr101Information) RemoteID() string {
	return string(info.remoteID[:info.remoteIDLen])
}

// Len returns the number of bytes Write will produce.
func (info *Tr101Information) Len() int {
	required := 4 // vendor-id
	if info.circuitIDLen > 0 {
		required += 2 + int(info.circuitIDLen)
	}
	if info.remoteIDLen > 0 {
		required += 2 + int(info.remoteIDLen)
	}
	required += 2 + tr101ALELength // Access-Loop-Encapsulation TLV
	required += len(info.rateFields()) * 6
	return required
}

// Write encodes info into buf: the vendor-id, optional Circuit-Id and
// Remote-Id TLVs, the Access-Loop-Encapsulation TLV, and the full
// fourteen-entry rate/delay TLV sequence, which is always emitted even
// when every value is zero. It returns the number of bytes written, or
// ErrBufferTooSmall if buf cannot hold the encoding.
func (info *Tr101Information) Write(buf []byte) (int, error) {
	need := info.Len()
	if len(buf) < need {
		return 0, &ErrBufferTooSmall{Need: need, Have: len(buf)}
	}

	off := 0
	binary.BigEndian.PutUint32(buf[off:off+4], tr101VendorID)
	off += 4

	if info.circuitIDLen > 0 {
		buf[off] = tr101SubTagCircuitID
		buf[off+1] = info.circuitIDLen
		copy(buf[off+2:off+2+int(info.circuitIDLen)], info.circuitID[:info.circuitIDLen])
		off += 2 + int(info.circuitIDLen)
	}
	if info.remoteIDLen > 0 {
		buf[off] = tr101SubTagRemoteID
		buf[off+1] = info.remoteIDLen
		copy(buf[off+2:off+2+int(info.remoteIDLen)], info.remoteID[:info.remoteIDLen])
		off += 2 + int(info.remoteIDLen)
	}

	buf[off] = tr101SubTagAccessLoopEncapsulation
	buf[off+1] = tr101ALELength
	buf[off+2] = info.AccessLoopEncapsulation.DataLink
	buf[off+3] = info.AccessLoopEncapsulation.Encaps1
	buf[off+4] = info.AccessLoopEncapsulation.Encaps2
	off += 2 + tr101ALELength

	for _, f := range info.rateFields() {
		buf[off] = f.subType
		buf[off+1] = 4
		binary.BigEndian.PutUint32(buf[off+2:off+6], *f.value)
		off += 6
	}

	return off, nil
}

// DecodeTr101 decodes a TR-101 Vendor-Specific tag into a
// Tr101Information. Unrecognised sub-TLVs are skipped; recognised
// sub-TLVs whose length does not match their mandated width fail with
// ErrInvalidSubTlvLength.
func DecodeTr101(tag Tag) (*Tr101Information, error) {
	if tag.Type != PPPoETagTypeVendorSpecific {
		return nil, &ErrTagIsNotVendorSpecific{Type: tag.Type}
	}
	value := tag.Data()
	if len(value) < 4 {
		return nil, &ErrIncompleteTag{Len: len(value)}
	}
	vendorID := binary.BigEndian.Uint32(value[0:4])
	if vendorID != tr101VendorID {
		return nil, &ErrInvalidVendorId{VendorID: vendorID}
	}

	info := &Tr101Information{}
	fieldBySubType := make(map[byte]*uint32, len(info.rateFields()))
	for _, f := range info.rateFields() {
		fieldBySubType[f.subType] = f.value
	}

	remaining := value[4:]
	for len(remaining) > 0 {
		if len(remaining) < 2 {
			return nil, &ErrSubTlvLengthOutOfBound{Remaining: len(remaining), Requested: 2}
		}
		subType := remaining[0]
		length := int(remaining[1])
		if length+2 > len(remaining) {
			return nil, &ErrSubTlvLengthOutOfBound{Remaining: len(remaining) - 2, Requested: length}
		}
		data := remaining[2 : 2+length]

		switch subType {
		case tr101SubTagCircuitID:
			if length < 1 || length > tr101MaxIDLength {
				return nil, &ErrInvalidSubTlvLength{Type: subType, Min: 1, Max: tr101MaxIDLength, Actual: length}
			}
			if err := info.SetCircuitID(string(data)); err != nil {
				return nil, err
			}
		case tr101SubTagRemoteID:
			if length < 1 || length > tr101MaxIDLength {
				return nil, &ErrInvalidSubTlvLength{Type: subType, Min: 1, Max: tr101MaxIDLength, Actual: length}
			}
			if err := info.SetRemoteID(string(data)); err != nil {
				return nil, err
			}
		case tr101SubTagAccessLoopEncapsulation:
			if length != tr101ALELength {
				return nil, &ErrInvalidSubTlvLength{Type: subType, Min: tr101ALELength, Max: tr101ALELength, Actual: length}
			}
			info.AccessLoopEncapsulation = AccessLoopEncapsulation{DataLink: data[0], Encaps1: data[1], Encaps2: data[2]}
		default:
			if ptr, ok := fieldBySubType[subType]; ok {
				if length != 4 {
					return nil, &ErrInvalidSubTlvLength{Type: subType, Min: 4, Max: 4, Actual: length}
				}
				*ptr = binary.BigEndian.Uint32(data)
			}
			// unrecognised sub-types are skipped; their bytes are not kept
		}

		remaining = remaining[2+length:]
	}

	return info, nil
}
