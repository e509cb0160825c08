package tlv

import (
	"fmt"
)

// TLV of byte data
//        octet  octet   ...
//      [ type ][ len ][ len bytes of data ]
//
// Sub-TLVs nested in a TLV value use the same encoding.

// HdrSize is the size of the TLV (and sub-TLV) header.
const HdrSize = 2

// Type is a TLV type value
type Type uint8

// ISO 10589:2002
const (
	// ISO
	TypeAreaAddrs   Type = 1 // ISO10590
	TypeIsReach     Type = 2 // ISO10590
	TypeISNeighbors Type = 6 // ISO10590
	TypeInstanceID  Type = 7 // RFC8202

	TypePadding    Type = 8  // ISO10590
	TypeSNPEntries Type = 9  // ISO10590
	TypeAuth       Type = 10 // ISO10590
	TypePurge      Type = 13 // RFC6232
	TypeLspBufSize Type = 14 // ISO10590

	TypeExtIsReach Type = 22 // RFC5305

	TypeIPv4Iprefix   Type = 128 // RFC1195
	TypeNLPID         Type = 129 // RFC1195
	TypeIPv4Eprefix   Type = 130 // RFC1195
	TypeIPv4IntfAddrs Type = 132 // RFC1195
	TypeRouterID      Type = 134 // RFC5305
	TypeExtIPv4Prefix Type = 135 // RFC5305
	TypeHostname      Type = 137 // RFC5301
	TypeIPv6IntfAddrs Type = 232 // RFC5308
	TypeIPv6Prefix    Type = 236 // RFC5308
	TypeRouterCap     Type = 242 // RFC7981
)

// TypeNameMap returns string names for known TLV types
var TypeNameMap = map[Type]string{
	TypeAreaAddrs:     "TypeAreaAddrs",
	TypeIsReach:       "TypeIsReach",
	TypeISNeighbors:   "TypeISNeighbors",
	TypeInstanceID:    "TypeInstanceID",
	TypePadding:       "TypePadding",
	TypeSNPEntries:    "TypeSNPEntries",
	TypeAuth:          "TypeAuth",
	TypePurge:         "TypePurge",
	TypeLspBufSize:    "TypeLspBufSize",
	TypeExtIsReach:    "TypeExtIsReach",
	TypeIPv4Iprefix:   "TypeIPv4Iprefix",
	TypeNLPID:         "TypeNLPID",
	TypeIPv4Eprefix:   "TypeIPv4Eprefix",
	TypeIPv4IntfAddrs: "TypeIPv4IntfAddrs",
	TypeRouterID:      "TypeRouterID",
	TypeExtIPv4Prefix: "TypeExtIPv4Prefix",
	TypeHostname:      "TypeHostname",
	TypeIPv6IntfAddrs: "TypeIPv6IntfAddrs",
	TypeIPv6Prefix:    "TypeIPv6Prefix",
	TypeRouterCap:     "TypeRouterCap",
}

func (t Type) String() string {
	s, ok := TypeNameMap[t]
	if !ok {
		s = fmt.Sprintf("Unknown(%d)", t)
	}
	return s
}

// MarshalText returns the type name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// SubType is a sub-TLV type value for sub-TLVs of the IS reachability TLVs.
type SubType uint8

// RFC5305 section 3
const (
	SubTypeAdminGroup    SubType = 3
	SubTypeIPv4IntfAddr  SubType = 6
	SubTypeIPv4NbrAddr   SubType = 8
	SubTypeMaxLinkBW     SubType = 9
	SubTypeMaxResvLinkBW SubType = 10
	SubTypeUnresvBW      SubType = 11
	SubTypeTEMetric      SubType = 18
)

// SubTypeNameMap returns string names for known sub-TLV types
var SubTypeNameMap = map[SubType]string{
	SubTypeAdminGroup:    "SubTypeAdminGroup",
	SubTypeIPv4IntfAddr:  "SubTypeIPv4IntfAddr",
	SubTypeIPv4NbrAddr:   "SubTypeIPv4NbrAddr",
	SubTypeMaxLinkBW:     "SubTypeMaxLinkBW",
	SubTypeMaxResvLinkBW: "SubTypeMaxResvLinkBW",
	SubTypeUnresvBW:      "SubTypeUnresvBW",
	SubTypeTEMetric:      "SubTypeTEMetric",
}

func (t SubType) String() string {
	s, ok := SubTypeNameMap[t]
	if !ok {
		s = fmt.Sprintf("Unknown(%d)", t)
	}
	return s
}

// MarshalText returns the sub-TLV type name.
func (t SubType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
