package tlv

import (
	"net/netip"

	"github.com/nrybowski/isis-parser/pkt"
)

// SubHeader is the type and value length common to every sub-TLV.
type SubHeader struct {
	Type   SubType `json:"type"`
	Length uint8   `json:"length"`
}

// SubTLV is a decoded sub-TLV of an IS reachability neighbor. The set of
// implementations is closed: *IPv4IntfAddr, *IPv4NbrAddr and UnsupportedSub.
type SubTLV interface {
	SubTLVType() SubType
	isSubTLV()
}

// IPv4IntfAddr is the IPv4 interface address sub-TLV (RFC5305 3.2).
type IPv4IntfAddr struct {
	Hdr  SubHeader  `json:"header"`
	Addr netip.Addr `json:"addr"`
}

// IPv4NbrAddr is the IPv4 neighbor address sub-TLV (RFC5305 3.3).
type IPv4NbrAddr struct {
	Hdr  SubHeader  `json:"header"`
	Addr netip.Addr `json:"addr"`
}

// UnsupportedSub marks a sub-TLV that was skipped over without being decoded.
type UnsupportedSub struct {
	Hdr SubHeader `json:"header"`
}

// SubTLVType returns SubTypeIPv4IntfAddr.
func (s *IPv4IntfAddr) SubTLVType() SubType { return s.Hdr.Type }

// SubTLVType returns SubTypeIPv4NbrAddr.
func (s *IPv4NbrAddr) SubTLVType() SubType { return s.Hdr.Type }

// SubTLVType returns the type of the skipped sub-TLV.
func (s UnsupportedSub) SubTLVType() SubType { return s.Hdr.Type }

func (*IPv4IntfAddr) isSubTLV() {}

func (*IPv4NbrAddr) isSubTLV() {}

func (UnsupportedSub) isSubTLV() {}

// IPv4AddrLen is the length of the value of both IPv4 address sub-TLVs.
const IPv4AddrLen = 4

// decodeIPv4Value decodes the common layout of the IPv4 address sub-TLVs:
// header followed by a 4 octet address. The whole declared length is
// consumed.
func decodeIPv4Value(want SubType, b []byte) (SubHeader, netip.Addr, []byte, error) {
	if err := pkt.Need(b, HdrSize); err != nil {
		return SubHeader{}, netip.Addr{}, b, err
	}
	hdr := SubHeader{Type: SubType(b[0]), Length: b[1]}
	if hdr.Type != want {
		return hdr, netip.Addr{}, b, pkt.ErrVerifyFailed{Want: uint8(want), Got: uint8(hdr.Type)}
	}
	if hdr.Length < IPv4AddrLen {
		return hdr, netip.Addr{}, b, pkt.ErrMalformedLength("IPv4 address sub-TLV shorter than an address")
	}
	value, rest, err := pkt.BoundFrom(b, HdrSize, int(hdr.Length))
	if err != nil {
		return hdr, netip.Addr{}, b, err
	}
	addr := netip.AddrFrom4([4]byte{value[0], value[1], value[2], value[3]})
	return hdr, addr, rest, nil
}

// DecodeIPv4IntfAddr decodes an IPv4 interface address sub-TLV.
func DecodeIPv4IntfAddr(b []byte) (*IPv4IntfAddr, []byte, error) {
	hdr, addr, rest, err := decodeIPv4Value(SubTypeIPv4IntfAddr, b)
	if err != nil {
		return nil, b, err
	}
	return &IPv4IntfAddr{Hdr: hdr, Addr: addr}, rest, nil
}

// DecodeIPv4NbrAddr decodes an IPv4 neighbor address sub-TLV.
func DecodeIPv4NbrAddr(b []byte) (*IPv4NbrAddr, []byte, error) {
	hdr, addr, rest, err := decodeIPv4Value(SubTypeIPv4NbrAddr, b)
	if err != nil {
		return nil, b, err
	}
	return &IPv4NbrAddr{Hdr: hdr, Addr: addr}, rest, nil
}

func asSubTLV[R SubTLV](dec func([]byte) (R, []byte, error)) pkt.Decoder[SubTLV] {
	return func(b []byte) (SubTLV, []byte, error) {
		r, rest, err := dec(b)
		if err != nil {
			return nil, b, err
		}
		return r, rest, nil
	}
}

var subDispatch = &pkt.Dispatcher[SubTLV]{
	Table: map[uint8]pkt.Decoder[SubTLV]{
		uint8(SubTypeIPv4IntfAddr): asSubTLV(DecodeIPv4IntfAddr),
		uint8(SubTypeIPv4NbrAddr):  asSubTLV(DecodeIPv4NbrAddr),
	},
	Skip: pkt.SkipDecoder[SubTLV](HdrSize, 1, func(typ, length uint8) SubTLV {
		return UnsupportedSub{Hdr: SubHeader{Type: SubType(typ), Length: length}}
	}),
}

// DecodeSubTLV decodes the sub-TLV at the start of b, returning it and the
// bytes following it. Unknown sub-TLVs are skipped and returned as
// UnsupportedSub.
func DecodeSubTLV(b []byte) (SubTLV, []byte, error) {
	return subDispatch.Decode(b)
}

// DecodeSubTLVs decodes sub-TLVs until region is exhausted. A trailing part of
// region that does not decode is dropped. The result is never nil.
func DecodeSubTLVs(region []byte) []SubTLV {
	subs, _ := pkt.DecodeAll[SubTLV](region, DecodeSubTLV)
	return subs
}
