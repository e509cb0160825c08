package tlv

import (
	"github.com/nrybowski/isis-parser/pkt"
)

// Header is the type and value length common to every TLV.
type Header struct {
	Type   Type  `json:"type"`
	Length uint8 `json:"length"`
}

// TLV is a decoded TLV. The set of implementations is closed: *ExtISReach
// and Unsupported.
type TLV interface {
	TLVType() Type
	isTLV()
}

// Unsupported marks a TLV that was skipped over without being decoded.
type Unsupported struct {
	Hdr Header `json:"header"`
}

// TLVType returns the type of the skipped TLV.
func (u Unsupported) TLVType() Type { return u.Hdr.Type }

func (Unsupported) isTLV() {}

func decodeHeader(b []byte) (Header, error) {
	if err := pkt.Need(b, HdrSize); err != nil {
		return Header{}, err
	}
	return Header{Type: Type(b[0]), Length: b[1]}, nil
}

// asTLV widens a decoder of a concrete TLV type.
func asTLV[R TLV](dec func([]byte) (R, []byte, error)) pkt.Decoder[TLV] {
	return func(b []byte) (TLV, []byte, error) {
		r, rest, err := dec(b)
		if err != nil {
			return nil, b, err
		}
		return r, rest, nil
	}
}

var tlvDispatch = &pkt.Dispatcher[TLV]{
	Table: map[uint8]pkt.Decoder[TLV]{
		uint8(TypeExtIsReach): asTLV(DecodeExtISReach),
	},
	Skip: pkt.SkipDecoder[TLV](HdrSize, 1, func(typ, length uint8) TLV {
		return Unsupported{Hdr: Header{Type: Type(typ), Length: length}}
	}),
}

// Decode decodes the TLV at the start of b, returning it and the bytes
// following it. TLV types that are not decoded are skipped and returned as
// Unsupported.
func Decode(b []byte) (TLV, []byte, error) {
	return tlvDispatch.Decode(b)
}

// Supported returns true if TLVs of type typ are decoded.
func Supported(typ Type) bool {
	return tlvDispatch.Known(uint8(typ))
}

// DecodeAll decodes TLVs until region is exhausted. A trailing part of region
// that does not decode is dropped.
func DecodeAll(region []byte) []TLV {
	tlvs, _ := pkt.DecodeAll[TLV](region, Decode)
	return tlvs
}
