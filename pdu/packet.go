package pdu

import (
	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/pkt"
)

// Packet is a decoded IS-IS PDU. *LSP is the only implementation.
type Packet interface {
	PDUType() clns.PDUType
	isPacket()
}

// Decode decodes the PDU at the start of b, returning it and the bytes
// following it. The common header is peeked to route on the PDU type, PDU
// types other than the level-2 LSP return clns.ErrUnkPDUType.
func Decode(b []byte) (Packet, []byte, error) {
	if err := pkt.Need(b, clns.HdrCLNSSize); err != nil {
		return nil, b, err
	}
	word := pkt.GetUInt64(b)
	if irpd := uint8(word >> 56); irpd != clns.IDRPISIS {
		return nil, b, clns.ErrUnsupportedIRPD(irpd)
	}
	switch pdutype := clns.PDUType((word >> 24) & clns.PDUTypeMask); pdutype {
	case clns.PDUTypeLSPL2:
		lsp, rest, err := DecodeLSP(b)
		if err != nil {
			return nil, b, err
		}
		return lsp, rest, nil
	default:
		return nil, b, clns.ErrUnkPDUType(pdutype)
	}
}
