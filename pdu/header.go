// Package pdu decodes IS-IS PDUs. Only the level-2 LSP is decoded, other PDU
// types are recognized and reported as unsupported.
package pdu

import (
	"fmt"

	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/pkt"
)

// Header is the fixed header common to all IS-IS PDUs (ISO10589 9.5).
type Header struct {
	IRPD     uint8        `json:"irpd"`
	Len      uint8        `json:"len"`
	Version  uint8        `json:"version"`
	SysIDLen uint8        `json:"sysid-len"`
	PDUType  clns.PDUType `json:"pdu-type"`
	Version2 uint8        `json:"version2"`
	Reserved uint8        `json:"reserved"`
	MaxArea  uint8        `json:"max-area"`
}

// DecodeHeader decodes the common header at the start of b. The reserved bits
// of the PDU type octet are masked off.
func DecodeHeader(b []byte) (Header, []byte, error) {
	if err := pkt.Need(b, clns.HdrCLNSSize); err != nil {
		return Header{}, b, err
	}
	h := Header{
		IRPD:     b[clns.HdrCLNSIDRP],
		Len:      b[clns.HdrCLNSLen],
		Version:  b[clns.HdrCLNSVer],
		SysIDLen: b[clns.HdrCLNSSysIDLen],
		PDUType:  clns.PDUType(b[clns.HdrCLNSPDUType] & clns.PDUTypeMask),
		Version2: b[clns.HdrCLNSVer2],
		Reserved: b[clns.HdrCLNSResv],
		MaxArea:  b[clns.HdrCLNSMaxArea],
	}
	return h, b[clns.HdrCLNSSize:], nil
}

// Append appends the encoding of the header to b.
func (h *Header) Append(b []byte) []byte {
	return append(b, h.IRPD, h.Len, h.Version, h.SysIDLen, uint8(h.PDUType),
		h.Version2, h.Reserved, h.MaxArea)
}

func (h Header) String() string {
	return fmt.Sprintf("IRPD %#02x len %d ver %d sysid-len %d type %s max-area %d",
		h.IRPD, h.Len, h.Version, h.SysIDLen, h.PDUType, h.MaxArea)
}
