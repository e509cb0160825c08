package pdu

import (
	"fmt"

	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/pkt"
	"github.com/nrybowski/isis-parser/tlv"
)

// LSP is a decoded level-2 link state PDU.
type LSP struct {
	Header    Header     `json:"header"`
	PDULen    uint16     `json:"pdu-len"`
	Lifetime  uint16     `json:"lifetime"`
	LSPID     clns.LSPID `json:"lspid"`
	SeqNo     uint32     `json:"seqno"`
	Cksum     uint16     `json:"cksum"`
	TypeBlock uint8      `json:"type-block"`
	// TLVs is nil when the PDU has no TLV region.
	TLVs []tlv.TLV `json:"tlvs"`
}

// PDUType returns clns.PDUTypeLSPL2.
func (lsp *LSP) PDUType() clns.PDUType { return lsp.Header.PDUType }

func (*LSP) isPacket() {}

func (lsp *LSP) String() string {
	return fmt.Sprintf("LSP(%s seqno %#08x lifetime %d cksum %#04x)",
		lsp.LSPID, lsp.SeqNo, lsp.Lifetime, lsp.Cksum)
}

// Neighbors returns the neighbors of all extended IS reachability TLVs in
// the LSP, in order.
func (lsp *LSP) Neighbors() []tlv.Neighbor {
	var nbrs []tlv.Neighbor
	for _, t := range lsp.TLVs {
		if r, ok := t.(*tlv.ExtISReach); ok {
			nbrs = append(nbrs, r.Neighbors...)
		}
	}
	return nbrs
}

// IsPurge returns true if the LSP has zero remaining lifetime.
func (lsp *LSP) IsPurge() bool {
	return lsp.Lifetime == 0
}

// DecodeLSP decodes a level-2 LSP from the start of b. The PDU length field
// bounds the TLV region, bytes after it are returned as the remainder.
func DecodeLSP(b []byte) (*LSP, []byte, error) {
	hdr, _, err := DecodeHeader(b)
	if err != nil {
		return nil, b, err
	}
	if hdr.PDUType != clns.PDUTypeLSPL2 {
		return nil, b, pkt.ErrVerifyFailed{Want: uint8(clns.PDUTypeLSPL2), Got: uint8(hdr.PDUType)}
	}
	if err := pkt.Need(b, clns.LSPFixedSize); err != nil {
		return nil, b, err
	}
	lsph := b[clns.HdrCLNSSize:]
	lsp := &LSP{
		Header:    hdr,
		PDULen:    pkt.GetUInt16(lsph[clns.HdrLSPPDULen:]),
		Lifetime:  pkt.GetUInt16(lsph[clns.HdrLSPLifetime:]),
		SeqNo:     pkt.GetUInt32(lsph[clns.HdrLSPSeqNo:]),
		Cksum:     pkt.GetUInt16(lsph[clns.HdrLSPCksum:]),
		TypeBlock: lsph[clns.HdrLSPFlags],
	}
	copy(lsp.LSPID[:], lsph[clns.HdrLSPLSPID:])

	if lsp.PDULen < clns.LSPFixedSize {
		return nil, b, pkt.ErrMalformedLength(
			fmt.Sprintf("LSP pdulen %d less than fixed size %d", lsp.PDULen, clns.LSPFixedSize))
	}
	tlvlen := int(lsp.PDULen) - clns.LSPFixedSize
	if tlvlen == 0 {
		return lsp, b[clns.LSPFixedSize:], nil
	}
	region, rest, err := pkt.BoundFrom(b, clns.LSPFixedSize, tlvlen)
	if err != nil {
		return nil, b, err
	}
	lsp.TLVs = tlv.DecodeAll(region)
	return lsp, rest, nil
}

// Append appends the encoding of the LSP to b. The PDU length is recomputed
// from the encoded TLVs, skipped TLVs are not encoded and the checksum is
// copied as is.
func (lsp *LSP) Append(b []byte) ([]byte, error) {
	start := len(b)
	b = lsp.Header.Append(b)
	b = pkt.AppendUInt16(b, 0)
	b = pkt.AppendUInt16(b, lsp.Lifetime)
	b = append(b, lsp.LSPID[:]...)
	b = pkt.AppendUInt32(b, lsp.SeqNo)
	b = pkt.AppendUInt16(b, lsp.Cksum)
	b = append(b, lsp.TypeBlock)
	b, err := tlv.AppendTLVs(b, lsp.TLVs)
	if err != nil {
		return b[:start], err
	}
	pdulen := len(b) - start
	if pdulen > 0xffff {
		return b[:start], pkt.ErrMalformedLength(fmt.Sprintf("LSP pdulen %d too large", pdulen))
	}
	pkt.PutUInt16(b[start+clns.HdrCLNSSize+clns.HdrLSPPDULen:], uint16(pdulen))
	return b, nil
}
