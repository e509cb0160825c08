package clns

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net"
	"strings"

	"github.com/nrybowski/isis-parser/pkt"
)

// ===============================
// Packet Headers (offset values).
// ===============================

// ------------------------------------
// ISO 10589 CLNS header offset values.
// ------------------------------------
const (
	HdrCLNSIDRP = iota
	HdrCLNSLen
	HdrCLNSVer
	HdrCLNSSysIDLen
	HdrCLNSPDUType
	HdrCLNSVer2
	HdrCLNSResv
	HdrCLNSMaxArea
	HdrCLNSSize
)

// ---------------------------
// IIH - Common header offsets
// ---------------------------
const (
	HdrIIHCircType = iota
	HdrIIHSrcID
	HdrIIHHoldTime = HdrIIHSrcID + SysIDLen
	HdrIIHPDULen   = HdrIIHHoldTime + 2
)

// -------------------------------------
// IIH - LAN Hello header offset values.
// -------------------------------------
const (
	HdrIIHLANPriority = HdrIIHPDULen + 2
	HdrIIHLANLANID    = HdrIIHLANPriority + 1
	HdrIIHLANSize     = HdrIIHLANLANID + LANIDLen
)

// -------------------------------------
// IIH - P2P Hello header offset values.
// -------------------------------------
const (
	HdrIIHLclCircID = HdrIIHPDULen + 2
	HdrIIHP2PSize   = HdrIIHLclCircID + 1
)

// ------------------------
// LSP header offset values
// ------------------------
const (
	HdrLSPPDULen   = iota
	HdrLSPLifetime = HdrLSPPDULen + 2
	HdrLSPLSPID    = HdrLSPLifetime + 2
	HdrLSPSeqNo    = HdrLSPLSPID + LSPIDLen
	HdrLSPCksum    = HdrLSPSeqNo + 4
	HdrLSPFlags    = HdrLSPCksum + 2
	HdrLSPSize     = HdrLSPFlags + 1
)

// -------------------------
// CSNP header offset values
// -------------------------
const (
	HdrCSNPPDULen     = iota
	HdrCSNPSrcID      = HdrCSNPPDULen + 2
	HdrCSNPStartLSPID = HdrCSNPSrcID + NodeIDLen
	HdrCSNPEndLSPID   = HdrCSNPStartLSPID + LSPIDLen
	HdrCSNPSize       = HdrCSNPEndLSPID + LSPIDLen
)

// -------------------------
// PSNP header offset values
// -------------------------
const (
	HdrPSNPPDULen = iota
	HdrPSNPSrcID  = HdrPSNPPDULen + 2
	HdrPSNPSize   = HdrPSNPSrcID + NodeIDLen
)

// LSPFixedSize is the size of everything in an LSP before the TLVs.
const LSPFixedSize = HdrCLNSSize + HdrLSPSize

// ======================================================
// Protocol constants for various headers and structures.
// ======================================================

const (
	IDRPISIS      = 0x83
	Version       = 1
	Version2      = 1
	MaxArea       = 3
	SysIDLen      = 6
	LANIDLen      = 7
	NodeIDLen     = 7
	LSPIDLen      = 8
	LSPPNodeIDOff = 6
	LSPSegmentOff = 7
	MaxAge        = 1200
	ZeroMaxAge    = 60
)

// PDUTypeMask removes the reserved bits from the PDU type octet.
const PDUTypeMask = 0x1f

// ====================================
// Protocol Types and Support Functions
// ====================================

// PDUType represents a PDU type
type PDUType uint8

// ---------
// PDU Types
// ---------
const (
	PDUTypeIIHLANL1 PDUType = 15
	PDUTypeIIHLANL2 PDUType = 16
	PDUTypeIIHP2P   PDUType = 17
	PDUTypeLSPL1    PDUType = 18
	PDUTypeLSPL2    PDUType = 20
	PDUTypeCSNPL1   PDUType = 24
	PDUTypeCSNPL2   PDUType = 25
	PDUTypePSNPL1   PDUType = 26
	PDUTypePSNPL2   PDUType = 27
)

// PDUTypeDesc maps PDU types to their names.
var PDUTypeDesc = map[PDUType]string{
	PDUTypeIIHLANL1: "PDUTypeIIHLANL1",
	PDUTypeIIHLANL2: "PDUTypeIIHLANL2",
	PDUTypeIIHP2P:   "PDUTypeIIHP2P",
	PDUTypeLSPL1:    "PDUTypeLSPL1",
	PDUTypeLSPL2:    "PDUTypeLSPL2",
	PDUTypeCSNPL1:   "PDUTypeCSNPL1",
	PDUTypeCSNPL2:   "PDUTypeCSNPL2",
	PDUTypePSNPL1:   "PDUTypePSNPL1",
	PDUTypePSNPL2:   "PDUTypePSNPL2",
}

func (typ PDUType) String() string {
	if desc, ok := PDUTypeDesc[typ]; ok {
		return desc
	}
	return fmt.Sprintf("%d", uint8(typ))
}

// HdrLenMap maps PDU type to header lengths
var HdrLenMap = map[PDUType]uint8{
	PDUTypeIIHLANL1: HdrCLNSSize + HdrIIHLANSize,
	PDUTypeIIHLANL2: HdrCLNSSize + HdrIIHLANSize,
	PDUTypeIIHP2P:   HdrCLNSSize + HdrIIHP2PSize,
	PDUTypeLSPL1:    HdrCLNSSize + HdrLSPSize,
	PDUTypeLSPL2:    HdrCLNSSize + HdrLSPSize,
	PDUTypeCSNPL1:   HdrCLNSSize + HdrCSNPSize,
	PDUTypeCSNPL2:   HdrCLNSSize + HdrCSNPSize,
	PDUTypePSNPL1:   HdrCLNSSize + HdrPSNPSize,
	PDUTypePSNPL2:   HdrCLNSSize + HdrPSNPSize,
}

// PDULenOffMap provides the offset in the PDU of the PDU length field.
var PDULenOffMap = map[PDUType]int{
	PDUTypeIIHLANL1: HdrCLNSSize + HdrIIHPDULen,
	PDUTypeIIHLANL2: HdrCLNSSize + HdrIIHPDULen,
	PDUTypeIIHP2P:   HdrCLNSSize + HdrIIHPDULen,
	PDUTypeLSPL1:    HdrCLNSSize + HdrLSPPDULen,
	PDUTypeLSPL2:    HdrCLNSSize + HdrLSPPDULen,
	PDUTypeCSNPL1:   HdrCLNSSize + HdrCSNPPDULen,
	PDUTypeCSNPL2:   HdrCLNSSize + HdrCSNPPDULen,
	PDUTypePSNPL1:   HdrCLNSSize + HdrPSNPPDULen,
	PDUTypePSNPL2:   HdrCLNSSize + HdrPSNPPDULen,
}

// AllL1IS is the Multicast MAC to reach all level-1 IS
var AllL1IS = net.HardwareAddr{0x01, 0x80, 0xC2, 0x00, 0x00, 0x14}

// AllL2IS is the Multicast MAC to reach all level-2 IS
var AllL2IS = net.HardwareAddr{0x01, 0x80, 0xC2, 0x00, 0x00, 0x15}

// SystemID is a 6 octet system identifier all IS have uniq system IDs
type SystemID [SysIDLen]byte

// NodeID identifies a node in the network graph. It is comprised of a system ID
// and a pseudo-node byte for identifying LAN Pnodes (or 0 for real nodes).
type NodeID [NodeIDLen]byte

// LSPID identifies an LSP segment for a node in the network graph, it is
// comprised of a NodeID and a final segment octet to allow for multiple
// segments to describe an full LSP.
type LSPID [LSPIDLen]byte

func (id SystemID) String() string {
	return ISOString(id[:], false)
}

func (id NodeID) String() string {
	return fmt.Sprintf("%s.%02x", ISOString(id[:SysIDLen], false), id[LSPPNodeIDOff])
}

// SystemID returns the system ID portion of the node ID.
func (id NodeID) SystemID() (sysid SystemID) {
	copy(sysid[:], id[:SysIDLen])
	return
}

// MarshalText renders the node ID in ISO form.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// String renders the LSPID as xxxx.xxxx.xxxx.pn-fr
func (id LSPID) String() string {
	return fmt.Sprintf("%s.%02x-%02x", ISOString(id[:SysIDLen], false),
		id[LSPPNodeIDOff], id[LSPSegmentOff])
}

// SystemID returns the originating system ID.
func (id LSPID) SystemID() (sysid SystemID) {
	copy(sysid[:], id[:SysIDLen])
	return
}

// NodeID returns the node (system + pseudonode) portion of the LSPID.
func (id LSPID) NodeID() (nodeid NodeID) {
	copy(nodeid[:], id[:NodeIDLen])
	return
}

// PseudoID returns the pseudonode ID.
func (id LSPID) PseudoID() uint8 {
	return id[LSPPNodeIDOff]
}

// Fragment returns the LSP fragment (segment) number.
func (id LSPID) Fragment() uint8 {
	return id[LSPSegmentOff]
}

// Compare orders LSPIDs by their octets; it returns -1, 0 or 1.
func (id LSPID) Compare(other LSPID) int {
	return bytes.Compare(id[:], other[:])
}

// MarshalText renders the LSPID in ISO form.
func (id LSPID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// ParseLSPID parses an LSPID given in the form xxxx.xxxx.xxxx.pn-fr, the
// fragment may be omitted (it is then 0).
func ParseLSPID(s string) (LSPID, error) {
	var id LSPID
	s = strings.Replace(s, "-", "", -1)
	b, err := ISODecode(s)
	if err != nil {
		return id, err
	}
	switch len(b) {
	case LSPIDLen, NodeIDLen:
		copy(id[:], b)
		return id, nil
	}
	return id, fmt.Errorf("invalid LSPID %q: %d octets", s, len(b))
}

// ISOString returns a string representation of an ISO address (e.g., system ID
// or an area address etc), these take the form [xx.]xxxx[.xxxx.xxxx] or
// xxxx[.xxxx.xxxx][.xx] depending on whether extratail is true or not.
func ISOString(iso []byte, extratail bool) string {
	ilen := len(iso)
	wlen := ilen / 2
	exb := (ilen % 2) == 1
	var f string
	if !exb {
		f = strings.Repeat(".%02x%02x", wlen)[1:]
	} else if extratail {
		f = strings.Repeat(".%02x%02x", wlen+1)[1 : 9*(wlen+1)-5+1]
	} else {
		f = strings.Repeat(".%02x%02x", wlen+1)[5 : 9*(wlen+1)]
	}
	is := make([]interface{}, len(iso))
	for i, v := range iso {
		is[i] = v
	}
	return fmt.Sprintf(f, is...)
}

// ISODecode returns a byte slice of the hexidecimal string value given in "ISO"
// form
func ISODecode(isos string) (iso []byte, err error) {
	isos = strings.Replace(isos, ".", "", -1)
	iso, err = hex.DecodeString(isos)
	return
}

// GetPDUType returns the PDU type from the payload or an error if it is an
// unknown type.
func GetPDUType(payload []byte) (PDUType, error) {
	if err := pkt.Need(payload, HdrCLNSSize); err != nil {
		return 0, err
	}
	pdutype := PDUType(payload[HdrCLNSPDUType] & PDUTypeMask)
	if _, ok := HdrLenMap[pdutype]; !ok {
		return pdutype, ErrUnkPDUType(pdutype)
	}
	return pdutype, nil
}

// GetPDULen returns the value of the PDU length field of a PDU of known type.
func GetPDULen(payload []byte) (uint16, error) {
	pdutype, err := GetPDUType(payload)
	if err != nil {
		return 0, err
	}
	off := PDULenOffMap[pdutype]
	if err := pkt.Need(payload, off+2); err != nil {
		return 0, err
	}
	return pkt.GetUInt16(payload[off:]), nil
}

// ValidatePacket validates (to an extent) an IS-IS PDU. (ISO10589 8.4.2.1 and
// 7.3.15.{1,2}: 2, 4, 5) Checked Valid Items: PDU Type, Header Length, PDU
// Length, Advertised sizes.
func ValidatePacket(payload []byte) error {
	if err := pkt.Need(payload, HdrCLNSSize); err != nil {
		return err
	}
	if payload[HdrCLNSIDRP] != IDRPISIS {
		return ErrUnsupportedIRPD(payload[HdrCLNSIDRP])
	}
	pdutype, err := GetPDUType(payload)
	if err != nil {
		return err
	}

	if HdrLenMap[pdutype] != payload[HdrCLNSLen] {
		return ErrInvalidPacket(
			fmt.Sprintf("header length mismatch, expected %d got %d", HdrLenMap[pdutype], payload[HdrCLNSLen]))
	}

	pdulen, err := GetPDULen(payload)
	if err != nil {
		return err
	}
	if int(pdulen) > len(payload) {
		return ErrInvalidPacket(
			fmt.Sprintf("pdulen %d greater than payload %d", pdulen, len(payload)))
	}

	// ISO10589: 7.3.15.1: 4
	sysidlen := payload[HdrCLNSSysIDLen]
	if sysidlen != 0 && sysidlen != SysIDLen {
		return ErrInvalidPacket(
			fmt.Sprintf("TRAP iDFieldLengthMismtach: %d", sysidlen))
	}
	// ISO10589 7.3.15.1: 5)
	maxarea := payload[HdrCLNSMaxArea]
	if maxarea != 0 && maxarea != MaxArea {
		return ErrInvalidPacket(
			fmt.Sprintf("TRAP maximumAreaAddressesMismatch %d", maxarea))
	}
	return nil
}
