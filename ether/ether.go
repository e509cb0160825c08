// Package ether extracts IS-IS PDUs from 802.3/802.2 LLC Ethernet frames.
package ether

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ------------------------------------
// 802.3 Ethernet header offset values.
// ------------------------------------
const (
	HdrEthDest = 0
	HdrEthSrc  = HdrEthDest + 6
	HdrEthLen  = HdrEthSrc + 6
	HdrEthSize = HdrEthLen + 2
)

// -------------------------------
// 802.2 LLC header offset values.
// -------------------------------
const (
	HdrLLCDSAP = iota // 802.2 LLC header offset values
	HdrLLCSSAP        // 802.2 LLC header offset values
	HdrLLCCTRL        // 802.2 LLC header offset values
	HdrLLCSize
)

// LLC values carried by IS-IS frames.
const (
	LLCSAPISO  = 0xfe
	LLCCtrlUI  = 0x03
	MinFrameSz = 60
)

// Frame represents an Ethernet frame
type Frame []byte

// MAC is a MAC address usable as a map key.
type MAC [6]byte

// MACKey returns a MAC key (array) from a slice representing a MAC
func MACKey(addr net.HardwareAddr) (mac MAC) {
	copy(mac[:], addr)
	return
}

// GetDst returns the destination MAC of the Ethernet frame.
func (p Frame) GetDst() net.HardwareAddr {
	return net.HardwareAddr(p[HdrEthDest:HdrEthSrc])
}

// GetSrc returns the source MAC address of the Ethernet frame.
func (p Frame) GetSrc() net.HardwareAddr {
	return net.HardwareAddr(p[HdrEthSrc:HdrEthLen])
}

// GetTypeLen returns the length field (type) of the Ethernet frame.
func (p Frame) GetTypeLen() int {
	return int(p[HdrEthLen])<<8 | int(p[HdrEthLen+1])
}

// ErrInvalidFrame indicates that the received Ethernet frame was invalid in
// some way.
type ErrInvalidFrame string

func (e ErrInvalidFrame) Error() string {
	return string(e)
}

// ErrOurFrame is returned if we are dropping a frame we received from ourselves
type ErrOurFrame bool

func (e ErrOurFrame) Error() string {
	return "received a frame with our src mac"
}

// ErrNonLLCFrame indicates that the received Ethernet frame was an
// non-llc frame (probably an ethertype)
type ErrNonLLCFrame string

func (e ErrNonLLCFrame) Error() string {
	return string(e)
}

// ErrNonISOFrame indicates an LLC frame for some other protocol than ISO
// network layer.
type ErrNonISOFrame string

func (e ErrNonISOFrame) Error() string {
	return string(e)
}

// ValidateLLCFrame checks the Ethernet and LLC headers and returns the
// payload or an error if something is incorrect. Frames sourced from one of
// ourSNPA are dropped. Ethernet padding is removed from the payload.
func (p Frame) ValidateLLCFrame(ourSNPA map[MAC]bool) ([]byte, *layers.LLC, error) {
	if len(p) < HdrEthSize+HdrLLCSize {
		return nil, nil, ErrInvalidFrame(fmt.Sprintf("short frame %d", len(p)))
	}
	if ours := ourSNPA[MACKey(p.GetSrc())]; ours {
		return nil, nil, ErrOurFrame(true)
	}

	packet := gopacket.NewPacket(p, layers.LayerTypeEthernet, gopacket.DecodeOptions{
		Lazy:   true,
		NoCopy: true,
	})
	ethLayer := packet.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return nil, nil, ErrInvalidFrame("no ethernet header")
	}
	eth := ethLayer.(*layers.Ethernet)
	if eth.EthernetType != layers.EthernetTypeLLC {
		return nil, nil, ErrNonLLCFrame(fmt.Sprintf("non-llc ethertype 0x%x", uint16(eth.EthernetType)))
	}
	if int(eth.Length) > len(p)-HdrEthSize {
		return nil, nil, ErrInvalidFrame(fmt.Sprintf("invalid ethernet frame llc len (%d) and payload (%d) mismatch",
			eth.Length, len(p)-HdrEthSize))
	}

	llcLayer := packet.Layer(layers.LayerTypeLLC)
	if llcLayer == nil {
		return nil, nil, ErrInvalidFrame("no llc header")
	}
	llc := llcLayer.(*layers.LLC)
	if llc.DSAP != LLCSAPISO || llc.SSAP != LLCSAPISO {
		return nil, nil, ErrNonISOFrame(fmt.Sprintf("llc dsap 0x%x ssap 0x%x", llc.DSAP, llc.SSAP))
	}
	return llc.Payload, llc, nil
}

// LLCPayload returns the IS-IS PDU carried by an Ethernet frame.
func LLCPayload(frame []byte) ([]byte, error) {
	payload, _, err := Frame(frame).ValidateLLCFrame(nil)
	return payload, err
}

// NewLLCFrame returns an Ethernet frame carrying pdu from src to dst, padded
// to the minimum frame size.
func NewLLCFrame(dst, src net.HardwareAddr, pdu []byte) Frame {
	llen := HdrLLCSize + len(pdu)
	p := make(Frame, 0, HdrEthSize+llen+MinFrameSz)
	p = append(p, dst[:6]...)
	p = append(p, src[:6]...)
	p = append(p, byte(llen>>8), byte(llen))
	p = append(p, LLCSAPISO, LLCSAPISO, LLCCtrlUI)
	p = append(p, pdu...)
	for len(p) < MinFrameSz {
		p = append(p, 0)
	}
	return p
}
