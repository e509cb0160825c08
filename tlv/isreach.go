package tlv

import (
	"encoding/json"

	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/pkt"
)

// Neighbor encoding within the extended IS reachability TLV (RFC5305 3).
//
//	[ node id (7) ][ metric (3) ][ sub-TLV len (1) ][ sub-TLVs ... ]
const (
	NeighborMetricOff    = clns.NodeIDLen
	NeighborSubTLVLenOff = NeighborMetricOff + 3
	NeighborFixedSize    = NeighborSubTLVLenOff + 1
)

// MaxExtMetric is the largest usable neighbor metric, 0xFFFFFF is reserved
// (RFC5305 3).
const MaxExtMetric = 0xFFFFFE

// Neighbor is one IS neighbor of an extended IS reachability TLV.
type Neighbor struct {
	ID        clns.NodeID
	Metric    [3]byte
	SubTLVLen uint8
	// SubTLVs is nil when SubTLVLen is zero.
	SubTLVs []SubTLV
}

// MetricValue returns the 24 bit metric as an integer.
func (n *Neighbor) MetricValue() uint32 {
	return pkt.GetUInt24(n.Metric[:])
}

// HasSubTLVs returns true if the neighbor carried a sub-TLV region.
func (n *Neighbor) HasSubTLVs() bool {
	return n.SubTLVs != nil
}

// IntfAddrs returns the IPv4 interface address sub-TLVs of the neighbor.
func (n *Neighbor) IntfAddrs() []*IPv4IntfAddr {
	var addrs []*IPv4IntfAddr
	for _, s := range n.SubTLVs {
		if a, ok := s.(*IPv4IntfAddr); ok {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

// MarshalJSON renders the neighbor with its metric as a number.
func (n Neighbor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        clns.NodeID `json:"id"`
		Metric    uint32      `json:"metric"`
		SubTLVLen uint8       `json:"subtlv-len"`
		SubTLVs   []SubTLV    `json:"subtlvs,omitempty"`
	}{n.ID, n.MetricValue(), n.SubTLVLen, n.SubTLVs})
}

// DecodeNeighbor decodes one neighbor from the start of b. The sub-TLV region
// is bounded to the neighbor's declared sub-TLV length and is only decoded
// when that length is non-zero.
func DecodeNeighbor(b []byte) (Neighbor, []byte, error) {
	var n Neighbor
	if err := pkt.Need(b, NeighborFixedSize); err != nil {
		return n, b, err
	}
	copy(n.ID[:], b[:clns.NodeIDLen])
	copy(n.Metric[:], b[NeighborMetricOff:NeighborSubTLVLenOff])
	n.SubTLVLen = b[NeighborSubTLVLenOff]
	if n.SubTLVLen == 0 {
		return n, b[NeighborFixedSize:], nil
	}
	region, rest, err := pkt.BoundFrom(b, NeighborFixedSize, int(n.SubTLVLen))
	if err != nil {
		return Neighbor{}, b, err
	}
	n.SubTLVs = DecodeSubTLVs(region)
	return n, rest, nil
}

// ExtISReach is the extended IS reachability TLV (type 22).
type ExtISReach struct {
	Hdr       Header     `json:"header"`
	Neighbors []Neighbor `json:"neighbors"`
}

// TLVType returns TypeExtIsReach.
func (r *ExtISReach) TLVType() Type { return r.Hdr.Type }

func (*ExtISReach) isTLV() {}

// DecodeExtISReach decodes an extended IS reachability TLV from the start of
// b. Trailing bytes of the TLV value too short to hold a neighbor are
// dropped.
func DecodeExtISReach(b []byte) (*ExtISReach, []byte, error) {
	hdr, err := decodeHeader(b)
	if err != nil {
		return nil, b, err
	}
	if hdr.Type != TypeExtIsReach {
		return nil, b, pkt.ErrVerifyFailed{Want: uint8(TypeExtIsReach), Got: uint8(hdr.Type)}
	}
	region, rest, err := pkt.BoundFrom(b, HdrSize, int(hdr.Length))
	if err != nil {
		return nil, b, err
	}
	nbrs, _ := pkt.DecodeAll[Neighbor](region, DecodeNeighbor)
	return &ExtISReach{Hdr: hdr, Neighbors: nbrs}, rest, nil
}
