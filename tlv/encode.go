package tlv

import (
	"fmt"

	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/pkt"
)

// MaxValueLen is the largest value a single TLV can carry.
const MaxValueLen = 255

// ErrValueTooLong is returned when an encoded TLV value does not fit the
// one octet length field.
type ErrValueTooLong struct {
	Type Type
	Len  int
}

func (e ErrValueTooLong) Error() string {
	return fmt.Sprintf("ErrValueTooLong: %s value length %d", e.Type, e.Len)
}

// ErrEmptySubTLVs is returned when a neighbor has a sub-TLV region but none
// of its sub-TLVs can be encoded. Writing a zero length would drop the region.
type ErrEmptySubTLVs struct {
	ID clns.NodeID
}

func (e ErrEmptySubTLVs) Error() string {
	return fmt.Sprintf("ErrEmptySubTLVs: neighbor %s sub-TLV region encodes empty", e.ID)
}

// Append appends the encoding of the sub-TLV to b.
func (s *IPv4IntfAddr) Append(b []byte) []byte {
	return appendIPv4Sub(b, SubTypeIPv4IntfAddr, s.Addr.As4())
}

// Append appends the encoding of the sub-TLV to b.
func (s *IPv4NbrAddr) Append(b []byte) []byte {
	return appendIPv4Sub(b, SubTypeIPv4NbrAddr, s.Addr.As4())
}

// Append appends the header of the skipped sub-TLV to b. The value was not
// kept so Length zero octets stand in for it.
func (s UnsupportedSub) Append(b []byte) []byte {
	b = append(b, byte(s.Hdr.Type), s.Hdr.Length)
	return append(b, make([]byte, s.Hdr.Length)...)
}

func appendIPv4Sub(b []byte, typ SubType, addr [4]byte) []byte {
	b = append(b, byte(typ), IPv4AddrLen)
	return append(b, addr[:]...)
}

// Append appends the encoding of the neighbor to b. The sub-TLV length is
// computed from the encoded sub-TLVs.
func (n *Neighbor) Append(b []byte) ([]byte, error) {
	b = append(b, n.ID[:]...)
	b = append(b, n.Metric[:]...)
	lenOff := len(b)
	b = append(b, 0)
	for _, s := range n.SubTLVs {
		switch s := s.(type) {
		case *IPv4IntfAddr:
			b = s.Append(b)
		case *IPv4NbrAddr:
			b = s.Append(b)
		case UnsupportedSub:
			b = s.Append(b)
		}
	}
	sublen := len(b) - lenOff - 1
	if sublen == 0 && n.HasSubTLVs() {
		return b[:lenOff-NeighborSubTLVLenOff], ErrEmptySubTLVs{n.ID}
	}
	if sublen > MaxValueLen {
		return b[:lenOff-NeighborSubTLVLenOff], ErrValueTooLong{TypeExtIsReach, sublen}
	}
	b[lenOff] = byte(sublen)
	return b, nil
}

// Append appends the encoding of the TLV to b.
func (r *ExtISReach) Append(b []byte) ([]byte, error) {
	start := len(b)
	b = append(b, byte(TypeExtIsReach), 0)
	var err error
	for i := range r.Neighbors {
		if b, err = r.Neighbors[i].Append(b); err != nil {
			return b[:start], err
		}
	}
	vlen := len(b) - start - HdrSize
	if vlen > MaxValueLen {
		return b[:start], ErrValueTooLong{TypeExtIsReach, vlen}
	}
	b[start+1] = byte(vlen)
	return b, nil
}

// AppendTLVs appends the encoding of each TLV in tlvs to b. Unsupported TLVs
// carry no value and are not encoded.
func AppendTLVs(b []byte, tlvs []TLV) ([]byte, error) {
	var err error
	for _, t := range tlvs {
		if r, ok := t.(*ExtISReach); ok {
			if b, err = r.Append(b); err != nil {
				return b, err
			}
		}
	}
	return b, nil
}

// SetMetric sets the 24 bit neighbor metric.
func (n *Neighbor) SetMetric(metric uint32) {
	var m [4]byte
	pkt.PutUInt32(m[:], metric)
	copy(n.Metric[:], m[1:])
}
