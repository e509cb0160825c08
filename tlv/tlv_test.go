package tlv

import (
	"net/netip"
	"testing"

	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/pkt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

var (
	nbrID     = []byte{0x12, 0x34, 0x56, 0x78, 0x90, 0x12, 0x34}
	nbrMetric = []byte{0x00, 0x00, 0x01}
)

func nbrBytes(subs ...byte) []byte {
	return concat(nbrID, nbrMetric, []byte{byte(len(subs))}, subs)
}

func decodeNbr(t *testing.T, b []byte) Neighbor {
	t.Helper()
	n, rest, err := DecodeNeighbor(b)
	require.NoError(t, err)
	require.Empty(t, rest)
	return n
}

func TestDecodeNeighbor(t *testing.T) {
	t.Run("no sub-TLVs", func(t *testing.T) {
		b := []byte{0x12, 0x34, 0x56, 0x78, 0x90, 0x12, 0x34, 0x00, 0x00, 0x01, 0x00}
		n, rest, err := DecodeNeighbor(b)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, clns.NodeID{0x12, 0x34, 0x56, 0x78, 0x90, 0x12, 0x34}, n.ID)
		assert.Equal(t, [3]byte{0, 0, 1}, n.Metric)
		assert.Equal(t, uint32(1), n.MetricValue())
		assert.Equal(t, uint8(0), n.SubTLVLen)
		assert.Nil(t, n.SubTLVs)
		assert.False(t, n.HasSubTLVs())

		clone := n
		assert.True(t, NeighborEqual(&n, &clone))
	})

	t.Run("with sub-TLVs", func(t *testing.T) {
		b := append(nbrBytes(
			0x06, 0x04, 0xc0, 0xa8, 0x00, 0x00,
			0x08, 0x04, 0x0a, 0x00, 0x00, 0x01,
		), 0xff)
		n, rest, err := DecodeNeighbor(b)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff}, rest)
		assert.Equal(t, uint8(12), n.SubTLVLen)
		require.Len(t, n.SubTLVs, 2)

		intf, ok := n.SubTLVs[0].(*IPv4IntfAddr)
		require.True(t, ok)
		assert.Equal(t, netip.MustParseAddr("192.168.0.0"), intf.Addr)
		assert.Equal(t, SubTypeIPv4IntfAddr, intf.SubTLVType())

		nbr, ok := n.SubTLVs[1].(*IPv4NbrAddr)
		require.True(t, ok)
		assert.Equal(t, netip.MustParseAddr("10.0.0.1"), nbr.Addr)
	})

	t.Run("sub-TLVs cannot escape their region", func(t *testing.T) {
		// The sub-TLV claims 8 value bytes but the region holds 4.
		b := append(nbrBytes(0x06, 0x08, 0xc0, 0xa8, 0x00, 0x01), 0x02, 0x03, 0x04, 0x05)
		n, rest, err := DecodeNeighbor(b)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x02, 0x03, 0x04, 0x05}, rest)
		assert.NotNil(t, n.SubTLVs)
		assert.Empty(t, n.SubTLVs)
		assert.True(t, n.HasSubTLVs())
	})

	t.Run("truncated fixed part", func(t *testing.T) {
		b := nbrBytes()[:10]
		_, rest, err := DecodeNeighbor(b)
		assert.Equal(t, pkt.ErrTruncated{Need: 11, Have: 10}, err)
		assert.Equal(t, b, rest)
	})

	t.Run("truncated sub-TLV region", func(t *testing.T) {
		b := nbrBytes(0x06, 0x04, 0xc0, 0xa8, 0x00, 0x01)[:14]
		_, _, err := DecodeNeighbor(b)
		assert.Equal(t, pkt.ErrTruncated{Need: 17, Have: 14}, err)
		assert.True(t, pkt.IsTruncated(err))
	})
}

func TestDecodeSubTLV(t *testing.T) {
	t.Run("longer than an address", func(t *testing.T) {
		b := []byte{0x06, 0x06, 0x01, 0x02, 0x03, 0x04, 0xaa, 0xbb, 0x07}
		s, rest, err := DecodeSubTLV(b)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x07}, rest)
		assert.Equal(t, netip.AddrFrom4([4]byte{1, 2, 3, 4}), s.(*IPv4IntfAddr).Addr)
	})

	t.Run("shorter than an address", func(t *testing.T) {
		_, _, err := DecodeSubTLV([]byte{0x08, 0x02, 0x01, 0x02})
		assert.True(t, pkt.IsMalformed(err))
	})

	t.Run("verify", func(t *testing.T) {
		_, _, err := DecodeIPv4NbrAddr([]byte{0x06, 0x04, 0x01, 0x02, 0x03, 0x04})
		assert.Equal(t, pkt.ErrVerifyFailed{Want: 8, Got: 6}, err)
	})

	t.Run("unsupported is skipped", func(t *testing.T) {
		subs := DecodeSubTLVs([]byte{
			0x09, 0x04, 0x00, 0x00, 0x00, 0x01,
			0x06, 0x04, 0x01, 0x02, 0x03, 0x04,
		})
		require.Len(t, subs, 2)
		assert.Equal(t, UnsupportedSub{Hdr: SubHeader{Type: SubTypeMaxLinkBW, Length: 4}}, subs[0])
		assert.Equal(t, SubTypeIPv4IntfAddr, subs[1].SubTLVType())
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := DecodeSubTLV(nil)
		assert.Equal(t, pkt.ErrTruncated{Need: 1, Have: 0}, err)
	})
}

func TestDecodeExtISReach(t *testing.T) {
	t.Run("drops residual bytes", func(t *testing.T) {
		b := concat([]byte{byte(TypeExtIsReach), 13}, nbrBytes(), []byte{0xee, 0xee}, []byte{0x01})
		r, rest, err := DecodeExtISReach(b)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01}, rest)
		assert.Equal(t, Header{Type: TypeExtIsReach, Length: 13}, r.Hdr)
		assert.Len(t, r.Neighbors, 1)
	})

	t.Run("empty value", func(t *testing.T) {
		r, rest, err := DecodeExtISReach([]byte{byte(TypeExtIsReach), 0})
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.NotNil(t, r.Neighbors)
		assert.Empty(t, r.Neighbors)
	})

	t.Run("verify", func(t *testing.T) {
		_, _, err := DecodeExtISReach([]byte{byte(TypeIsReach), 0})
		assert.Equal(t, pkt.ErrVerifyFailed{Want: 22, Got: 2}, err)
		assert.True(t, pkt.IsVerifyFailed(err))
	})

	t.Run("truncated", func(t *testing.T) {
		_, _, err := DecodeExtISReach(concat([]byte{byte(TypeExtIsReach), 22}, nbrBytes()))
		assert.Equal(t, pkt.ErrTruncated{Need: 24, Have: 13}, err)
	})
}

func TestDecodeAll(t *testing.T) {
	t.Run("unsupported TLVs are skipped", func(t *testing.T) {
		region := concat(
			[]byte{byte(TypeNLPID), 2, 0xcc, 0x8e},
			[]byte{byte(TypeExtIsReach), 11}, nbrBytes(),
			[]byte{byte(TypeAreaAddrs), 0},
		)
		tlvs := DecodeAll(region)
		require.Len(t, tlvs, 3)
		assert.Equal(t, Unsupported{Hdr: Header{Type: TypeNLPID, Length: 2}}, tlvs[0])
		r, ok := tlvs[1].(*ExtISReach)
		require.True(t, ok)
		assert.Len(t, r.Neighbors, 1)
		assert.Equal(t, TypeAreaAddrs, tlvs[2].TLVType())
	})

	t.Run("unparsable tail is dropped", func(t *testing.T) {
		tlvs := DecodeAll([]byte{byte(TypeExtIsReach), 0, 0x05, 0x09})
		require.Len(t, tlvs, 1)
		assert.Equal(t, TypeExtIsReach, tlvs[0].TLVType())
	})

	t.Run("empty region", func(t *testing.T) {
		tlvs := DecodeAll(nil)
		assert.NotNil(t, tlvs)
		assert.Empty(t, tlvs)
	})

	assert.True(t, Supported(TypeExtIsReach))
	assert.False(t, Supported(TypeHostname))
}

func TestNeighborEqual(t *testing.T) {
	intf0 := []byte{0x06, 0x04, 0xc0, 0xa8, 0x00, 0x00}
	intf1 := []byte{0x06, 0x04, 0xc0, 0xa8, 0x00, 0x01}
	nbrA := []byte{0x08, 0x04, 0x0a, 0x00, 0x00, 0x01}
	nbrB := []byte{0x08, 0x04, 0x0a, 0x00, 0x00, 0x02}
	other := []byte{0x09, 0x04, 0x00, 0x00, 0x00, 0x01}

	plain := decodeNbr(t, nbrBytes())
	withIntf0 := decodeNbr(t, nbrBytes(intf0...))
	withIntf0NbrA := decodeNbr(t, nbrBytes(concat(intf0, nbrA)...))
	withNbrBIntf0 := decodeNbr(t, nbrBytes(concat(nbrB, intf0)...))
	withIntf1 := decodeNbr(t, nbrBytes(intf1...))
	withNbrOnly := decodeNbr(t, nbrBytes(nbrA...))
	withOther := decodeNbr(t, nbrBytes(other...))
	withTwoIntf := decodeNbr(t, nbrBytes(concat(intf0, intf0)...))
	metric2 := plain
	metric2.Metric = [3]byte{0, 0, 2}
	otherID := plain
	otherID.ID[6] = 0x35

	tests := []struct {
		name  string
		a, b  Neighbor
		equal bool
	}{
		{"no regions", plain, plain, true},
		{"region presence mismatch", plain, withIntf0, false},
		{"different interface address", withIntf0, withIntf1, false},
		{"same interface address", withIntf0, withIntf0, true},
		{"neighbor address ignored", withIntf0NbrA, withNbrBIntf0, true},
		{"neighbor address only", withIntf0, withIntf0NbrA, true},
		{"no interface address", withNbrOnly, withNbrOnly, false},
		{"only unsupported sub-TLVs", withOther, withOther, false},
		{"two interface addresses", withTwoIntf, withTwoIntf, false},
		{"different metric", plain, metric2, false},
		{"different id", plain, otherID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := tt.a, tt.b
			assert.Equal(t, tt.equal, NeighborEqual(&a, &b))
			assert.Equal(t, tt.equal, NeighborEqual(&b, &a), "not symmetric")
		})
	}

	t.Run("reflexive", func(t *testing.T) {
		for _, n := range []Neighbor{plain, withIntf0, withIntf0NbrA, withIntf1} {
			n := n
			assert.True(t, NeighborEqual(&n, &n))
		}
	})

	t.Run("nil", func(t *testing.T) {
		assert.True(t, NeighborEqual(nil, nil))
		assert.False(t, NeighborEqual(&plain, nil))
		assert.False(t, NeighborEqual(nil, &plain))
	})
}

func TestAppendRoundTrip(t *testing.T) {
	value := concat(
		nbrBytes(),
		nbrBytes(0x06, 0x04, 0xc0, 0xa8, 0x00, 0x00, 0x08, 0x04, 0x0a, 0x00, 0x00, 0x01),
	)
	in := concat([]byte{byte(TypeExtIsReach), byte(len(value))}, value)

	r, rest, err := DecodeExtISReach(in)
	require.NoError(t, err)
	require.Empty(t, rest)

	out, err := r.Append(nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out, err = AppendTLVs([]byte{0xaa}, []TLV{Unsupported{}, r})
	require.NoError(t, err)
	assert.Equal(t, concat([]byte{0xaa}, in), out)
}

func TestAppendUnsupportedSubTLVs(t *testing.T) {
	in := nbrBytes(0x09, 0x02, 0x00, 0x00)
	n := decodeNbr(t, in)
	require.Equal(t, []SubTLV{UnsupportedSub{Hdr: SubHeader{Type: SubTypeMaxLinkBW, Length: 2}}}, n.SubTLVs)

	out, err := n.Append(nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	again := decodeNbr(t, out)
	assert.True(t, again.HasSubTLVs())
	assert.Equal(t, n.SubTLVLen, again.SubTLVLen)
	assert.False(t, NeighborEqual(&n, &n))
	assert.False(t, NeighborEqual(&again, &again))

	t.Run("region with nothing to encode", func(t *testing.T) {
		n := decodeNbr(t, nbrBytes(0x06, 0x08, 0xc0, 0xa8, 0x00, 0x01))
		require.True(t, n.HasSubTLVs())
		out, err := n.Append([]byte{0x01})
		assert.Equal(t, ErrEmptySubTLVs{ID: n.ID}, err)
		assert.Equal(t, []byte{0x01}, out)
	})
}

func TestAppendTooLong(t *testing.T) {
	r := &ExtISReach{Neighbors: make([]Neighbor, 24)}
	out, err := r.Append([]byte{0x01})
	assert.Equal(t, ErrValueTooLong{Type: TypeExtIsReach, Len: 24 * NeighborFixedSize}, err)
	assert.Equal(t, []byte{0x01}, out)
}

func TestSetMetric(t *testing.T) {
	var n Neighbor
	n.SetMetric(MaxExtMetric)
	assert.Equal(t, [3]byte{0xff, 0xff, 0xfe}, n.Metric)
	assert.Equal(t, uint32(MaxExtMetric), n.MetricValue())
}
