package update

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/pdu"
	"github.com/nrybowski/isis-parser/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lspid(id byte) clns.LSPID {
	return clns.LSPID{0x10, 0x00, 0x00, 0x00, 0x00, id, 0x00, 0x00}
}

func nbr(id byte, metric uint32) tlv.Neighbor {
	n := tlv.Neighbor{ID: clns.NodeID{0x10, 0x00, 0x00, 0x00, 0x00, id, 0x00}}
	n.SetMetric(metric)
	return n
}

func newLSP(id byte, seqno uint32, lifetime uint16, nbrs ...tlv.Neighbor) *pdu.LSP {
	lsp := &pdu.LSP{
		Header:   pdu.Header{IRPD: clns.IDRPISIS, PDUType: clns.PDUTypeLSPL2},
		LSPID:    lspid(id),
		SeqNo:    seqno,
		Lifetime: lifetime,
	}
	if len(nbrs) > 0 {
		lsp.TLVs = []tlv.TLV{&tlv.ExtISReach{
			Hdr:       tlv.Header{Type: tlv.TypeExtIsReach},
			Neighbors: nbrs,
		}}
	}
	return lsp
}

func kinds(changes []Change) []ChangeKind {
	var k []ChangeKind
	for _, c := range changes {
		k = append(k, c.Kind)
	}
	return k
}

func TestReceive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	db := NewDB(clock, 0)

	result, changes := db.Receive(newLSP(1, 1, 1200, nbr(2, 10), nbr(3, 10)))
	assert.Equal(t, NEWER, result)
	assert.Equal(t, []ChangeKind{LSPAdded, AdjAdded, AdjAdded}, kinds(changes))
	assert.Equal(t, clns.NodeID{0x10, 0, 0, 0, 0, 2, 0}, *changes[1].Neighbor)
	assert.Nil(t, changes[1].Old)
	assert.Equal(t, uint32(10), changes[1].New.MetricValue())
	assert.Equal(t, 1, db.Len())

	t.Run("same", func(t *testing.T) {
		result, changes := db.Receive(newLSP(1, 1, 1100, nbr(2, 10), nbr(3, 10)))
		assert.Equal(t, SAME, result)
		assert.Empty(t, changes)
	})

	t.Run("older", func(t *testing.T) {
		result, changes := db.Receive(newLSP(1, 0, 1200))
		assert.Equal(t, OLDER, result)
		assert.Empty(t, changes)
	})

	t.Run("newer", func(t *testing.T) {
		result, changes := db.Receive(newLSP(1, 2, 1200, nbr(2, 20), nbr(4, 10)))
		assert.Equal(t, NEWER, result)
		require.Equal(t, []ChangeKind{AdjChanged, AdjAdded, AdjRemoved}, kinds(changes))
		assert.Equal(t, uint32(10), changes[0].Old.MetricValue())
		assert.Equal(t, uint32(20), changes[0].New.MetricValue())
		assert.Equal(t, byte(4), changes[1].Neighbor[5])
		assert.Equal(t, byte(3), changes[2].Neighbor[5])
		for _, c := range changes {
			assert.Equal(t, uint32(2), c.SeqNo)
			assert.Equal(t, lspid(1), c.LSPID)
		}
	})

	t.Run("refresh without change", func(t *testing.T) {
		result, changes := db.Receive(newLSP(1, 3, 1200, nbr(2, 20), nbr(4, 10)))
		assert.Equal(t, NEWER, result)
		assert.Empty(t, changes)
	})

	t.Run("purge", func(t *testing.T) {
		result, changes := db.Receive(newLSP(1, 3, 0))
		assert.Equal(t, NEWER, result)
		assert.Equal(t, []ChangeKind{LSPPurged, AdjRemoved, AdjRemoved}, kinds(changes))

		e, ok := db.Get(lspid(1))
		require.True(t, ok)
		assert.True(t, e.Purged)
		assert.Equal(t, uint16(0), e.Remaining)

		// A live copy with the same seqno is older than the purge.
		result, _ = db.Receive(newLSP(1, 3, 1200))
		assert.Equal(t, OLDER, result)
	})

	t.Run("revived", func(t *testing.T) {
		result, changes := db.Receive(newLSP(1, 4, 1200, nbr(2, 20)))
		assert.Equal(t, NEWER, result)
		assert.Equal(t, []ChangeKind{LSPAdded, AdjAdded}, kinds(changes))
	})

	s := db.Stats()
	assert.Equal(t, 1, s.LSPs)
	assert.Equal(t, uint64(5), s.Newer)
	assert.Equal(t, uint64(1), s.Same)
	assert.Equal(t, uint64(2), s.Older)
	assert.Equal(t, uint64(len(db.Changes(0))), s.Changes)
}

func TestReceiveUnknownPurge(t *testing.T) {
	db := NewDB(clockwork.NewFakeClock(), 0)
	result, changes := db.Receive(newLSP(1, 5, 0))
	assert.Equal(t, NEWER, result)
	assert.Empty(t, changes)
	assert.Equal(t, 0, db.Len())
	_, ok := db.Get(lspid(1))
	assert.False(t, ok)
}

func TestSweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	db := NewDB(clock, 0)
	db.Receive(newLSP(1, 1, 10, nbr(2, 10)))
	db.Receive(newLSP(2, 1, 1200))

	clock.Advance(5 * time.Second)
	assert.Empty(t, db.Sweep())
	e, _ := db.Get(lspid(1))
	assert.Equal(t, uint16(5), e.Remaining)

	clock.Advance(6 * time.Second)
	changes := db.Sweep()
	assert.Equal(t, []ChangeKind{LSPExpired, AdjRemoved}, kinds(changes))
	e, _ = db.Get(lspid(1))
	assert.True(t, e.Purged)
	assert.Equal(t, 2, db.Len())

	clock.Advance(clns.ZeroMaxAge * time.Second)
	assert.Empty(t, db.Sweep())
	assert.Equal(t, 1, db.Len())
	_, ok := db.Get(lspid(1))
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	db := NewDB(clockwork.NewFakeClock(), 0)
	for _, id := range []byte{3, 1, 2} {
		db.Receive(newLSP(id, 1, 1200))
	}
	entries := db.List()
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, lspid(byte(i+1)), e.LSP.LSPID)
		assert.Equal(t, uint16(1200), e.Remaining)
	}
}

func TestChangesLog(t *testing.T) {
	db := NewDB(clockwork.NewFakeClock(), 3)
	for id := byte(1); id <= 5; id++ {
		db.Receive(newLSP(id, 1, 1200))
	}
	all := db.Changes(0)
	require.Len(t, all, 3)
	assert.Equal(t, lspid(3), all[0].LSPID)
	assert.Equal(t, lspid(5), all[2].LSPID)

	last := db.Changes(1)
	require.Len(t, last, 1)
	assert.Equal(t, lspid(5), last[0].LSPID)
	assert.Equal(t, "lsp-added 1000.0000.0005.00-00 seqno 0x00000001", last[0].String())
}

func TestDiffNeighborsParallel(t *testing.T) {
	base := Change{LSPID: lspid(1)}
	changes := diffNeighbors(base,
		[]tlv.Neighbor{nbr(2, 10), nbr(2, 20)},
		[]tlv.Neighbor{nbr(2, 10)})
	require.Equal(t, []ChangeKind{AdjRemoved}, kinds(changes))
	assert.Equal(t, uint32(20), changes[0].Old.MetricValue())

	changes = diffNeighbors(base,
		[]tlv.Neighbor{nbr(2, 10)},
		[]tlv.Neighbor{nbr(2, 10), nbr(2, 30)})
	require.Equal(t, []ChangeKind{AdjAdded}, kinds(changes))
	assert.Equal(t, uint32(30), changes[0].New.MetricValue())
}

func TestCompareResultString(t *testing.T) {
	assert.Equal(t, "NEWER", NEWER.String())
	assert.Equal(t, "SAME", SAME.String())
	assert.Equal(t, "OLDER", OLDER.String())
	assert.Equal(t, "adj-changed", AdjChanged.String())
}
