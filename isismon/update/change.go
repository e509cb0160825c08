package update

import (
	"fmt"
	"time"

	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/tlv"
)

// ChangeKind is the kind of a topology change.
type ChangeKind uint8

// The topology change kinds.
const (
	LSPAdded ChangeKind = iota
	LSPPurged
	LSPExpired
	AdjAdded
	AdjRemoved
	AdjChanged
)

// ChangeKindNames returns string names for change kinds.
var ChangeKindNames = map[ChangeKind]string{
	LSPAdded:   "lsp-added",
	LSPPurged:  "lsp-purged",
	LSPExpired: "lsp-expired",
	AdjAdded:   "adj-added",
	AdjRemoved: "adj-removed",
	AdjChanged: "adj-changed",
}

func (k ChangeKind) String() string {
	s, ok := ChangeKindNames[k]
	if !ok {
		s = fmt.Sprintf("Unknown(%d)", k)
	}
	return s
}

// MarshalText returns the change kind name.
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Change is one topology change observed in the LSP database. Adjacency
// changes name the neighbor and carry the old and/or new neighbor record.
type Change struct {
	Kind     ChangeKind    `json:"kind"`
	Time     time.Time     `json:"time"`
	LSPID    clns.LSPID    `json:"lspid"`
	SeqNo    uint32        `json:"seqno"`
	Neighbor *clns.NodeID  `json:"neighbor,omitempty"`
	Old      *tlv.Neighbor `json:"old,omitempty"`
	New      *tlv.Neighbor `json:"new,omitempty"`
}

func (c Change) String() string {
	if c.Neighbor != nil {
		return fmt.Sprintf("%s %s seqno %#08x neighbor %s", c.Kind, c.LSPID, c.SeqNo, c.Neighbor)
	}
	return fmt.Sprintf("%s %s seqno %#08x", c.Kind, c.LSPID, c.SeqNo)
}

// nbrGroup holds the neighbors of one node ID in advertised order. Parallel
// links to the same neighbor appear as several entries.
type nbrGroup struct {
	id   clns.NodeID
	nbrs []*tlv.Neighbor
}

func groupNeighbors(nbrs []tlv.Neighbor) ([]clns.NodeID, map[clns.NodeID][]*tlv.Neighbor) {
	var order []clns.NodeID
	groups := make(map[clns.NodeID][]*tlv.Neighbor)
	for i := range nbrs {
		n := &nbrs[i]
		if _, ok := groups[n.ID]; !ok {
			order = append(order, n.ID)
		}
		groups[n.ID] = append(groups[n.ID], n)
	}
	return order, groups
}

// diffNeighbors compares the neighbors advertised by two versions of an LSP
// and returns the adjacency changes between them. Neighbors are matched by
// node ID and, for parallel links, by position.
func diffNeighbors(base Change, oldNbrs, newNbrs []tlv.Neighbor) []Change {
	oldOrder, oldGroups := groupNeighbors(oldNbrs)
	newOrder, newGroups := groupNeighbors(newNbrs)

	var changes []Change
	emit := func(kind ChangeKind, id clns.NodeID, o, n *tlv.Neighbor) {
		c := base
		c.Kind = kind
		c.Neighbor = &id
		c.Old, c.New = o, n
		changes = append(changes, c)
	}

	for _, id := range newOrder {
		olds, news := oldGroups[id], newGroups[id]
		for i, n := range news {
			if i >= len(olds) {
				emit(AdjAdded, id, nil, n)
			} else if !tlv.NeighborEqual(olds[i], n) {
				emit(AdjChanged, id, olds[i], n)
			}
		}
		for i := len(news); i < len(olds); i++ {
			emit(AdjRemoved, id, olds[i], nil)
		}
	}
	for _, id := range oldOrder {
		if _, ok := newGroups[id]; ok {
			continue
		}
		for _, o := range oldGroups[id] {
			emit(AdjRemoved, id, o, nil)
		}
	}
	return changes
}
