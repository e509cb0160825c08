// Package update implements the LSP database of the monitor. LSPs received
// from the network are compared against the stored copy, the newer one is
// kept and the adjacency changes between versions are recorded.
package update

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nrybowski/isis-parser/clns"
	. "github.com/nrybowski/isis-parser/logging" // nolint
	"github.com/nrybowski/isis-parser/pdu"
	xtime "github.com/nrybowski/isis-parser/time"
	art "github.com/plar/go-adaptive-radix-tree"
)

// CompareResult is the result of comparing a received LSP with the
// database copy.
type CompareResult int

// Comparison results.
const (
	OLDER CompareResult = iota - 1
	SAME
	NEWER
)

func (r CompareResult) String() string {
	switch r {
	case OLDER:
		return "OLDER"
	case SAME:
		return "SAME"
	case NEWER:
		return "NEWER"
	}
	return fmt.Sprintf("CompareResult(%d)", int(r))
}

// DefaultMaxChanges is the default size of the change log.
const DefaultMaxChanges = 1024

// lspSegment is an LSP segment held in the DB.
type lspSegment struct {
	lsp      *pdu.LSP
	received time.Time
	// life runs while the LSP is live, zeroLife while it is purged.
	life     *xtime.Timeout
	zeroLife *xtime.Timeout
}

func (lsp *lspSegment) String() string {
	if lsp == nil {
		return "LSP(nil)"
	}
	return fmt.Sprintf("LSP(id:%s seqno:%#08x lifetime:%d cksum:%#04x)",
		lsp.lsp.LSPID, lsp.lsp.SeqNo, lsp.remaining(), lsp.lsp.Cksum)
}

// remaining returns the remaining lifetime in seconds.
func (lsp *lspSegment) remaining() uint16 {
	if lsp.life == nil {
		return 0
	}
	return uint16(lsp.life.RemainingSec())
}

func (lsp *lspSegment) isPurged() bool {
	return lsp.life == nil
}

// Entry is a snapshot of an LSP held in the DB.
type Entry struct {
	LSP       *pdu.LSP  `json:"lsp"`
	Remaining uint16    `json:"remaining-lifetime"`
	Purged    bool      `json:"purged"`
	Received  time.Time `json:"received"`
}

// Stats counts LSP receipt outcomes.
type Stats struct {
	LSPs    int    `json:"lsps"`
	Newer   uint64 `json:"newer"`
	Same    uint64 `json:"same"`
	Older   uint64 `json:"older"`
	Changes uint64 `json:"changes"`
}

// DB holds the level-2 LSPs seen by the monitor. It is safe for concurrent
// use.
type DB struct {
	mu         sync.RWMutex
	clock      clockwork.Clock
	db         art.Tree
	changes    []Change
	maxChanges int
	stats      Stats
}

// NewDB returns a new LSP database keeping the last maxChanges changes.
func NewDB(clock clockwork.Clock, maxChanges int) *DB {
	if maxChanges <= 0 {
		maxChanges = DefaultMaxChanges
	}
	return &DB{
		clock:      clock,
		db:         art.New(),
		maxChanges: maxChanges,
	}
}

func (db *DB) String() string {
	return "L2-DB"
}

// get the lsp segment with the given LSPID or nil if not present.
func (db *DB) get(lspid clns.LSPID) *lspSegment {
	v, ok := db.db.Search(lspid[:])
	if !ok {
		return nil
	}
	return v.(*lspSegment)
}

// compareLSP compares a received LSP against the DB copy: higher sequence
// number wins, for equal sequence numbers a purge wins.
func compareLSP(lsp *lspSegment, n *pdu.LSP) CompareResult {
	if lsp == nil {
		return NEWER
	}
	oseqno := lsp.lsp.SeqNo
	if n.SeqNo > oseqno {
		return NEWER
	} else if n.SeqNo < oseqno {
		return OLDER
	}

	olifetime := lsp.remaining()
	if n.Lifetime == 0 && olifetime != 0 {
		return NEWER
	} else if olifetime == 0 && n.Lifetime != 0 {
		return OLDER
	}
	return SAME
}

// setLifetime starts the lifetime of lsp from the received remaining lifetime
// value, a zero lifetime starts the zero age hold instead.
func (db *DB) setLifetime(lsp *lspSegment, lifetime uint16) {
	if lifetime == 0 {
		lsp.life = nil
		if lsp.zeroLife == nil {
			lsp.zeroLife = xtime.NewTimeoutSec(db.clock, clns.ZeroMaxAge)
		}
		return
	}
	lsp.zeroLife = nil
	if lsp.life == nil {
		lsp.life = xtime.NewTimeoutSec(db.clock, int(lifetime))
	} else {
		lsp.life.ResetSec(int(lifetime))
	}
}

func (db *DB) record(changes []Change) {
	for _, c := range changes {
		Debug(DbgFTopo, "%s: %s", db, c)
	}
	db.stats.Changes += uint64(len(changes))
	db.changes = append(db.changes, changes...)
	if over := len(db.changes) - db.maxChanges; over > 0 {
		db.changes = append(db.changes[:0:0], db.changes[over:]...)
	}
}

// Receive inputs an LSP received from the network. The LSP is stored if it is
// newer than the DB copy and the resulting topology changes are returned.
func (db *DB) Receive(n *pdu.LSP) (CompareResult, []Change) {
	db.mu.Lock()
	defer db.mu.Unlock()

	lsp := db.get(n.LSPID)
	result := compareLSP(lsp, n)
	Debug(DbgFUpd, "%s: receiveLSP %s 0x%x dblsp %v compare %v", db, n.LSPID, n.SeqNo, lsp, result)

	switch result {
	case SAME:
		db.stats.Same++
		return result, nil
	case OLDER:
		db.stats.Older++
		return result, nil
	}
	db.stats.Newer++

	now := db.clock.Now()
	base := Change{Time: now, LSPID: n.LSPID, SeqNo: n.SeqNo}
	var changes []Change

	if lsp == nil {
		if n.IsPurge() {
			// Purge for an LSP we don't have, nothing to retain.
			return result, nil
		}
		lsp = &lspSegment{lsp: n, received: now}
		db.setLifetime(lsp, n.Lifetime)
		db.db.Insert(n.LSPID[:], lsp)
		Debug(DbgFUpd, "%s: New LSP: %s", db, lsp)

		c := base
		c.Kind = LSPAdded
		changes = append(changes, c)
		changes = append(changes, diffNeighbors(base, nil, n.Neighbors())...)
		db.record(changes)
		return result, changes
	}

	var oldNbrs, newNbrs = lsp.lsp.Neighbors(), n.Neighbors()
	wasPurged := lsp.isPurged()
	if wasPurged {
		oldNbrs = nil
	}
	if n.IsPurge() {
		newNbrs = nil
	}
	switch {
	case n.IsPurge() && !wasPurged:
		c := base
		c.Kind = LSPPurged
		changes = append(changes, c)
	case !n.IsPurge() && wasPurged:
		c := base
		c.Kind = LSPAdded
		changes = append(changes, c)
	}
	changes = append(changes, diffNeighbors(base, oldNbrs, newNbrs)...)

	lsp.lsp = n
	lsp.received = now
	db.setLifetime(lsp, n.Lifetime)
	Debug(DbgFUpd, "%s: Updated %s", db, lsp)

	db.record(changes)
	return result, changes
}

// Sweep ages the DB: live LSPs whose lifetime ran out are purged and purged
// LSPs past the zero age hold are removed. The resulting changes are
// returned.
func (db *DB) Sweep() []Change {
	db.mu.Lock()
	defer db.mu.Unlock()

	var changes []Change
	var remove [][]byte
	now := db.clock.Now()

	db.db.ForEach(func(node art.Node) bool {
		lsp := node.Value().(*lspSegment)
		switch {
		case lsp.life != nil && lsp.life.IsExpired():
			Debug(DbgFUpd, "%s: Lifetime expired %s", db, lsp)
			base := Change{Time: now, LSPID: lsp.lsp.LSPID, SeqNo: lsp.lsp.SeqNo}
			c := base
			c.Kind = LSPExpired
			changes = append(changes, c)
			changes = append(changes, diffNeighbors(base, lsp.lsp.Neighbors(), nil)...)
			db.setLifetime(lsp, 0)
		case lsp.zeroLife != nil && lsp.zeroLife.IsExpired():
			Debug(DbgFUpd, "%s: Deleting LSP %s", db, lsp)
			remove = append(remove, node.Key())
		}
		return true
	})
	for _, k := range remove {
		db.db.Delete(k)
	}
	db.record(changes)
	return changes
}

func (db *DB) entry(lsp *lspSegment) Entry {
	return Entry{
		LSP:       lsp.lsp,
		Remaining: lsp.remaining(),
		Purged:    lsp.isPurged(),
		Received:  lsp.received,
	}
}

// Get returns the DB entry for lspid.
func (db *DB) Get(lspid clns.LSPID) (Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	lsp := db.get(lspid)
	if lsp == nil {
		return Entry{}, false
	}
	return db.entry(lsp), true
}

// List returns all DB entries ordered by LSPID.
func (db *DB) List() []Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	entries := make([]Entry, 0, db.db.Size())
	for it := db.db.Iterator(); it.HasNext(); {
		node, err := it.Next()
		if err != nil {
			break
		}
		entries = append(entries, db.entry(node.Value().(*lspSegment)))
	}
	return entries
}

// Changes returns the last n recorded changes, oldest first. n <= 0 returns
// every change still held.
func (db *DB) Changes(n int) []Change {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if n <= 0 || n > len(db.changes) {
		n = len(db.changes)
	}
	return append([]Change(nil), db.changes[len(db.changes)-n:]...)
}

// Len returns the number of LSPs held.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.db.Size()
}

// Stats returns the receipt counters.
func (db *DB) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s := db.stats
	s.LSPs = db.db.Size()
	return s
}
