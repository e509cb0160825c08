package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/ether"
	"github.com/nrybowski/isis-parser/isismon/update"
	. "github.com/nrybowski/isis-parser/logging" // nolint
	"github.com/nrybowski/isis-parser/pdu"
	"github.com/nrybowski/isis-parser/pkt"
	"github.com/nrybowski/isis-parser/source"
)

// Monitor feeds the LSPs read from a source into the LSP database.
//
//	Run: Source.Next -> ether.LLCPayload -> pdu.Decode -> update.DB.Receive
//	Sweeper: clock tick -> update.DB.Sweep
type Monitor struct {
	src     source.Source
	db      *update.DB
	metrics *Metrics
	clock   clockwork.Clock
	sweep   time.Duration

	// replay is set when the clock follows the capture timestamps.
	replay *clockwork.FakeClock

	// OnChange, if set, is called for every topology change.
	OnChange func(update.Change)
}

// NewMonitor returns a monitor reading src into db. The DB is swept every
// sweep interval of clock.
func NewMonitor(src source.Source, db *update.DB, metrics *Metrics, clock clockwork.Clock, sweep time.Duration) *Monitor {
	return &Monitor{
		src:     src,
		db:      db,
		metrics: metrics,
		clock:   clock,
		sweep:   sweep,
	}
}

// NewReplayMonitor returns a monitor whose notion of time is driven by the
// timestamps of the frames read from src. The DB must use clock and clock
// should start at the timestamp of the first frame.
func NewReplayMonitor(src source.Source, db *update.DB, metrics *Metrics, clock *clockwork.FakeClock) *Monitor {
	m := NewMonitor(src, db, metrics, clock, 0)
	m.replay = clock
	return m
}

func (m *Monitor) changes(changes []update.Change) {
	m.metrics.addChanges(changes)
	if m.OnChange != nil {
		for _, c := range changes {
			m.OnChange(c)
		}
	}
}

// errKind classifies a frame processing error for metrics.
func errKind(err error) string {
	var (
		invalid ether.ErrInvalidFrame
		nonLLC  ether.ErrNonLLCFrame
		nonISO  ether.ErrNonISOFrame
		bad     clns.ErrInvalidPacket
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &nonLLC), errors.As(err, &nonISO):
		return errKindFrame
	case clns.IsNotISIS(err):
		return errKindNotISIS
	case clns.IsUnsupported(err):
		return errKindUnsupported
	case pkt.IsTruncated(err):
		return errKindTruncated
	case pkt.IsMalformed(err):
		return errKindMalformed
	case pkt.IsVerifyFailed(err):
		return errKindVerify
	case errors.As(err, &bad):
		return errKindInvalid
	}
	return errKindOther
}

// advance moves a replay clock forward to ts, aging the DB on the way.
func (m *Monitor) advance(ts time.Time) {
	if m.replay == nil {
		return
	}
	if d := ts.Sub(m.replay.Now()); d > 0 {
		m.replay.Advance(d)
		m.changes(m.db.Sweep())
	}
}

// Input processes one captured frame and returns the topology changes it
// caused. Frames that do not carry a level-2 LSP are counted and dropped.
func (m *Monitor) Input(f source.Frame) ([]update.Change, error) {
	m.metrics.Frames.Inc()
	m.advance(f.Timestamp)

	payload, err := ether.LLCPayload(f.Data)
	if err == nil {
		var p pdu.Packet
		p, _, err = pdu.Decode(payload)
		if err == nil {
			err = clns.ValidatePacket(payload)
		}
		if err == nil {
			return m.receive(f, p), nil
		}
	}

	kind := errKind(err)
	m.metrics.Errors.WithLabelValues(kind).Inc()
	switch kind {
	case errKindUnsupported:
		if pdutype, terr := clns.GetPDUType(payload); terr == nil {
			m.metrics.PDUs.WithLabelValues(pdutype.String()).Inc()
		}
		Debug(DbgFPkt, "%s: ignoring PDU: %s", f.Origin, err)
		return nil, nil
	case errKindFrame, errKindNotISIS:
		Debug(DbgFPkt, "%s: dropping frame: %s", f.Origin, err)
		return nil, nil
	}
	Trap("%s: malformed PDU: %s", f.Origin, err)
	return nil, fmt.Errorf("%s: %w", f.Origin, err)
}

func (m *Monitor) receive(f source.Frame, p pdu.Packet) []update.Change {
	m.metrics.PDUs.WithLabelValues(p.PDUType().String()).Inc()
	lsp, ok := p.(*pdu.LSP)
	if !ok {
		return nil
	}
	Trace(DbgFLSP, "%s: %s", f.Origin, lsp)
	result, changes := m.db.Receive(lsp)
	Debug(DbgFLSP, "%s: LSP %s seqno %#08x %s", f.Origin, lsp.LSPID, lsp.SeqNo, result)
	m.changes(changes)
	m.metrics.LSPs.Set(float64(m.db.Len()))
	return changes
}

// Run reads and processes frames until the source is exhausted or ctx is
// done. Decode failures are counted and logged, they do not stop the run.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		f, err := m.src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				Info("end of capture")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		_, _ = m.Input(f)
	}
}

// Sweeper ages the DB every sweep interval until ctx is done.
func (m *Monitor) Sweeper(ctx context.Context) error {
	if m.sweep <= 0 {
		return nil
	}
	ticker := m.clock.NewTicker(m.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			changes := m.db.Sweep()
			if len(changes) != 0 {
				Debug(DbgFUpd, "%s: sweep: %d changes", m.db, len(changes))
			}
			m.changes(changes)
			m.metrics.LSPs.Set(float64(m.db.Len()))
		}
	}
}
