// Package raw provides raw link layer sockets for receiving IS-IS frames.
package raw

import (
	"errors"

	"golang.org/x/net/bpf"
)

// ErrUnsupported is returned on platforms without raw socket support.
var ErrUnsupported = errors.New("raw sockets not supported on this platform")

// ISISProgram accepts 802.3 LLC frames with DSAP and SSAP 0xfe (and jumbo LLC
// frames, ethertype 0x8870) and rejects everything else.
var ISISProgram = []bpf.Instruction{
	// 0: Load 2 bytes from offset 12 (ethertype)
	bpf.LoadAbsolute{Off: 12, Size: 2},
	// 1: Jump fwd + 1 if 0x8870 (jumbo) otherwise fwd + 0 (continue)
	bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x8870, SkipTrue: 1},
	// 2: Jump fwd + 3 if > 1500 (drop non-LLC) otherwise continue
	bpf.JumpIf{Cond: bpf.JumpGreaterThan, Val: 1500, SkipTrue: 3},
	// 3: Load 2 bytes from offset 14 (llc DSAP/SSAP)
	bpf.LoadAbsolute{Off: 14, Size: 2},
	// 4: Jump fwd + 1 if not ISO otherwise continue
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 0xfefe, SkipTrue: 1},
	// 5: Return match
	bpf.RetConstant{Val: 0xffff},
	// 6: Return no match
	bpf.RetConstant{Val: 0},
}

// ISISFilter returns ISISProgram assembled for attaching to a socket.
func ISISFilter() ([]bpf.RawInstruction, error) {
	return bpf.Assemble(ISISProgram)
}
