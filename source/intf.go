package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nrybowski/isis-parser/ether"
	"github.com/nrybowski/isis-parser/raw"
)

// pollInterval bounds how long a read blocks before the context is checked.
const pollInterval = 250 * time.Millisecond

// Interface is a Source capturing IS-IS frames live from a network interface.
type Interface struct {
	name  string
	sock  raw.IntfSocket
	clock clockwork.Clock
	// ours holds the interface's own MAC, frames sent by a local IS-IS
	// daemon are looped back to the socket and dropped.
	ours map[ether.MAC]bool
}

// OpenInterface opens a raw socket on the named interface filtered to
// IS-IS frames.
func OpenInterface(name string, clock clockwork.Clock) (*Interface, error) {
	sock, err := raw.NewInterfaceSocket(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	filter, err := raw.ISISFilter()
	if err == nil {
		err = sock.SetBPF(filter)
	}
	if err == nil {
		err = sock.SetReadTimeout(pollInterval)
	}
	if err != nil {
		sock.Close()
		return nil, fmt.Errorf("configuring %s: %w", name, err)
	}
	return &Interface{name: name, sock: sock, clock: clock, ours: ourSNPA(sock)}, nil
}

func ourSNPA(sock raw.IntfSocket) map[ether.MAC]bool {
	ours := make(map[ether.MAC]bool)
	if intf := sock.Interface(); intf != nil && len(intf.HardwareAddr) == len(ether.MAC{}) {
		ours[ether.MACKey(intf.HardwareAddr)] = true
	}
	return ours
}

// fromUs returns true if b was sent from one of ours. Frames that are
// invalid for another reason are kept so the monitor can account for them.
func fromUs(b []byte, ours map[ether.MAC]bool) bool {
	_, _, err := ether.Frame(b).ValidateLLCFrame(ours)
	_, ok := err.(ether.ErrOurFrame)
	return ok
}

// Next blocks until an IS-IS frame is received or ctx is done.
func (i *Interface) Next(ctx context.Context) (Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		b, _, err := i.sock.ReadPacket()
		if raw.IsTimeout(err) {
			continue
		}
		if err != nil {
			return Frame{}, fmt.Errorf("reading %s: %w", i.name, err)
		}
		if fromUs(b, i.ours) {
			continue
		}
		return Frame{Data: b, Timestamp: i.clock.Now(), Origin: i.name}, nil
	}
}

// Close closes the socket.
func (i *Interface) Close() error {
	return i.sock.Close()
}
