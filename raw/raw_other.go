//go:build !linux

package raw

import (
	"net"
	"syscall"
	"time"

	"golang.org/x/net/bpf"
)

// IntfSocket is an interface socket connection
type IntfSocket struct {
	intf *net.Interface
}

// Interface returns the interface the socket is bound to.
func (sock IntfSocket) Interface() *net.Interface {
	return sock.intf
}

// ReadPacket from the interface
func (sock IntfSocket) ReadPacket() ([]byte, syscall.Sockaddr, error) {
	return nil, nil, ErrUnsupported
}

// SetReadTimeout bounds how long ReadPacket blocks.
func (sock IntfSocket) SetReadTimeout(d time.Duration) error {
	return ErrUnsupported
}

// Close the socket.
func (sock IntfSocket) Close() error {
	return nil
}

// IsTimeout returns true if err is the result of a read timeout.
func IsTimeout(err error) bool {
	return false
}

// NewInterfaceSocket open a new raw socket to the given interface
func NewInterfaceSocket(ifname string) (IntfSocket, error) {
	return IntfSocket{}, ErrUnsupported
}

// SetBPF filter on the interface socket
func (sock IntfSocket) SetBPF(filter []bpf.RawInstruction) error {
	return ErrUnsupported
}
