package raw

import (
	"net"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/net/bpf"
)

// IntfSocket is an interface socket connection
type IntfSocket struct {
	fd   int
	intf *net.Interface
}

// Interface returns the interface the socket is bound to.
func (sock IntfSocket) Interface() *net.Interface {
	return sock.intf
}

// ReadPacket from the interface
func (sock IntfSocket) ReadPacket() ([]byte, syscall.Sockaddr, error) {
	n, _, _, from, err := syscall.Recvmsg(sock.fd, nil, nil, syscall.MSG_PEEK|syscall.MSG_TRUNC)
	if err != nil {
		return nil, nil, err
	}

	b := make([]byte, n)
	n, _, _, from, err = syscall.Recvmsg(sock.fd, b, nil, 0)
	return b[:n], from, err
}

// SetReadTimeout bounds how long ReadPacket blocks, after which it returns
// EAGAIN.
func (sock IntfSocket) SetReadTimeout(d time.Duration) error {
	tv := syscall.NsecToTimeval(d.Nanoseconds())
	return syscall.SetsockoptTimeval(sock.fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv)
}

// Close the socket.
func (sock IntfSocket) Close() error {
	return syscall.Close(sock.fd)
}

// IsTimeout returns true if err is the result of a read timeout.
func IsTimeout(err error) bool {
	return err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || err == syscall.EINTR
}

func htons(val uint16) uint16 {
	return (val&0x00FF)<<8 | (val&0xFF00)>>8
}

// NewInterfaceSocket open a new raw socket to the given interface
func NewInterfaceSocket(ifname string) (IntfSocket, error) {
	var rv IntfSocket
	var err error

	rv.intf, err = net.InterfaceByName(ifname)
	if err != nil {
		return rv, err
	}

	rv.fd, err = syscall.Socket(syscall.AF_PACKET, syscall.SOCK_RAW, int(htons(syscall.ETH_P_ALL)))
	if err != nil {
		return rv, err
	}

	ll := syscall.SockaddrLinklayer{
		Protocol: htons(syscall.ETH_P_ALL),
		Ifindex:  rv.intf.Index,
	}
	if err = syscall.Bind(rv.fd, &ll); err != nil {
		syscall.Close(rv.fd)
		return rv, err
	}
	return rv, nil
}

// SetBPF filter on the interface socket
func (sock IntfSocket) SetBPF(filter []bpf.RawInstruction) error {
	prog := syscall.SockFprog{
		Len:    uint16(len(filter)),
		Filter: (*syscall.SockFilter)(unsafe.Pointer(&filter[0])),
	}
	_, _, err := syscall.Syscall6(syscall.SYS_SETSOCKOPT, uintptr(sock.fd),
		uintptr(syscall.SOL_SOCKET),
		uintptr(syscall.SO_ATTACH_FILTER),
		uintptr(unsafe.Pointer(&prog)),
		uintptr(unsafe.Sizeof(prog)),
		0)
	if err != 0 {
		return syscall.Errno(err)
	}
	return nil
}
