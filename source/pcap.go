package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

var ngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
}

// PcapFile is a Source reading a pcap or pcapng capture of Ethernet frames.
type PcapFile struct {
	name string
	f    io.Closer
	r    packetReader
}

// OpenPcap opens the capture file at path.
func OpenPcap(path string) (*PcapFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	p, err := NewPcapReader(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.f = f
	return p, nil
}

// NewPcapReader returns a PcapFile reading the capture in r. The format
// (pcap or pcapng) is detected from the leading magic number.
func NewPcapReader(name string, r io.Reader) (*PcapFile, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(ngMagic))
	if err != nil {
		return nil, fmt.Errorf("%s: reading capture header: %w", name, err)
	}

	var linkType layers.LinkType
	p := &PcapFile{name: name}
	if bytes.Equal(magic, ngMagic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		linkType, p.r = ng.LinkType(), ng
	} else {
		pr, err := pcapgo.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		linkType, p.r = pr.LinkType(), pr
	}
	if linkType != layers.LinkTypeEthernet {
		return nil, fmt.Errorf("%s: unsupported link type %s", name, linkType)
	}
	return p, nil
}

// Next returns the next frame of the capture, io.EOF at its end.
func (p *PcapFile) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	data, ci, err := p.r.ReadPacketData()
	if err != nil {
		return Frame{}, err
	}
	return Frame{Data: data, Timestamp: ci.Timestamp, Origin: p.name}, nil
}

// Close closes the underlying file.
func (p *PcapFile) Close() error {
	if p.f == nil {
		return nil
	}
	return p.f.Close()
}
