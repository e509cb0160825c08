package pdu

import (
	"errors"
	"fmt"

	"github.com/nrybowski/isis-parser/clns"
	"github.com/nrybowski/isis-parser/pkt"
)

// DecodeStream decodes back to back PDUs from b. Decoding stops without error
// when the next PDU is incomplete, the unconsumed bytes are returned so the
// caller can retry once more bytes are available. PDUs of a known but
// undecoded type are skipped using their PDU length field.
func DecodeStream(b []byte) (pkts []Packet, rest []byte, err error) {
	for len(b) > 0 {
		p, next, err := Decode(b)
		switch {
		case err == nil:
			pkts = append(pkts, p)
			b = next
		case pkt.IsTruncated(err):
			return pkts, b, nil
		case clns.IsUnsupported(err):
			n, err := skipLen(b)
			if err != nil {
				return pkts, b, err
			}
			if n > len(b) {
				return pkts, b, nil
			}
			b = b[n:]
		default:
			return pkts, b, err
		}
	}
	return pkts, b, nil
}

// skipLen returns the PDU length of the unsupported PDU at the start of b.
func skipLen(b []byte) (int, error) {
	pdulen, err := clns.GetPDULen(b)
	if err != nil {
		var t pkt.ErrTruncated
		if errors.As(err, &t) {
			// Report as one byte past what we have so the caller waits.
			return len(b) + 1, nil
		}
		return 0, err
	}
	if int(pdulen) < clns.HdrCLNSSize {
		return 0, pkt.ErrMalformedLength(fmt.Sprintf("pdulen %d less than header size", pdulen))
	}
	return int(pdulen), nil
}
