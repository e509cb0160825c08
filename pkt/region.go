// =========================================================
// Length bounded decoding of tagged (type, length) records.
// =========================================================

package pkt

// Decoder decodes one record from the start of b and returns it along with
// the bytes following it.
type Decoder[T any] func(b []byte) (T, []byte, error)

// Bound splits b into the first n bytes and the rest. The returned region has
// its capacity clipped to n so nothing decoded from it can reach past it.
func Bound(b []byte, n int) (region, rest []byte, err error) {
	if n < 0 {
		return nil, b, ErrMalformedLength("negative region length")
	}
	if err := Need(b, n); err != nil {
		return nil, b, err
	}
	return b[:n:n], b[n:], nil
}

// BoundFrom is Bound applied to b[off:]. A truncation error accounts for the
// off bytes preceding the region so it describes b as a whole.
func BoundFrom(b []byte, off, n int) (region, rest []byte, err error) {
	if err := Need(b, off); err != nil {
		return nil, b, err
	}
	region, rest, err = Bound(b[off:], n)
	if t, ok := err.(ErrTruncated); ok {
		t.Need += off
		t.Have += off
		return nil, b, t
	}
	if err != nil {
		return nil, b, err
	}
	return region, rest, nil
}

// DecodeAll decodes records from region until it is exhausted. Decoding stops
// at the first record that fails and the records decoded so far are returned,
// the unparsable tail of the region is returned as dropped. The returned slice
// is never nil.
func DecodeAll[T any](region []byte, dec Decoder[T]) (recs []T, dropped []byte) {
	recs = make([]T, 0)
	for len(region) > 0 {
		rec, rest, err := dec(region)
		if err != nil || len(rest) >= len(region) {
			// Either bad or made no progress.
			return recs, region
		}
		recs = append(recs, rec)
		region = rest
	}
	return recs, nil
}

// Dispatcher selects a decoder based on the type tag in the first byte of a
// record. Unrecognized tags are handed to Skip.
type Dispatcher[T any] struct {
	Table map[uint8]Decoder[T]
	Skip  Decoder[T]
}

// Decode peeks the type tag of the record at the start of b (without
// consuming it) and decodes the record with the matching decoder.
func (d *Dispatcher[T]) Decode(b []byte) (T, []byte, error) {
	if len(b) < 1 {
		var zero T
		return zero, b, ErrTruncated{Need: 1, Have: 0}
	}
	dec, ok := d.Table[b[0]]
	if !ok {
		dec = d.Skip
	}
	return dec(b)
}

// Known returns true if typ has a decoder other than Skip.
func (d *Dispatcher[T]) Known(typ uint8) bool {
	_, ok := d.Table[typ]
	return ok
}

// SkipDecoder returns a decoder which consumes a whole record without looking
// inside it. The record has a hdrLen byte header holding the type at offset 0
// and the value length at offset lenOff. mark builds the placeholder record
// that is returned.
func SkipDecoder[T any](hdrLen, lenOff int, mark func(typ, length uint8) T) Decoder[T] {
	return func(b []byte) (T, []byte, error) {
		var zero T
		if err := Need(b, hdrLen); err != nil {
			return zero, b, err
		}
		typ, length := b[0], b[lenOff]
		_, rest, err := BoundFrom(b, hdrLen, int(length))
		if err != nil {
			return zero, b, err
		}
		return mark(typ, length), rest, nil
	}
}
