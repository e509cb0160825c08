package pkt

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when fewer bytes are present than a fixed or
// declared length requires. It is a framing condition: retrying with more
// bytes may succeed.
type ErrTruncated struct {
	Need int // bytes required
	Have int // bytes available
}

func (e ErrTruncated) Error() string {
	return fmt.Sprintf("truncated input: need %d bytes, have %d", e.Need, e.Have)
}

// Missing returns the number of additional bytes needed.
func (e ErrTruncated) Missing() int {
	return e.Need - e.Have
}

// ErrMalformedLength is returned when a declared length is inconsistent with
// the region that contains it.
type ErrMalformedLength string

func (e ErrMalformedLength) Error() string {
	return fmt.Sprintf("malformed length: %s", string(e))
}

// ErrVerifyFailed is returned when a record decoder is handed a record whose
// type tag is not the one it decodes. Dispatch tables make this unreachable
// for well-formed tables.
type ErrVerifyFailed struct {
	Want uint8
	Got  uint8
}

func (e ErrVerifyFailed) Error() string {
	return fmt.Sprintf("type verify failed: expecting %d got %d", e.Want, e.Got)
}

// IsTruncated returns true if err is (or wraps) an ErrTruncated.
func IsTruncated(err error) bool {
	var t ErrTruncated
	return errors.As(err, &t)
}

// IsMalformed returns true if err is (or wraps) an ErrMalformedLength.
func IsMalformed(err error) bool {
	var m ErrMalformedLength
	return errors.As(err, &m)
}

// IsVerifyFailed returns true if err is (or wraps) an ErrVerifyFailed.
func IsVerifyFailed(err error) bool {
	var v ErrVerifyFailed
	return errors.As(err, &v)
}

// Need returns ErrTruncated if b holds fewer than n bytes.
func Need(b []byte, n int) error {
	if len(b) < n {
		return ErrTruncated{Need: n, Have: len(b)}
	}
	return nil
}
