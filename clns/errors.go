package clns

import (
	"errors"
	"fmt"
)

// ErrUnsupportedIRPD is returned when the leading octet of a PDU is not the
// IS-IS intradomain routing protocol discriminator.
type ErrUnsupportedIRPD uint8

func (e ErrUnsupportedIRPD) Error() string {
	return fmt.Sprintf("unsupported protocol discriminator %#02x", uint8(e))
}

// ErrUnkPDUType is returned when a PDU type is encountered that is not (yet)
// decoded. It is not a sign of a corrupt stream.
type ErrUnkPDUType uint8

func (e ErrUnkPDUType) Error() string {
	return fmt.Sprintf("unsupported PDU type %s", PDUType(e))
}

// ErrInvalidPacket is returned when we fail to validate the packet.
type ErrInvalidPacket string

func (e ErrInvalidPacket) Error() string {
	return fmt.Sprintf("ErrInvalidPacket: %s", string(e))
}

// IsUnsupported returns true if err is (or wraps) an ErrUnkPDUType.
func IsUnsupported(err error) bool {
	var u ErrUnkPDUType
	return errors.As(err, &u)
}

// IsNotISIS returns true if err is (or wraps) an ErrUnsupportedIRPD.
func IsNotISIS(err error) bool {
	var u ErrUnsupportedIRPD
	return errors.As(err, &u)
}
