package ether

import (
	"net"
	"testing"

	"github.com/nrybowski/isis-parser/clns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var src = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

func TestLLCPayload(t *testing.T) {
	pdu := []byte{0x83, 0x1b, 0x01, 0x00, 0x14, 0x01, 0x00, 0x00}
	frame := NewLLCFrame(clns.AllL2IS, src, pdu)
	require.Len(t, frame, MinFrameSz)
	assert.Equal(t, clns.AllL2IS, frame.GetDst())
	assert.Equal(t, src, frame.GetSrc())
	assert.Equal(t, HdrLLCSize+len(pdu), frame.GetTypeLen())

	payload, err := LLCPayload(frame)
	require.NoError(t, err)
	assert.Equal(t, pdu, payload, "padding must be removed")
}

func TestValidateLLCFrame(t *testing.T) {
	pdu := make([]byte, 100)
	frame := NewLLCFrame(clns.AllL1IS, src, pdu)

	payload, llc, err := frame.ValidateLLCFrame(map[MAC]bool{})
	require.NoError(t, err)
	assert.Len(t, payload, 100)
	assert.Equal(t, uint16(LLCCtrlUI), llc.Control)

	_, _, err = frame.ValidateLLCFrame(map[MAC]bool{MACKey(src): true})
	assert.Equal(t, ErrOurFrame(true), err)
}

func TestLLCPayloadErrors(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		_, err := LLCPayload([]byte{1, 2, 3})
		assert.IsType(t, ErrInvalidFrame(""), err)
	})

	t.Run("ethertype", func(t *testing.T) {
		frame := NewLLCFrame(clns.AllL2IS, src, []byte{1, 2, 3})
		frame[HdrEthLen], frame[HdrEthLen+1] = 0x08, 0x00
		_, err := LLCPayload(frame)
		assert.IsType(t, ErrNonLLCFrame(""), err)
	})

	t.Run("length past frame", func(t *testing.T) {
		frame := NewLLCFrame(clns.AllL2IS, src, []byte{1, 2, 3})
		frame[HdrEthLen], frame[HdrEthLen+1] = 0x01, 0x00
		_, err := LLCPayload(frame)
		assert.IsType(t, ErrInvalidFrame(""), err)
	})

	t.Run("not ISO", func(t *testing.T) {
		frame := NewLLCFrame(clns.AllL2IS, src, []byte{1, 2, 3})
		frame[HdrEthSize+HdrLLCDSAP] = 0x42
		frame[HdrEthSize+HdrLLCSSAP] = 0x42
		_, err := LLCPayload(frame)
		assert.IsType(t, ErrNonISOFrame(""), err)
	})
}
