package pkt

// ==========================================================
// Pkt Functions dealing with manipulating binary packet data
// ==========================================================

// GetUInt16 extracts a network order encoded uint16 from the start of the
// packet buffer.
func GetUInt16(p []byte) uint16 {
	data := uint16(p[0]) << 8
	data |= uint16(p[1])
	return data
}

// PutUInt16 encodes a uint16 value into the start of the packet buffer in
// network order.
func PutUInt16(p []byte, data uint16) {
	p[0] = uint8((data >> 8) & 0xFF)
	p[1] = uint8(data & 0xFF)
}

// GetUInt24 extracts a network order encoded 24 bit value (e.g., a wide
// metric) from the start of the packet buffer.
func GetUInt24(p []byte) uint32 {
	data := uint32(p[0]) << 16
	data |= uint32(p[1]) << 8
	data |= uint32(p[2])
	return data
}

// GetUInt32 extracts a network order encoded uint32 from the start of the
// packet buffer.
func GetUInt32(p []byte) uint32 {
	data := uint32(p[0]) << 24
	data |= uint32(p[1]) << 16
	data |= uint32(p[2]) << 8
	data |= uint32(p[3])
	return data
}

// PutUInt32 encodes a uint32 value into the start of the packet buffer in
// network order.
func PutUInt32(p []byte, data uint32) {
	p[0] = uint8((data >> 24) & 0xFF)
	p[1] = uint8((data >> 16) & 0xFF)
	p[2] = uint8((data >> 8) & 0xFF)
	p[3] = uint8(data & 0xFF)
}

// GetUInt64 extracts a network order encoded uint64 from the start of the
// packet buffer.
func GetUInt64(p []byte) uint64 {
	return uint64(GetUInt32(p))<<32 | uint64(GetUInt32(p[4:]))
}

// AppendUInt16 appends data to b in network order.
func AppendUInt16(b []byte, data uint16) []byte {
	return append(b, byte(data>>8), byte(data))
}

// AppendUInt32 appends data to b in network order.
func AppendUInt32(b []byte, data uint32) []byte {
	return append(b, byte(data>>24), byte(data>>16), byte(data>>8), byte(data))
}
