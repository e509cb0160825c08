package tlv

// NeighborEqual reports whether two neighbors describe the same adjacency.
//
// The IDs and metrics must match. Two neighbors without a sub-TLV region are
// equal on that alone. Two neighbors with a sub-TLV region must each carry
// exactly one IPv4 interface address and those must match; IPv4 neighbor
// addresses are never compared. Any other combination is unequal, including
// two regions neither of which holds an interface address.
func NeighborEqual(a, b *Neighbor) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Metric != b.Metric {
		return false
	}
	switch {
	case !a.HasSubTLVs() && !b.HasSubTLVs():
		return true
	case a.HasSubTLVs() != b.HasSubTLVs():
		return false
	}
	aa, ba := a.IntfAddrs(), b.IntfAddrs()
	if len(aa) != 1 || len(ba) != 1 {
		return false
	}
	return aa[0].Addr == ba[0].Addr
}
