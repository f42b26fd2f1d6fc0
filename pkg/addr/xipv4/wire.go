package xipv4

import (
	"fmt"
	"net/netip"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xgrouping"
)

// WireSection 是 IPv4 地址范围的序列化结构。
// Lower/Upper 是点分十进制地址；Prefix 为 nil 表示无前缀。
// 序列化是门面便利，不构成稳定 wire 契约。
type WireSection struct {
	Lower  string `json:"lower" bson:"lower" yaml:"lower"`
	Upper  string `json:"upper" bson:"upper" yaml:"upper"`
	Prefix *int   `json:"prefix,omitempty" bson:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// WireSectionFrom 从地址构造序列化结构。
func WireSectionFrom(a *xgrouping.Address) (WireSection, error) {
	if a == nil || a.SegmentCount() != SegmentCount {
		return WireSection{}, fmt.Errorf("%w: not a full IPv4 address", ErrNotIPv4)
	}
	var lo, hi [4]byte
	copy(lo[:], a.Bytes())
	copy(hi[:], a.UpperBytes())
	w := WireSection{
		Lower: netip.AddrFrom4(lo).String(),
		Upper: netip.AddrFrom4(hi).String(),
	}
	if p, ok := a.PrefixLength(); ok {
		w.Prefix = &p
	}
	return w, nil
}

// ToAddress 把序列化结构还原为地址。
// Lower/Upper 必须是合法的 IPv4 点分地址且逐段 lower <= upper。
func (w WireSection) ToAddress() (*xgrouping.Address, error) {
	lower, err := parseWireAddr(w.Lower)
	if err != nil {
		return nil, err
	}
	upper, err := parseWireAddr(w.Upper)
	if err != nil {
		return nil, err
	}
	var prefix xdivision.PrefixLen
	if w.Prefix != nil {
		prefix = xdivision.ToPrefixLen(*w.Prefix)
	}
	return FromValueProviders(
		func(i int) uint64 { return uint64(lower[i]) },
		func(i int) uint64 { return uint64(upper[i]) },
		prefix,
	)
}

// IsZero 报告 w 是否为零值。
func (w WireSection) IsZero() bool {
	return w.Lower == "" && w.Upper == "" && w.Prefix == nil
}

// String 返回 "lower-upper" 或单值 "lower"，携带前缀时追加 /prefix。
func (w WireSection) String() string {
	s := w.Lower
	if w.Upper != "" && w.Upper != w.Lower {
		s = w.Lower + "-" + w.Upper
	}
	if w.Prefix != nil {
		s = fmt.Sprintf("%s/%d", s, *w.Prefix)
	}
	return s
}

func parseWireAddr(s string) ([4]byte, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return [4]byte{}, fmt.Errorf("%w: %q", ErrNotIPv4, s)
	}
	if !addr.Is4() && !addr.Is4In6() {
		return [4]byte{}, fmt.Errorf("%w: %q", ErrNotIPv4, s)
	}
	return addr.Unmap().As4(), nil
}
