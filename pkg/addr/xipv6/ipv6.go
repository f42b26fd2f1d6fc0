package xipv6

import (
	"fmt"
	"net/netip"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xgrouping"
)

// FromBytes 从 16 个网络字节序字节构造 IPv6 地址，可选前缀与 zone。
func FromBytes(bytes []byte, prefix xdivision.PrefixLen, zone string) (*xgrouping.Address, error) {
	if len(bytes) != SegmentCount*BytesPerSegment {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrNotIPv6, SegmentCount*BytesPerSegment, len(bytes))
	}
	var c Creator
	section, err := c.CreateSectionFromBytes(bytes, prefix)
	if err != nil {
		return nil, err
	}
	return c.CreateAddressWithZone(section, zone)
}

// FromValueProviders 从逐段值提供者构造 IPv6 地址。
func FromValueProviders(lower, upper xgrouping.SegmentValueProvider, prefix xdivision.PrefixLen, zone string) (*xgrouping.Address, error) {
	var c Creator
	segments := xgrouping.SegmentsFromProviders(lower, upper, SegmentCount, c, prefix)
	section, err := c.CreateSectionFromSegments(segments)
	if err != nil {
		return nil, err
	}
	return c.CreateAddressWithZone(section, zone)
}

// FromAddr 从 [netip.Addr] 构造 IPv6 地址，保留 zone。
// IPv4 与 IPv4-mapped IPv6 返回 [ErrNotIPv6]；
// 如需映射形式请先经 netip 转换。
func FromAddr(addr netip.Addr) (*xgrouping.Address, error) {
	if !addr.Is6() || addr.Is4In6() {
		return nil, fmt.Errorf("%w: %s", ErrNotIPv6, addr)
	}
	b := addr.As16()
	return FromBytes(b[:], nil, addr.Zone())
}

// FromPrefix 从 [netip.Prefix] 构造携带前缀的 IPv6 地址（子网块形式）。
func FromPrefix(prefix netip.Prefix) (*xgrouping.Address, error) {
	if !prefix.IsValid() {
		return nil, fmt.Errorf("%w: invalid prefix", ErrNotIPv6)
	}
	addr := prefix.Addr()
	if !addr.Is6() || addr.Is4In6() {
		return nil, fmt.Errorf("%w: %s", ErrNotIPv6, addr)
	}
	b := addr.As16()
	return FromBytes(b[:], xdivision.ToPrefixLen(prefix.Bits()), "")
}

// Loopback 返回回环地址 ::1，段经驻留缓存合成。
func Loopback() *xgrouping.Address {
	var c Creator
	segs := c.CreateSegmentArray(SegmentCount)
	zero := c.CreateSegment(0)
	for i := 0; i < SegmentCount-1; i++ {
		segs[i] = zero
	}
	segs[SegmentCount-1] = c.CreateSegment(1)
	addr, err := c.CreateAddressFromSegments(segs)
	if err != nil {
		// 常量构造路径，参数必然合法
		panic(err)
	}
	return addr
}

// Addr 把单值 IPv6 地址转换为 [netip.Addr]，携带 zone。
// 多值地址返回 (netip.Addr{}, false)。
func Addr(a *xgrouping.Address) (netip.Addr, bool) {
	if a == nil || a.IsMultiple() || a.SegmentCount() != SegmentCount {
		return netip.Addr{}, false
	}
	var b [16]byte
	copy(b[:], a.Bytes())
	addr := netip.AddrFrom16(b)
	if zone := a.Zone(); zone != "" {
		addr = addr.WithZone(zone)
	}
	return addr, true
}

// Prefix 把携带前缀的 IPv6 地址转换为 [netip.Prefix]。
// 无前缀或范围与前缀块不一致时返回 (netip.Prefix{}, false)。
func Prefix(a *xgrouping.Address) (netip.Prefix, bool) {
	if a == nil || a.SegmentCount() != SegmentCount {
		return netip.Prefix{}, false
	}
	p, ok := a.PrefixLength()
	if !ok || !a.Section().IsRangeEquivalent(p) {
		return netip.Prefix{}, false
	}
	var b [16]byte
	copy(b[:], a.Bytes())
	return netip.PrefixFrom(netip.AddrFrom16(b), p), true
}

// Iterator 返回地址取值的笛卡尔积迭代器，按字典序产出单值地址。
// 多值地址产出的地址不携带 zone；单值地址原样产出一次（保留 zone）。
func Iterator(a *xgrouping.Address) *xgrouping.AddressIterator {
	var c Creator
	section := a.Section()
	useOriginal := !a.IsMultiple()
	var inner *xgrouping.SegmentsIterator
	if !useOriginal {
		inner = xgrouping.NewSegmentsIterator(section, c, func(i int) *xgrouping.SegmentValueIterator {
			seg := section.Segment(i)
			return xgrouping.NewSegmentValueIterator(c, seg.LowerValue(), seg.UpperValue())
		})
	}
	return xgrouping.NewAddressIterator(a, c, useOriginal, inner)
}

// stringOptions 是 IPv6 多值呈现选项：十六进制、冒分、非压缩。
var stringOptions = &xgrouping.StringOptions{
	Radix:     SegmentRadix,
	Separator: ':',
	Wildcards: xgrouping.Wildcards{
		RangeSeparator: xgrouping.DefaultRangeSeparator,
		Wildcard:       xgrouping.DefaultSegmentWildcard,
	},
}

// String 返回地址的规范呈现。单值地址走 [netip.Addr] 的压缩形式；
// 多值地址使用非压缩的冒分十六进制，携带前缀时追加 /prefix。
func String(a *xgrouping.Address) string {
	if a == nil {
		return "<nil>"
	}
	if addr, ok := Addr(a); ok {
		s := addr.String()
		if p, hasPrefix := a.PrefixLength(); hasPrefix {
			s = fmt.Sprintf("%s/%d", s, p)
		}
		return s
	}
	params := stringOptions.ToParams()
	s := params.ToNormalizedString(&a.Section().Grouping, a.Zone())
	if p, ok := a.PrefixLength(); ok {
		s = fmt.Sprintf("%s/%d", s, p)
	}
	return s
}
