package xipv4

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"go4.org/netipx"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xgrouping"
)

// FromBytes 从 4 个网络字节序字节构造 IPv4 地址，可选前缀。
func FromBytes(bytes []byte, prefix xdivision.PrefixLen) (*xgrouping.Address, error) {
	if len(bytes) != SegmentCount*BytesPerSegment {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrNotIPv4, SegmentCount*BytesPerSegment, len(bytes))
	}
	var c Creator
	section, err := c.CreateSectionFromBytes(bytes, prefix)
	if err != nil {
		return nil, err
	}
	return c.CreateAddress(section)
}

// FromUint32 从网络字节序的 uint32 表示构造 IPv4 地址，可选前缀。
func FromUint32(value uint32, prefix xdivision.PrefixLen) (*xgrouping.Address, error) {
	var c Creator
	segments := xgrouping.SegmentsFromValue(uint64(value), SegmentCount*BytesPerSegment, c, prefix)
	return c.CreateAddressFromSegments(segments)
}

// FromValueProviders 从逐段值提供者构造 IPv4 地址。
// lower 为 nil 时以 upper 作为单值来源；两者都非 nil 时构造范围地址。
func FromValueProviders(lower, upper xgrouping.SegmentValueProvider, prefix xdivision.PrefixLen) (*xgrouping.Address, error) {
	var c Creator
	segments := xgrouping.SegmentsFromProviders(lower, upper, SegmentCount, c, prefix)
	return c.CreateAddressFromSegments(segments)
}

// FromAddr 从 [netip.Addr] 构造 IPv4 地址。
// IPv4-mapped IPv6 地址先解映射；非 IPv4 返回 [ErrNotIPv4]。
func FromAddr(addr netip.Addr) (*xgrouping.Address, error) {
	if !addr.Is4() && !addr.Is4In6() {
		return nil, fmt.Errorf("%w: %s", ErrNotIPv4, addr)
	}
	b := addr.Unmap().As4()
	return FromBytes(b[:], nil)
}

// FromPrefix 从 [netip.Prefix] 构造携带前缀的 IPv4 地址（子网块形式）。
func FromPrefix(prefix netip.Prefix) (*xgrouping.Address, error) {
	if !prefix.IsValid() {
		return nil, fmt.Errorf("%w: invalid prefix", ErrNotIPv4)
	}
	addr := prefix.Addr()
	if !addr.Is4() && !addr.Is4In6() {
		return nil, fmt.Errorf("%w: %s", ErrNotIPv4, addr)
	}
	b := addr.Unmap().As4()
	return FromBytes(b[:], xdivision.ToPrefixLen(prefix.Bits()))
}

// FromIPRange 从 [netipx.IPRange] 构造逐段范围形式的 IPv4 地址。
// 区间仅当首个分叉段之后两端整段对齐（下界 0、上界 255）时可表达，
// 否则返回 [ErrUnalignedRange]。
func FromIPRange(r netipx.IPRange) (*xgrouping.Address, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: invalid range", ErrNotIPv4)
	}
	from, to := r.From(), r.To()
	if (!from.Is4() && !from.Is4In6()) || (!to.Is4() && !to.Is4In6()) {
		return nil, fmt.Errorf("%w: %s-%s", ErrNotIPv4, from, to)
	}
	fromBytes := from.Unmap().As4()
	toBytes := to.Unmap().As4()
	diverged := false
	for i := 0; i < SegmentCount; i++ {
		if diverged && (fromBytes[i] != 0 || toBytes[i] != 0xff) {
			return nil, fmt.Errorf("%w: %s-%s", ErrUnalignedRange, from, to)
		}
		if fromBytes[i] != toBytes[i] {
			diverged = true
		}
	}
	return FromValueProviders(
		func(i int) uint64 { return uint64(fromBytes[i]) },
		func(i int) uint64 { return uint64(toBytes[i]) },
		nil,
	)
}

// Loopback 返回回环地址 127.0.0.1，段经驻留缓存合成。
func Loopback() *xgrouping.Address {
	var c Creator
	segs := c.CreateSegmentArray(SegmentCount)
	zero := c.CreateSegment(0)
	segs[0] = c.CreateSegment(127)
	segs[1], segs[2] = zero, zero
	segs[3] = c.CreateSegment(1)
	addr, err := c.CreateAddressFromSegments(segs)
	if err != nil {
		// 常量构造路径，参数必然合法
		panic(err)
	}
	return addr
}

// Addr 把单值 IPv4 地址转换为 [netip.Addr]。
// 多值地址返回 (netip.Addr{}, false)。
func Addr(a *xgrouping.Address) (netip.Addr, bool) {
	if a == nil || a.IsMultiple() || a.SegmentCount() != SegmentCount {
		return netip.Addr{}, false
	}
	var b [4]byte
	copy(b[:], a.Bytes())
	return netip.AddrFrom4(b), true
}

// Prefix 把携带前缀的 IPv4 地址转换为 [netip.Prefix]。
// 无前缀或范围与前缀块不一致时返回 (netip.Prefix{}, false)。
func Prefix(a *xgrouping.Address) (netip.Prefix, bool) {
	if a == nil || a.SegmentCount() != SegmentCount {
		return netip.Prefix{}, false
	}
	p, ok := a.PrefixLength()
	if !ok || !a.Section().IsRangeEquivalent(p) {
		return netip.Prefix{}, false
	}
	var b [4]byte
	copy(b[:], a.Bytes())
	return netip.PrefixFrom(netip.AddrFrom4(b), p), true
}

// IPRange 把 IPv4 地址的取值范围转换为 [netipx.IPRange]。
func IPRange(a *xgrouping.Address) (netipx.IPRange, bool) {
	if a == nil || a.SegmentCount() != SegmentCount {
		return netipx.IPRange{}, false
	}
	var lo, hi [4]byte
	copy(lo[:], a.Bytes())
	copy(hi[:], a.UpperBytes())
	r := netipx.IPRangeFrom(netip.AddrFrom4(lo), netip.AddrFrom4(hi))
	return r, r.IsValid()
}

// Uint32 返回单值 IPv4 地址的 uint32 表示（网络字节序）。
// 多值地址返回 (0, false)。
func Uint32(a *xgrouping.Address) (uint32, bool) {
	if a == nil || a.IsMultiple() || a.SegmentCount() != SegmentCount {
		return 0, false
	}
	return binary.BigEndian.Uint32(a.Bytes()), true
}

// Iterator 返回地址取值的笛卡尔积迭代器，按字典序产出单值地址。
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

// SectionIterator 返回 section 取值的笛卡尔积迭代器。
func SectionIterator(section *xgrouping.Section) *xgrouping.SectionIterator {
	var c Creator
	useOriginal := !section.IsMultiple()
	var inner *xgrouping.SegmentsIterator
	if !useOriginal {
		inner = xgrouping.NewSegmentsIterator(section, c, func(i int) *xgrouping.SegmentValueIterator {
			seg := section.Segment(i)
			return xgrouping.NewSegmentValueIterator(c, seg.LowerValue(), seg.UpperValue())
		})
	}
	return xgrouping.NewSectionIterator(section, c, useOriginal, inner)
}

// stringOptions 是 IPv4 的规范呈现选项：十进制、点分、全范围段用通配符。
var stringOptions = &xgrouping.StringOptions{
	Radix:     SegmentRadix,
	Separator: '.',
	Wildcards: xgrouping.Wildcards{
		RangeSeparator: xgrouping.DefaultRangeSeparator,
		Wildcard:       xgrouping.DefaultSegmentWildcard,
	},
}

// String 返回地址的规范点分呈现：单段范围用 lower-upper，
// 全范围段用 *，携带前缀时追加 /prefix。
func String(a *xgrouping.Address) string {
	if a == nil {
		return "<nil>"
	}
	params := stringOptions.ToParams()
	s := params.ToNormalizedString(&a.Section().Grouping, "")
	if p, ok := a.PrefixLength(); ok {
		s = fmt.Sprintf("%s/%d", s, p)
	}
	return s
}
