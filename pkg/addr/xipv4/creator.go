package xipv4

import (
	"fmt"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xgrouping"
	"github.com/omeyang/ipkit/pkg/util/xintern"
)

// IPv4 族常量。
const (
	// SegmentCount 是完整 IPv4 地址的段数。
	SegmentCount = 4
	// BitsPerSegment 是每段位宽。
	BitsPerSegment xdivision.BitCount = 8
	// BytesPerSegment 是每段字节数。
	BytesPerSegment = 1
	// BitCount 是完整地址位宽。
	BitCount xdivision.BitCount = 32
	// MaxValuePerSegment 是单段最大取值。
	MaxValuePerSegment uint64 = 0xff
	// SegmentRadix 是段值的默认呈现基数。
	SegmentRadix = 10
)

// 段驻留缓存。三级缓存都存放不可变段，访问是良性竞争（见包文档）。
var (
	// segmentCache 驻留无前缀单值段，一槽一值。
	segmentCache = xintern.NewTable[xdivision.Segment](int(MaxValuePerSegment) + 1)

	// segmentPrefixCache 驻留携带前缀的单值段：
	// 行 prefix-1，行内按掩码后的高 prefix 位寻址。
	segmentPrefixCache = xintern.NewMatrix[xdivision.Segment](prefixRowSizes())

	// allPrefixedCache 驻留 [0, 255]/prefix 全范围段，行 prefix-1。
	allPrefixedCache = xintern.NewTable[xdivision.Segment](BitsPerSegment)

	// zeroPrefixSegment 是前缀 0 的驻留全范围段 [0, 255]/0。
	zeroPrefixSegment = xdivision.MustNewSegment(0, MaxValuePerSegment, BitsPerSegment, SegmentRadix, xdivision.ToPrefixLen(0))

	// allRangeSegment 是无前缀的驻留全范围段 [0, 255]。
	allRangeSegment = xdivision.MustNewSegment(0, MaxValuePerSegment, BitsPerSegment, SegmentRadix, nil)

	// emptySegments 是共享的空段数组。
	emptySegments = []xdivision.Segment{}

	// emptySections 是共享的空 section 数组。
	emptySections = []*xgrouping.Section{}
)

func prefixRowSizes() []int {
	sizes := make([]int, BitsPerSegment)
	for i, digits := 0, 2; i < len(sizes); i, digits = i+1, digits<<1 {
		sizes[i] = digits
	}
	return sizes
}

// Creator 是 IPv4 族的工厂能力表，实现 [xgrouping.AddressCreator]。
// 无状态，零值可用；驻留缓存为包级共享。
type Creator struct{}

// 编译期接口断言。
var _ xgrouping.AddressCreator = Creator{}

// BitsPerSegment 返回每段位宽 8。
func (Creator) BitsPerSegment() xdivision.BitCount { return BitsPerSegment }

// BytesPerSegment 返回每段字节数 1。
func (Creator) BytesPerSegment() int { return BytesPerSegment }

// MaxValuePerSegment 返回单段最大取值 255。
func (Creator) MaxValuePerSegment() uint64 { return MaxValuePerSegment }

// CreateSegment 产出无前缀单值段，按值驻留。
func (Creator) CreateSegment(value uint64) xdivision.Segment {
	seg := segmentCache.LoadOrCreate(int(value), func() *xdivision.Segment {
		s := xdivision.MustNewSegment(value, value, BitsPerSegment, SegmentRadix, nil)
		return &s
	})
	return *seg
}

// CreatePrefixedSegment 产出携带段级前缀的单值段。
// value 先按网络掩码收敛；prefix 为 nil 时退化为 [Creator.CreateSegment]；
// prefix 为 0 时返回驻留的全范围零前缀段；prefix 超过段宽时按段宽截断。
func (c Creator) CreatePrefixedSegment(value uint64, prefix xdivision.PrefixLen) xdivision.Segment {
	if prefix == nil {
		return c.CreateSegment(value)
	}
	p := *prefix
	if p <= 0 {
		return zeroPrefixSegment
	}
	if p > BitsPerSegment {
		p = BitsPerSegment
	}
	mask := xdivision.NetworkMask(BitsPerSegment, p)
	value &= mask
	valueIndex := int(value >> uint(BitsPerSegment-p))
	seg := segmentPrefixCache.LoadOrCreate(p-1, valueIndex, func() *xdivision.Segment {
		s := xdivision.MustNewSegment(value, value, BitsPerSegment, SegmentRadix, xdivision.ToPrefixLen(p))
		return &s
	})
	return *seg
}

// CreateRangeSegment 产出范围段。
// 无前缀时：单值退化为 [Creator.CreateSegment]，全范围返回驻留段；
// 有前缀时：掩码收敛为单值则退化为 [Creator.CreatePrefixedSegment]，
// 范围恰为前缀全子块则返回驻留的 [0, 255]/prefix 段。
func (c Creator) CreateRangeSegment(lower, upper uint64, prefix xdivision.PrefixLen) xdivision.Segment {
	if prefix == nil {
		if lower == upper {
			return c.CreateSegment(lower)
		}
		if lower == 0 && upper == MaxValuePerSegment {
			return allRangeSegment
		}
		return xdivision.MustNewSegment(lower, upper, BitsPerSegment, SegmentRadix, nil)
	}
	p := *prefix
	if p <= 0 {
		return zeroPrefixSegment
	}
	if p > BitsPerSegment {
		p = BitsPerSegment
	}
	mask := xdivision.NetworkMask(BitsPerSegment, p)
	lower &= mask
	if upper&mask == lower {
		// 两端掩码后同块，收敛为单个掩码值
		return c.CreatePrefixedSegment(lower, xdivision.ToPrefixLen(p))
	}
	if lower == 0 && upper == mask {
		// 前缀全子块 [0, mask]/p，驻留为全范围段
		seg := allPrefixedCache.LoadOrCreate(p-1, func() *xdivision.Segment {
			s := xdivision.MustNewSegment(0, MaxValuePerSegment, BitsPerSegment, SegmentRadix, xdivision.ToPrefixLen(p))
			return &s
		})
		return *seg
	}
	return xdivision.MustNewSegment(lower, upper, BitsPerSegment, SegmentRadix, xdivision.ToPrefixLen(p))
}

// CreateSegmentArray 返回长度 length 的段数组；length 为 0 时返回共享空数组。
func (Creator) CreateSegmentArray(length int) []xdivision.Segment {
	if length == 0 {
		return emptySegments
	}
	return make([]xdivision.Segment, length)
}

// CreateSectionArray 返回长度 length 的 section 数组；
// length 为 0 时返回共享空数组。
func (Creator) CreateSectionArray(length int) []*xgrouping.Section {
	if length == 0 {
		return emptySections
	}
	return make([]*xgrouping.Section, length)
}

// CreateSectionFromSegments 从段数组构造 IPv4 section。
// 段数超过 4 时返回 xgrouping.ErrInvalidArgument。
func (Creator) CreateSectionFromSegments(segments []xdivision.Segment) (*xgrouping.Section, error) {
	if len(segments) > SegmentCount {
		return nil, fmt.Errorf("%w: %d segments exceed IPv4 maximum %d", xgrouping.ErrInvalidArgument, len(segments), SegmentCount)
	}
	return xgrouping.NewSectionFromSegments(segments, BitsPerSegment)
}

// CreateMixedSection 是混合族 section 的直通变体：IPv4 侧直接采用
// 调用方装配好的 mixed。
func (Creator) CreateMixedSection(_ []xdivision.Segment, mixed *xgrouping.Section) (*xgrouping.Section, error) {
	return mixed, nil
}

// CreateSectionFromBytes 从网络字节序字节构造 IPv4 section。
// 字节数超过 4 时返回 xgrouping.ErrInvalidArgument。
func (c Creator) CreateSectionFromBytes(bytes []byte, prefix xdivision.PrefixLen) (*xgrouping.Section, error) {
	if len(bytes) > SegmentCount*BytesPerSegment {
		return nil, fmt.Errorf("%w: %d bytes exceed IPv4 maximum %d", xgrouping.ErrInvalidArgument, len(bytes), SegmentCount*BytesPerSegment)
	}
	segments, err := xgrouping.SegmentsFromBytes(bytes, c, prefix)
	if err != nil {
		return nil, err
	}
	return c.CreateSectionFromSegments(segments)
}

// CreateAddress 把 section 包装为 IPv4 地址。
// section 必须是完整的 4 段，否则返回 xgrouping.ErrInvalidArgument。
func (Creator) CreateAddress(section *xgrouping.Section) (*xgrouping.Address, error) {
	if section.SegmentCount() != SegmentCount {
		return nil, fmt.Errorf("%w: IPv4 address needs %d segments, got %d", xgrouping.ErrInvalidArgument, SegmentCount, section.SegmentCount())
	}
	return xgrouping.NewAddress(section, ""), nil
}

// CreateAddressWithZone 把 section 包装为地址。
// IPv4 没有 zone 概念，zone 非空时返回 xgrouping.ErrInvalidArgument。
func (c Creator) CreateAddressWithZone(section *xgrouping.Section, zone string) (*xgrouping.Address, error) {
	if zone != "" {
		return nil, fmt.Errorf("%w: zone %q not allowed for IPv4", xgrouping.ErrInvalidArgument, zone)
	}
	return c.CreateAddress(section)
}

// CreateAddressFromSegments 从段数组直接构造 IPv4 地址。
func (c Creator) CreateAddressFromSegments(segments []xdivision.Segment) (*xgrouping.Address, error) {
	section, err := c.CreateSectionFromSegments(segments)
	if err != nil {
		return nil, err
	}
	return c.CreateAddress(section)
}
