package xipv6

import (
	"fmt"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xgrouping"
	"github.com/omeyang/ipkit/pkg/util/xintern"
)

// IPv6 族常量。
const (
	// SegmentCount 是完整 IPv6 地址的段数。
	SegmentCount = 8
	// BitsPerSegment 是每段位宽。
	BitsPerSegment xdivision.BitCount = 16
	// BytesPerSegment 是每段字节数。
	BytesPerSegment = 2
	// BitCount 是完整地址位宽。
	BitCount xdivision.BitCount = 128
	// MaxValuePerSegment 是单段最大取值。
	MaxValuePerSegment uint64 = 0xffff
	// SegmentRadix 是段值的默认呈现基数。
	SegmentRadix = 16
)

// lowValueCacheSize 是按值驻留的段值上限（不含）。
// 零段与小值段最常见，更大的值直接构造。
const lowValueCacheSize = 256

var (
	segmentCache     = xintern.NewTable[xdivision.Segment](lowValueCacheSize)
	allPrefixedCache = xintern.NewTable[xdivision.Segment](BitsPerSegment)

	zeroPrefixSegment = xdivision.MustNewSegment(0, MaxValuePerSegment, BitsPerSegment, SegmentRadix, xdivision.ToPrefixLen(0))
	allRangeSegment   = xdivision.MustNewSegment(0, MaxValuePerSegment, BitsPerSegment, SegmentRadix, nil)

	emptySegments = []xdivision.Segment{}
	emptySections = []*xgrouping.Section{}
)

// Creator 是 IPv6 族的工厂能力表，实现 [xgrouping.AddressCreator]。
// 无状态，零值可用；驻留缓存为包级共享。
type Creator struct{}

var _ xgrouping.AddressCreator = Creator{}

// BitsPerSegment 返回每段位宽 16。
func (Creator) BitsPerSegment() xdivision.BitCount { return BitsPerSegment }

// BytesPerSegment 返回每段字节数 2。
func (Creator) BytesPerSegment() int { return BytesPerSegment }

// MaxValuePerSegment 返回单段最大取值 0xffff。
func (Creator) MaxValuePerSegment() uint64 { return MaxValuePerSegment }

// CreateSegment 产出无前缀单值段，低值段按值驻留。
func (Creator) CreateSegment(value uint64) xdivision.Segment {
	if value < lowValueCacheSize {
		seg := segmentCache.LoadOrCreate(int(value), func() *xdivision.Segment {
			s := xdivision.MustNewSegment(value, value, BitsPerSegment, SegmentRadix, nil)
			return &s
		})
		return *seg
	}
	return xdivision.MustNewSegment(value, value, BitsPerSegment, SegmentRadix, nil)
}

// CreatePrefixedSegment 产出携带段级前缀的单值段，value 先按网络掩码收敛。
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
	value &= xdivision.NetworkMask(BitsPerSegment, p)
	return xdivision.MustNewSegment(value, value, BitsPerSegment, SegmentRadix, xdivision.ToPrefixLen(p))
}

// CreateRangeSegment 产出范围段，语义与 IPv4 侧一致。
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
		return c.CreatePrefixedSegment(lower, xdivision.ToPrefixLen(p))
	}
	if lower == 0 && upper == mask {
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

// CreateSectionFromSegments 从段数组构造 IPv6 section。
// 段数超过 8 时返回 xgrouping.ErrInvalidArgument。
func (Creator) CreateSectionFromSegments(segments []xdivision.Segment) (*xgrouping.Section, error) {
	if len(segments) > SegmentCount {
		return nil, fmt.Errorf("%w: %d segments exceed IPv6 maximum %d", xgrouping.ErrInvalidArgument, len(segments), SegmentCount)
	}
	return xgrouping.NewSectionFromSegments(segments, BitsPerSegment)
}

// CreateMixedSection 是混合族 section 的直通变体：
// 调用方已装配好内嵌 IPv4 的 mixed，直接采用。
func (Creator) CreateMixedSection(_ []xdivision.Segment, mixed *xgrouping.Section) (*xgrouping.Section, error) {
	return mixed, nil
}

// CreateSectionFromBytes 从网络字节序字节构造 IPv6 section。
func (c Creator) CreateSectionFromBytes(bytes []byte, prefix xdivision.PrefixLen) (*xgrouping.Section, error) {
	if len(bytes) > SegmentCount*BytesPerSegment {
		return nil, fmt.Errorf("%w: %d bytes exceed IPv6 maximum %d", xgrouping.ErrInvalidArgument, len(bytes), SegmentCount*BytesPerSegment)
	}
	segments, err := xgrouping.SegmentsFromBytes(bytes, c, prefix)
	if err != nil {
		return nil, err
	}
	return c.CreateSectionFromSegments(segments)
}

// CreateAddress 把 section 包装为 IPv6 地址（无 zone）。
func (Creator) CreateAddress(section *xgrouping.Section) (*xgrouping.Address, error) {
	if section.SegmentCount() != SegmentCount {
		return nil, fmt.Errorf("%w: IPv6 address needs %d segments, got %d", xgrouping.ErrInvalidArgument, SegmentCount, section.SegmentCount())
	}
	return xgrouping.NewAddress(section, ""), nil
}

// CreateAddressWithZone 把 section 包装为携带 zone 的 IPv6 地址。
func (Creator) CreateAddressWithZone(section *xgrouping.Section, zone string) (*xgrouping.Address, error) {
	if section.SegmentCount() != SegmentCount {
		return nil, fmt.Errorf("%w: IPv6 address needs %d segments, got %d", xgrouping.ErrInvalidArgument, SegmentCount, section.SegmentCount())
	}
	return xgrouping.NewAddress(section, zone), nil
}

// CreateAddressFromSegments 从段数组直接构造 IPv6 地址。
func (c Creator) CreateAddressFromSegments(segments []xdivision.Segment) (*xgrouping.Address, error) {
	section, err := c.CreateSectionFromSegments(segments)
	if err != nil {
		return nil, err
	}
	return c.CreateAddress(section)
}
