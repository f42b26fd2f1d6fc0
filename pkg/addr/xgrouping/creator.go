package xgrouping

import (
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
)

// SegmentCreator 是地址族的段工厂能力表：携带族常量（段位宽、最大值）
// 并产出段，常见值经驻留缓存复用。
type SegmentCreator interface {
	// BitsPerSegment 返回该族每段位宽（IPv4 为 8，IPv6 为 16）。
	BitsPerSegment() xdivision.BitCount

	// BytesPerSegment 返回该族每段字节数。
	BytesPerSegment() int

	// MaxValuePerSegment 返回单段最大取值。
	MaxValuePerSegment() uint64

	// CreateSegment 产出无前缀单值段，经驻留缓存复用。
	CreateSegment(value uint64) xdivision.Segment

	// CreatePrefixedSegment 产出携带段级前缀的单值段。
	// value 先按网络掩码收敛；prefix 为 nil 时退化为 CreateSegment；
	// prefix 为 0 时返回驻留的全范围零前缀段。
	CreatePrefixedSegment(value uint64, prefix xdivision.PrefixLen) xdivision.Segment

	// CreateRangeSegment 产出范围段。掩码后收敛为单值时退化为
	// CreatePrefixedSegment；范围恰为前缀全子块时返回驻留段。
	CreateRangeSegment(lower, upper uint64, prefix xdivision.PrefixLen) xdivision.Segment

	// CreateSegmentArray 返回长度 length 的段数组；length 为 0 时
	// 返回共享的空数组。
	CreateSegmentArray(length int) []xdivision.Segment
}

// SectionCreator 在段工厂之上产出 section。
type SectionCreator interface {
	SegmentCreator

	// CreateSectionFromSegments 从段数组构造 section，
	// 分组级前缀由段级前缀推导。
	CreateSectionFromSegments(segments []xdivision.Segment) (*Section, error)

	// CreateMixedSection 构造混合族 section 的直通变体：
	// 调用方已装配好 mixed，工厂按族决定直通或改写。
	CreateMixedSection(segments []xdivision.Segment, mixed *Section) (*Section, error)

	// CreateSectionFromBytes 从网络字节序字节构造 section，
	// 可选分组级前缀。
	CreateSectionFromBytes(bytes []byte, prefix xdivision.PrefixLen) (*Section, error)
}

// AddressCreator 在 section 工厂之上产出地址。
type AddressCreator interface {
	SectionCreator

	// CreateAddress 把 section 包装为地址。
	CreateAddress(section *Section) (*Address, error)

	// CreateAddressWithZone 把 section 包装为携带 zone 的地址。
	// 无 zone 概念的地址族收到非空 zone 时返回 [ErrInvalidArgument]。
	CreateAddressWithZone(section *Section, zone string) (*Address, error)

	// CreateAddressFromSegments 从段数组直接构造地址。
	CreateAddressFromSegments(segments []xdivision.Segment) (*Address, error)
}

// Address 是 Section 加可选 zone 的地址包装。地址独占其 section；
// 构造后不可变。
type Address struct {
	section *Section
	zone    string

	lowerAddress atomic.Pointer[Address]
	upperAddress atomic.Pointer[Address]
	flight       singleflight.Group
}

// NewAddress 把 section 包装为地址。zone 语义由地址族 creator 把关，
// 这里不作约束。
func NewAddress(section *Section, zone string) *Address {
	return &Address{section: section, zone: zone}
}

// Section 返回地址主体。
func (a *Address) Section() *Section {
	return a.section
}

// Zone 返回 IPv6 zone；无 zone 时为空串。
func (a *Address) Zone() string {
	return a.zone
}

// SegmentCount 返回段个数。
func (a *Address) SegmentCount() int { return a.section.SegmentCount() }

// Segment 返回第 index 个段。
func (a *Address) Segment(index int) xdivision.Segment { return a.section.Segment(index) }

// BitCount 返回地址位宽。
func (a *Address) BitCount() xdivision.BitCount { return a.section.BitCount() }

// Bytes 返回最低地址的网络字节序字节。
func (a *Address) Bytes() []byte { return a.section.Bytes() }

// UpperBytes 返回最高地址的网络字节序字节。
func (a *Address) UpperBytes() []byte { return a.section.UpperBytes() }

// IsMultiple 报告地址是否表示多个具体地址。
func (a *Address) IsMultiple() bool { return a.section.IsMultiple() }

// IsPrefixed 报告地址是否携带前缀。
func (a *Address) IsPrefixed() bool { return a.section.IsPrefixed() }

// PrefixLength 返回前缀长度，第二个返回值为 false 表示无前缀。
func (a *Address) PrefixLength() (xdivision.BitCount, bool) { return a.section.PrefixLength() }

// Equal 报告两个地址是否相等：section 结构相等且 zone 一致。
func (a *Address) Equal(other *Address) bool {
	if a == other {
		return true
	}
	return other != nil && a.zone == other.zone && a.section.Equal(&other.section.Grouping)
}

// String 返回地址的调试表示。
func (a *Address) String() string {
	if a.zone == "" {
		return a.section.String()
	}
	return a.section.String() + "%" + a.zone
}

// LowestAddress 返回只含各段下界的单值地址。
// 地址自身无前缀且单值时直接返回自身。结果缓存。
func LowestAddress(addr *Address, creator AddressCreator) (*Address, error) {
	return lowestOrHighestAddress(addr, creator, true)
}

// HighestAddress 返回只含各段上界的单值地址。
// 地址自身无前缀且单值时直接返回自身。结果缓存。
func HighestAddress(addr *Address, creator AddressCreator) (*Address, error) {
	return lowestOrHighestAddress(addr, creator, false)
}

func lowestOrHighestAddress(addr *Address, creator AddressCreator, lowest bool) (*Address, error) {
	if !addr.IsPrefixed() && !addr.IsMultiple() {
		return addr, nil
	}
	slot, key := &addr.lowerAddress, "lower"
	if !lowest {
		slot, key = &addr.upperAddress, "upper"
	}
	if cached := slot.Load(); cached != nil {
		return cached, nil
	}
	result, err, _ := addr.flight.Do(key, func() (any, error) {
		if cached := slot.Load(); cached != nil {
			return cached, nil
		}
		section, err := lowestOrHighestSection(addr.section, creator, lowest)
		if err != nil {
			return nil, err
		}
		derived, err := creator.CreateAddress(section)
		if err != nil {
			return nil, err
		}
		slot.Store(derived)
		return derived, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Address), nil
}
