package xgrouping

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
)

// Section 是全部划分均为同宽 Segment 的 Grouping，即与地址族无关的
// 地址主体。必须通过 [NewSectionFromSegments] 或 creator 构造。
type Section struct {
	Grouping
	segments       []xdivision.Segment
	bitsPerSegment xdivision.BitCount

	// 最低/最高派生 section 的缓存：未命中时经 singleflight 合并计算，
	// 命中后读取无锁。
	lowerSection atomic.Pointer[Section]
	upperSection atomic.Pointer[Section]
	flight       singleflight.Group
}

// NewSectionFromSegments 从段数组构造 Section。
// 所有段的位宽必须等于 bitsPerSegment，否则返回 [ErrInvalidArgument]。
// 分组级前缀由段级前缀推导：首个携带前缀 p 的段（下标 i）确定整体前缀
// i*bitsPerSegment + p；无前缀段则整组无前缀。
func NewSectionFromSegments(segments []xdivision.Segment, bitsPerSegment xdivision.BitCount) (*Section, error) {
	segs := make([]xdivision.Segment, len(segments))
	copy(segs, segments)
	divisions := make([]xdivision.Division, len(segs))
	var prefix xdivision.PrefixLen
	for i, seg := range segs {
		if seg.BitCount() != bitsPerSegment {
			return nil, fmt.Errorf("%w: segment %d has %d bits, want %d", ErrInvalidArgument, i, seg.BitCount(), bitsPerSegment)
		}
		if p, ok := seg.DivisionPrefix(); ok && prefix == nil {
			prefix = xdivision.ToPrefixLen(i*bitsPerSegment + p)
		}
		divisions[i] = seg.Division
	}
	s := &Section{segments: segs, bitsPerSegment: bitsPerSegment}
	s.Grouping.divisions = divisions
	if prefix != nil {
		p := *prefix
		if p < 0 || p > s.BitCount() {
			return nil, fmt.Errorf("%w: prefix %d not in [0, %d]", ErrInvalidArgument, p, s.BitCount())
		}
		s.Grouping.prefix, s.Grouping.hasPrefix = p, true
	}
	return s, nil
}

// SegmentCount 返回段个数。
func (s *Section) SegmentCount() int {
	return len(s.segments)
}

// BitsPerSegment 返回每段位宽。
func (s *Section) BitsPerSegment() xdivision.BitCount {
	return s.bitsPerSegment
}

// Segment 返回第 index 个段。index 越界时 panic，语义与切片下标一致。
func (s *Section) Segment(index int) xdivision.Segment {
	return s.segments[index]
}

// Segments 返回段数组副本。
func (s *Section) Segments() []xdivision.Segment {
	out := make([]xdivision.Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// CopySegments 把 [from, to) 区间的段拷贝到 dst 的 dstOffset 起始处。
// 区间或目标越界时返回 [ErrIndexOutOfBounds]。
func (s *Section) CopySegments(from, to int, dst []xdivision.Segment, dstOffset int) error {
	if from < 0 || to > len(s.segments) || from > to {
		return fmt.Errorf("%w: segment range [%d, %d) of %d", ErrIndexOutOfBounds, from, to, len(s.segments))
	}
	if dstOffset < 0 || dstOffset+(to-from) > len(dst) {
		return fmt.Errorf("%w: destination range [%d, %d) of %d", ErrIndexOutOfBounds, dstOffset, dstOffset+(to-from), len(dst))
	}
	copy(dst[dstOffset:], s.segments[from:to])
	return nil
}

// Subsection 返回 [from, to) 区间的子 section。
// 区间为整段时返回原 section；from == to 时返回空 section；
// from > to 或越界时返回 [ErrIndexOutOfBounds]。
func Subsection(section *Section, creator SectionCreator, from, to int) (*Section, error) {
	if from == 0 && to == section.SegmentCount() {
		return section, nil
	}
	if from > to || from < 0 || to > section.SegmentCount() {
		return nil, fmt.Errorf("%w: subsection [%d, %d) of %d", ErrIndexOutOfBounds, from, to, section.SegmentCount())
	}
	segs := creator.CreateSegmentArray(to - from)
	if err := section.CopySegments(from, to, segs, 0); err != nil {
		return nil, err
	}
	return creator.CreateSectionFromSegments(segs)
}

// Append 把 other 拼接到 section 之后。
// extendPrefix 为 true 且 section 携带前缀时，追加位置统一填充零前缀
// 驻留段（把网络前缀延伸进新增的宿主位）；否则照搬 other 的段值。
// 结果前缀：section 有前缀时沿用，否则取 other 的前缀右移 section 位宽。
func Append(section, other *Section, creator SectionCreator, extendPrefix bool) (*Section, error) {
	segmentCount := section.SegmentCount()
	otherCount := other.SegmentCount()
	segs := creator.CreateSegmentArray(segmentCount + otherCount)
	if err := section.CopySegments(0, segmentCount, segs, 0); err != nil {
		return nil, err
	}
	if extendPrefix && section.IsPrefixed() {
		allSegment := creator.CreatePrefixedSegment(0, xdivision.ToPrefixLen(0))
		for i := segmentCount; i < len(segs); i++ {
			segs[i] = allSegment
		}
	} else if err := other.CopySegments(0, otherCount, segs, segmentCount); err != nil {
		return nil, err
	}
	return creator.CreateSectionFromSegments(segs)
}

// Replace 把 other 的段按位置替换进 section，起始下标 index。
// index + other.SegmentCount() > section.SegmentCount() 时返回
// [ErrSizeMismatch]；index 为负时返回 [ErrIndexOutOfBounds]。
// other 为空时返回原 section。替换区之后仍有尾段时：other 携带前缀且
// extendPrefix 为 true 则尾段统一填充零前缀驻留段，否则保留原值。
func Replace(section, other *Section, creator SectionCreator, index int, extendPrefix bool) (*Section, error) {
	segmentCount := section.SegmentCount()
	otherCount := other.SegmentCount()
	if index < 0 {
		return nil, fmt.Errorf("%w: replace index %d", ErrIndexOutOfBounds, index)
	}
	if index+otherCount > segmentCount {
		return nil, fmt.Errorf("%w: replacing %d segments at %d exceeds %d", ErrSizeMismatch, otherCount, index, segmentCount)
	}
	if otherCount == 0 {
		return section, nil
	}
	segs := creator.CreateSegmentArray(segmentCount)
	if err := section.CopySegments(0, index, segs, 0); err != nil {
		return nil, err
	}
	if err := other.CopySegments(0, otherCount, segs, index); err != nil {
		return nil, err
	}
	if tail := index + otherCount; tail < segmentCount {
		if extendPrefix && other.IsPrefixed() {
			allSegment := creator.CreatePrefixedSegment(0, xdivision.ToPrefixLen(0))
			for i := tail; i < segmentCount; i++ {
				segs[i] = allSegment
			}
		} else if err := section.CopySegments(tail, segmentCount, segs, tail); err != nil {
			return nil, err
		}
	}
	return creator.CreateSectionFromSegments(segs)
}

// LowestSection 返回只含各段下界的单值 section。
// section 自身无前缀且单值时直接返回自身。结果缓存。
func LowestSection(section *Section, creator SectionCreator) (*Section, error) {
	return lowestOrHighestSection(section, creator, true)
}

// HighestSection 返回只含各段上界的单值 section。
// section 自身无前缀且单值时直接返回自身。结果缓存。
func HighestSection(section *Section, creator SectionCreator) (*Section, error) {
	return lowestOrHighestSection(section, creator, false)
}

func lowestOrHighestSection(section *Section, creator SectionCreator, lowest bool) (*Section, error) {
	if !section.IsPrefixed() && !section.IsMultiple() {
		return section, nil
	}
	slot, key := &section.lowerSection, "lower"
	if !lowest {
		slot, key = &section.upperSection, "upper"
	}
	if cached := slot.Load(); cached != nil {
		return cached, nil
	}
	result, err, _ := section.flight.Do(key, func() (any, error) {
		if cached := slot.Load(); cached != nil {
			return cached, nil
		}
		segs := creator.CreateSegmentArray(section.SegmentCount())
		for i := range segs {
			seg := section.Segment(i)
			value := seg.LowerValue()
			if !lowest {
				value = seg.UpperValue()
			}
			segs[i] = creator.CreateSegment(value)
		}
		derived, err := creator.CreateSectionFromSegments(segs)
		if err != nil {
			return nil, err
		}
		slot.Store(derived)
		return derived, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Section), nil
}

// ReverseSegments 反转段顺序。produce 按原下标给出要放置的段
// （调用方在其中处理前缀去除）；removePrefix 为 false 且产出与原段
// 逐个相等时直接返回原 section。
func ReverseSegments(section *Section, creator SectionCreator, produce func(index int) (xdivision.Segment, error), removePrefix bool) (*Section, error) {
	count := section.SegmentCount()
	newSegs := creator.CreateSegmentArray(count)
	isSame := !removePrefix || !section.IsPrefixed()
	for i, j := 0, count-1; i <= j; i, j = i+1, j-1 {
		segI, err := produce(i)
		if err != nil {
			return nil, err
		}
		newSegs[j] = segI
		if i < j {
			segJ, err := produce(j)
			if err != nil {
				return nil, err
			}
			newSegs[i] = segJ
		}
		if isSame && !(newSegs[i].Equal(section.Segment(i)) && newSegs[j].Equal(section.Segment(j))) {
			isSame = false
		}
	}
	if isSame {
		return section, nil
	}
	return creator.CreateSectionFromSegments(newSegs)
}

// ReverseBits 反转每段位序后再反转段顺序；perByte 为 true 时只在每个
// 字节内部反转位序，段顺序与字节顺序保持不变。
// reverse 按下标给出位序反转后的段。
func ReverseBits(perByte bool, section *Section, creator SectionCreator, reverse func(index int) (xdivision.Segment, error), removePrefix bool) (*Section, error) {
	if perByte {
		return reverseEachSegment(section, creator, reverse, removePrefix)
	}
	return ReverseSegments(section, creator, reverse, removePrefix)
}

// ReverseBytes 反转字节顺序。perSegment 为 true 时只在每段内部反转
// 字节，段顺序不变；否则反转段内字节并反转段顺序。
func ReverseBytes(perSegment bool, section *Section, creator SectionCreator, reverse func(index int) (xdivision.Segment, error), removePrefix bool) (*Section, error) {
	if perSegment {
		return reverseEachSegment(section, creator, reverse, removePrefix)
	}
	return ReverseSegments(section, creator, reverse, removePrefix)
}

// reverseEachSegment 逐段原位替换为 reverse 的产出，段顺序不变。
// 产出与原段全部相等且无需去前缀时返回原 section。
func reverseEachSegment(section *Section, creator SectionCreator, reverse func(index int) (xdivision.Segment, error), removePrefix bool) (*Section, error) {
	count := section.SegmentCount()
	newSegs := creator.CreateSegmentArray(count)
	isSame := !removePrefix || !section.IsPrefixed()
	for i := 0; i < count; i++ {
		seg, err := reverse(i)
		if err != nil {
			return nil, err
		}
		newSegs[i] = seg
		if isSame && !seg.Equal(section.Segment(i)) {
			isSame = false
		}
	}
	if isSame {
		return section, nil
	}
	return creator.CreateSectionFromSegments(newSegs)
}
