package xgrouping

import (
	"github.com/omeyang/ipkit/pkg/addr/xdivision"
)

// SegmentValueIterator 枚举单个段的全部取值，按升序产出单值段。
type SegmentValueIterator struct {
	creator SegmentCreator
	next    uint64
	upper   uint64
	done    bool
}

// NewSegmentValueIterator 构造 [lower, upper] 的段值迭代器，
// 产出的段经 creator 驻留。
func NewSegmentValueIterator(creator SegmentCreator, lower, upper uint64) *SegmentValueIterator {
	return &SegmentValueIterator{creator: creator, next: lower, upper: upper}
}

// Next 产出下一个单值段。枚举完成后第二个返回值为 false。
func (it *SegmentValueIterator) Next() (xdivision.Segment, bool) {
	if it.done {
		return xdivision.Segment{}, false
	}
	seg := it.creator.CreateSegment(it.next)
	if it.next == it.upper {
		it.done = true
	} else {
		it.next++
	}
	return seg, true
}

// SegmentsIterator 按脊进位（ripple-carry）推进的段数组笛卡尔积迭代器。
// 产出顺序是划分值的字典序：最高位段变化最慢。
// 迭代器不可重置、线程封闭（单 goroutine 使用）。
type SegmentsIterator struct {
	creator    SegmentCreator
	produce    func(index int) *SegmentValueIterator
	variations []*SegmentValueIterator
	nextSet    []xdivision.Segment
	single     []xdivision.Segment
	done       bool
}

// NewSegmentsIterator 构造 section 段数组的笛卡尔积迭代器。
// produce 按段下标给出该段的取值迭代器。
// section 为单值时迭代器恰好产出其段数组一次。
func NewSegmentsIterator(section *Section, creator SegmentCreator, produce func(index int) *SegmentValueIterator) *SegmentsIterator {
	it := &SegmentsIterator{creator: creator, produce: produce}
	if !section.IsMultiple() {
		it.single = section.Segments()
		return it
	}
	count := section.SegmentCount()
	it.variations = make([]*SegmentValueIterator, count)
	it.nextSet = creator.CreateSegmentArray(count)
	it.updateVariations(0)
	return it
}

// updateVariations 把 start 起的各段迭代器重置到首值。
func (it *SegmentsIterator) updateVariations(start int) {
	for i := start; i < len(it.variations); i++ {
		it.variations[i] = it.produce(i)
		it.nextSet[i], _ = it.variations[i].Next()
	}
}

// Next 产出下一个段数组（副本）。枚举完成后第二个返回值为 false。
func (it *SegmentsIterator) Next() ([]xdivision.Segment, bool) {
	if it.done {
		return nil, false
	}
	if it.single != nil {
		segs := it.single
		it.single = nil
		it.done = true
		return segs, true
	}
	segs := make([]xdivision.Segment, len(it.nextSet))
	copy(segs, it.nextSet)
	it.increment()
	return segs, true
}

// increment 自最右段向左寻找可推进的段：推进它并把其右侧全部段
// 重置到首值；无段可推进时标记完成。
func (it *SegmentsIterator) increment() {
	for j := len(it.variations) - 1; j >= 0; j-- {
		if seg, ok := it.variations[j].Next(); ok {
			it.nextSet[j] = seg
			it.updateVariations(j + 1)
			return
		}
	}
	it.done = true
}

// SectionIterator 把段数组迭代器包装为 section 迭代器。
type SectionIterator struct {
	inner    *SegmentsIterator
	creator  SectionCreator
	original *Section
	err      error
}

// NewSectionIterator 构造 section 的取值迭代器。
// useOriginal 为 true（section 单值且无前缀需剥离）时恰好产出原
// section 一次，不经过工厂。
func NewSectionIterator(section *Section, creator SectionCreator, useOriginal bool, inner *SegmentsIterator) *SectionIterator {
	it := &SectionIterator{creator: creator}
	if useOriginal {
		it.original = section
	} else {
		it.inner = inner
	}
	return it
}

// Next 产出下一个单值 section。枚举完成或工厂出错后第二个返回值为
// false；出错原因经 [SectionIterator.Err] 获取。
func (it *SectionIterator) Next() (*Section, bool) {
	if it.original != nil {
		section := it.original
		it.original = nil
		it.inner = nil
		return section, true
	}
	if it.inner == nil || it.err != nil {
		return nil, false
	}
	segs, ok := it.inner.Next()
	if !ok {
		return nil, false
	}
	section, err := it.creator.CreateSectionFromSegments(segs)
	if err != nil {
		it.err = err
		return nil, false
	}
	return section, true
}

// Err 返回迭代过程中的首个工厂错误。
func (it *SectionIterator) Err() error {
	return it.err
}

// AddressIterator 把段数组迭代器包装为地址迭代器。
type AddressIterator struct {
	inner    *SegmentsIterator
	creator  AddressCreator
	original *Address
	err      error
}

// NewAddressIterator 构造地址的取值迭代器。
// useOriginal 为 true 时恰好产出原地址一次。
func NewAddressIterator(addr *Address, creator AddressCreator, useOriginal bool, inner *SegmentsIterator) *AddressIterator {
	it := &AddressIterator{creator: creator}
	if useOriginal {
		it.original = addr
	} else {
		it.inner = inner
	}
	return it
}

// Next 产出下一个单值地址。枚举完成或工厂出错后第二个返回值为 false。
func (it *AddressIterator) Next() (*Address, bool) {
	if it.original != nil {
		addr := it.original
		it.original = nil
		it.inner = nil
		return addr, true
	}
	if it.inner == nil || it.err != nil {
		return nil, false
	}
	segs, ok := it.inner.Next()
	if !ok {
		return nil, false
	}
	addr, err := it.creator.CreateAddressFromSegments(segs)
	if err != nil {
		it.err = err
		return nil, false
	}
	return addr, true
}

// Err 返回迭代过程中的首个工厂错误。
func (it *AddressIterator) Err() error {
	return it.err
}
