package xgrouping

import (
	"fmt"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
)

// SegmentValueProvider 按段下标提供段值，用于从值源构造段数组。
type SegmentValueProvider func(segmentIndex int) uint64

// SegmentPrefixLength 把分组级前缀换算为第 segmentIndex 段的段级前缀。
// prefixLength 为 nil 时返回 nil；否则等价于
// SegmentPrefixBits(bitsPerSegment, *prefixLength - segmentIndex*bitsPerSegment)。
func SegmentPrefixLength(bitsPerSegment xdivision.BitCount, prefixLength xdivision.PrefixLen, segmentIndex int) xdivision.PrefixLen {
	if prefixLength == nil {
		return nil
	}
	return SegmentPrefixBits(bitsPerSegment, *prefixLength-segmentIndex*bitsPerSegment)
}

// SegmentPrefixBits 把落到某段上的前缀位数归约为段级前缀：
// prefixedBits <= 0 时该段完全位于宿主部分，返回 0；
// 0 < prefixedBits <= segmentBits 时该段跨界，返回 prefixedBits；
// 否则该段完全位于网络部分，返回 nil。
func SegmentPrefixBits(segmentBits, prefixedBits xdivision.BitCount) xdivision.PrefixLen {
	if prefixedBits <= 0 {
		return xdivision.ToPrefixLen(0)
	}
	if prefixedBits <= segmentBits {
		return xdivision.ToPrefixLen(prefixedBits)
	}
	return nil
}

// SegmentsFromValue 把 value 的低 byteLen 字节切分为段数组，
// 从最后一段向前逐段取 bitsPerSegment 位，并按 prefix 指派段级前缀。
func SegmentsFromValue(value uint64, byteLen int, creator SegmentCreator, prefix xdivision.PrefixLen) []xdivision.Segment {
	bitsPerSegment := creator.BitsPerSegment()
	segmentCount := byteLen / creator.BytesPerSegment()
	segments := creator.CreateSegmentArray(segmentCount)
	segmentMask := ^(^uint64(0) << uint(bitsPerSegment))
	for segmentIndex := segmentCount - 1; segmentIndex >= 0; segmentIndex-- {
		segmentPrefix := SegmentPrefixLength(bitsPerSegment, prefix, segmentIndex)
		segments[segmentIndex] = creator.CreatePrefixedSegment(value&segmentMask, segmentPrefix)
		value >>= uint(bitsPerSegment)
	}
	return segments
}

// SegmentsFromProviders 从值提供者构造段数组。lower 为 nil 时以 upper
// 作为单值来源；两者都非 nil 时构造范围段。某段的段级前缀一旦为 0，
// 其后所有段都置为带前缀 0 的驻留全范围段。
func SegmentsFromProviders(lower, upper SegmentValueProvider, segmentCount int, creator SegmentCreator, prefix xdivision.PrefixLen) []xdivision.Segment {
	bitsPerSegment := creator.BitsPerSegment()
	segments := creator.CreateSegmentArray(segmentCount)
	for segmentIndex := 0; segmentIndex < segmentCount; segmentIndex++ {
		segmentPrefix := SegmentPrefixLength(bitsPerSegment, prefix, segmentIndex)
		if segmentPrefix != nil && *segmentPrefix == 0 {
			allSeg := creator.CreateRangeSegment(0, creator.MaxValuePerSegment(), segmentPrefix)
			for ; segmentIndex < segmentCount; segmentIndex++ {
				segments[segmentIndex] = allSeg
			}
			break
		}
		var value, value2 uint64
		switch {
		case lower == nil:
			value = upper(segmentIndex)
		default:
			value = lower(segmentIndex)
			if upper != nil {
				value2 = upper(segmentIndex)
			}
		}
		if lower != nil && upper != nil {
			segments[segmentIndex] = creator.CreateRangeSegment(value, value2, segmentPrefix)
		} else {
			segments[segmentIndex] = creator.CreatePrefixedSegment(value, segmentPrefix)
		}
	}
	return segments
}

// SegmentsFromBytes 把网络字节序的 bytes 切分为段数组。
// len(bytes) 必须是每段字节数的整数倍，否则返回 [ErrInvalidArgument]。
// 某段的段级前缀一旦为 0，其后所有段都置为带前缀 0 的驻留全范围段。
func SegmentsFromBytes(bytes []byte, creator SegmentCreator, prefix xdivision.PrefixLen) ([]xdivision.Segment, error) {
	bytesPerSegment := creator.BytesPerSegment()
	if len(bytes)%bytesPerSegment != 0 {
		return nil, fmt.Errorf("%w: byte length %d is not a multiple of %d", ErrInvalidArgument, len(bytes), bytesPerSegment)
	}
	bitsPerSegment := creator.BitsPerSegment()
	segmentCount := len(bytes) / bytesPerSegment
	segments := creator.CreateSegmentArray(segmentCount)
	for i, segmentIndex := 0, 0; i < len(bytes); i, segmentIndex = i+bytesPerSegment, segmentIndex+1 {
		segmentPrefix := SegmentPrefixLength(bitsPerSegment, prefix, segmentIndex)
		if segmentPrefix != nil && *segmentPrefix == 0 {
			allSeg := creator.CreateRangeSegment(0, creator.MaxValuePerSegment(), segmentPrefix)
			for ; segmentIndex < segmentCount; segmentIndex++ {
				segments[segmentIndex] = allSeg
			}
			break
		}
		var value uint64
		for j := i; j < i+bytesPerSegment; j++ {
			value = value<<8 | uint64(bytes[j])
		}
		segments[segmentIndex] = creator.CreatePrefixedSegment(value, segmentPrefix)
	}
	return segments, nil
}

// PrefixApplier 把段级前缀施加到段上（掩码并携带前缀）。
type PrefixApplier func(seg xdivision.Segment, prefix xdivision.PrefixLen) xdivision.Segment

// PrefixSetter 把段从旧段级前缀迁移到新段级前缀（去旧掩码、施新掩码）。
type PrefixSetter func(seg xdivision.Segment, oldPrefix, newPrefix xdivision.PrefixLen) xdivision.Segment

// ToPrefixedSegments 把分组级前缀 sectionPrefix 指派到段数组上。
// sectionPrefix 为 nil 时按 alwaysClone 决定返回原数组还是副本；
// 非 nil 时在副本上施加各段前缀，边界段之后统一填充零前缀驻留段。
func ToPrefixedSegments(sectionPrefix xdivision.PrefixLen, segments []xdivision.Segment, bitsPerSegment xdivision.BitCount, creator SegmentCreator, apply PrefixApplier, alwaysClone bool) []xdivision.Segment {
	if sectionPrefix == nil {
		if alwaysClone {
			out := make([]xdivision.Segment, len(segments))
			copy(out, segments)
			return out
		}
		return segments
	}
	out := make([]xdivision.Segment, len(segments))
	copy(out, segments)
	for i := 0; i < len(out); i++ {
		pref := SegmentPrefixBits(bitsPerSegment, *sectionPrefix-i*bitsPerSegment)
		if pref == nil {
			continue
		}
		out[i] = apply(out[i], pref)
		if i+1 < len(out) {
			allSeg := creator.CreatePrefixedSegment(0, xdivision.ToPrefixLen(0))
			for i++; i < len(out); i++ {
				out[i] = allSeg
			}
		}
	}
	return out
}

// SetPrefixed 在原段数组上施加新的分组级前缀 newPrefixBits。
// 原 section 无前缀或前缀更长时等价于 [ToPrefixedSegments]；
// 原前缀更短且 noShrink 为 true 时原样返回；否则逐段经 setter 迁移前缀，
// 新边界段之后统一填充零前缀驻留段。
func SetPrefixed(original *Section, newPrefixBits xdivision.BitCount, segments []xdivision.Segment, bitsPerSegment xdivision.BitCount, noShrink bool, creator SegmentCreator, apply PrefixApplier, set PrefixSetter) []xdivision.Segment {
	oldPrefix, hasOld := original.PrefixLength()
	if !hasOld || oldPrefix > newPrefixBits {
		return ToPrefixedSegments(xdivision.ToPrefixLen(newPrefixBits), segments, bitsPerSegment, creator, apply, false)
	}
	if oldPrefix == newPrefixBits || noShrink {
		return segments
	}
	out := make([]xdivision.Segment, len(segments))
	copy(out, segments)
	for i := 0; i < len(out); i++ {
		newPref := SegmentPrefixBits(bitsPerSegment, newPrefixBits-i*bitsPerSegment)
		oldPref := SegmentPrefixBits(bitsPerSegment, oldPrefix-i*bitsPerSegment)
		out[i] = set(out[i], oldPref, newPref)
		if newPref != nil {
			if i+1 < len(out) {
				allSeg := creator.CreatePrefixedSegment(0, xdivision.ToPrefixLen(0))
				for i++; i < len(out); i++ {
					out[i] = allSeg
				}
			}
		}
	}
	return out
}

// RemovePrefix 去除段数组上的全部段级前缀。原 section 无前缀时原样返回。
func RemovePrefix(original *Section, segments []xdivision.Segment, bitsPerSegment xdivision.BitCount, set PrefixSetter) []xdivision.Segment {
	oldPrefix, hasOld := original.PrefixLength()
	if !hasOld {
		return segments
	}
	out := make([]xdivision.Segment, len(segments))
	copy(out, segments)
	for i := 0; i < len(out); i++ {
		oldPref := SegmentPrefixBits(bitsPerSegment, oldPrefix-i*bitsPerSegment)
		out[i] = set(out[i], oldPref, nil)
	}
	return out
}
