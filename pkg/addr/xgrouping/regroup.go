package xgrouping

import (
	"fmt"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
)

// CreateNewDivisions 以 bitsPerDigit 位每数字的粒度重排分组的划分布局，
// 不派生前缀。等价于 CreateNewPrefixedDivisions(bitsPerDigit, nil)。
func (g *Grouping) CreateNewDivisions(bitsPerDigit int) ([]xdivision.Division, error) {
	return g.CreateNewPrefixedDivisions(bitsPerDigit, nil)
}

// CreateNewPrefixedDivisions 以 bitsPerDigit 位每数字的粒度重新计算
// 分组的划分布局。产出的划分序列满足：
//
//  1. 总位宽不变
//  2. 每个划分的位宽是 bitsPerDigit 的整数倍，最先产出（最高位）的
//     划分可携带余数位
//  3. 任何划分不超过架构上限 (63 / bitsPerDigit) * bitsPerDigit 位
//  4. 新的 [lower, upper] 由原划分自最高位向最低位流式注入
//  5. 每个新划分经前缀演算从 networkPrefix 派生划分级前缀
//  6. 新划分携带基数 2^bitsPerDigit
//
// bitsPerDigit 达到 32 后基数超出常规数字字符集，返回 [ErrInvalidArgument]。
func (g *Grouping) CreateNewPrefixedDivisions(bitsPerDigit int, networkPrefix xdivision.PrefixLen) ([]xdivision.Division, error) {
	if bitsPerDigit < 1 || bitsPerDigit >= 32 {
		return nil, fmt.Errorf("%w: bits per digit %d not in [1, 31]", ErrInvalidArgument, bitsPerDigit)
	}
	// 自低位向高位切出各新划分的位宽：先按架构上限切整块，
	// 余下部分切出整数字块和余数块
	bitCount := g.BitCount()
	largestBitCount := xdivision.MaxDivisionBitCount
	largestBitCount -= largestBitCount % bitsPerDigit
	var bitDivs []xdivision.BitCount
	for bitCount > largestBitCount {
		bitCount -= largestBitCount
		bitDivs = append(bitDivs, largestBitCount)
	}
	mod := bitCount % bitsPerDigit
	if secondLast := bitCount - mod; secondLast > 0 {
		bitDivs = append(bitDivs, secondLast)
	}
	if mod > 0 {
		bitDivs = append(bitDivs, mod)
	}

	bitDivCount := len(bitDivs)
	divs := make([]xdivision.Division, bitDivCount)
	if bitDivCount == 0 {
		return divs, nil
	}
	radix := 1 << uint(bitsPerDigit)

	// 原划分的流式读取游标
	currentIndex := 0
	seg := g.Division(currentIndex)
	segLowerVal, segUpperVal := seg.LowerValue(), seg.UpperValue()
	segBits := seg.BitCount()
	bitsSoFar := 0

	// 逐个填充新划分：bitDivs 尾部是最高位块，最先产出
	for i := bitDivCount - 1; i >= 0; i-- {
		originalDivBitSize := bitDivs[i]
		divBitSize := originalDivBitSize
		var divLowerValue, divUpperValue uint64
		for {
			if segBits >= divBitSize {
				diff := uint(segBits - divBitSize)
				divLowerValue |= segLowerVal >> diff
				divUpperValue |= segUpperVal >> diff
				shiftMask := ^(^uint64(0) << diff)
				segLowerVal &= shiftMask
				segUpperVal &= shiftMask
				segBits = int(diff)
				var divPrefix xdivision.PrefixLen
				if networkPrefix != nil {
					divPrefix = SegmentPrefixBits(originalDivBitSize, *networkPrefix-bitsSoFar)
				}
				div, err := xdivision.New(divLowerValue, divUpperValue, originalDivBitSize, radix, divPrefix)
				if err != nil {
					return nil, err
				}
				divs[bitDivCount-i-1] = div
				if segBits == 0 && i > 0 {
					currentIndex++
					seg = g.Division(currentIndex)
					segLowerVal, segUpperVal = seg.LowerValue(), seg.UpperValue()
					segBits = seg.BitCount()
				}
				break
			}
			diff := uint(divBitSize - segBits)
			divLowerValue |= segLowerVal << diff
			divUpperValue |= segUpperVal << diff
			divBitSize = int(diff)
			currentIndex++
			seg = g.Division(currentIndex)
			segLowerVal, segUpperVal = seg.LowerValue(), seg.UpperValue()
			segBits = seg.BitCount()
		}
		bitsSoFar += originalDivBitSize
	}
	return divs, nil
}

// Regroup 以 bitsPerDigit 位每数字的粒度重排并包装为新分组，
// 沿用原分组的整体前缀。
func (g *Grouping) Regroup(bitsPerDigit int) (*Grouping, error) {
	divs, err := g.CreateNewPrefixedDivisions(bitsPerDigit, g.prefixLen())
	if err != nil {
		return nil, err
	}
	return NewGrouping(divs, g.prefixLen())
}
