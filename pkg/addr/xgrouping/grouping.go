package xgrouping

import (
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
)

// 多值性缓存的三态编码。
const (
	multipleUnset int32 = iota
	multipleFalse
	multipleTrue
)

// Grouping 是不可变的 Division 有序序列，携带可选的整体前缀长度。
// 必须通过 [NewGrouping] 或上层构造路径创建；构造后不可变，
// 可安全地在多个 goroutine 间共享。
type Grouping struct {
	divisions []xdivision.Division
	prefix    xdivision.BitCount
	hasPrefix bool

	// 惰性缓存：首个读取者计算并原子发布，并发计算产生相等值，
	// 后写覆盖先写无碍。
	cachedCount      atomic.Pointer[big.Int]
	cachedLowerBytes atomic.Pointer[[]byte]
	cachedUpperBytes atomic.Pointer[[]byte]
	cachedMultiple   atomic.Int32

	// cachedHash 以 0 作"未计算"哨兵。折叠算法可产生真值 0，
	// 此时每次调用都会重算出同一个 0，仅损失缓存收益。
	cachedHash atomic.Uint32
}

// NewGrouping 从划分序列构造 Grouping。
// divisions 被拷贝，调用方之后的修改不影响分组。
// prefix 非 nil 时必须落在 [0, 总位宽]，否则返回 [ErrInvalidArgument]。
func NewGrouping(divisions []xdivision.Division, prefix xdivision.PrefixLen) (*Grouping, error) {
	divs := make([]xdivision.Division, len(divisions))
	copy(divs, divisions)
	g := &Grouping{divisions: divs}
	if prefix != nil {
		p := *prefix
		if p < 0 || p > g.BitCount() {
			return nil, fmt.Errorf("%w: prefix %d not in [0, %d]", ErrInvalidArgument, p, g.BitCount())
		}
		g.prefix, g.hasPrefix = p, true
	}
	return g, nil
}

// DivisionCount 返回划分个数。
func (g *Grouping) DivisionCount() int {
	return len(g.divisions)
}

// Division 返回第 index 个划分。index 越界时 panic，语义与切片下标一致。
func (g *Grouping) Division(index int) xdivision.Division {
	return g.divisions[index]
}

// BitCount 返回全部划分的位宽之和。
func (g *Grouping) BitCount() xdivision.BitCount {
	total := 0
	for _, d := range g.divisions {
		total += d.BitCount()
	}
	return total
}

// ByteCount 返回规范字节物化所需的字节数，即 ceil(BitCount / 8)。
func (g *Grouping) ByteCount() int {
	return (g.BitCount() + 7) >> 3
}

// IsPrefixed 报告分组是否携带整体前缀。
func (g *Grouping) IsPrefixed() bool {
	return g.hasPrefix
}

// PrefixLength 返回整体前缀长度。第二个返回值为 false 表示无前缀。
func (g *Grouping) PrefixLength() (xdivision.BitCount, bool) {
	return g.prefix, g.hasPrefix
}

// prefixLen 以 PrefixLen 形式返回整体前缀，供前缀演算传参。
func (g *Grouping) prefixLen() xdivision.PrefixLen {
	if !g.hasPrefix {
		return nil
	}
	return xdivision.ToPrefixLen(g.prefix)
}

// Bytes 返回范围内最低地址的网络字节序字节，长度为 [Grouping.ByteCount]。
// 结果缓存后按副本返回，调用方修改返回值不影响缓存。
func (g *Grouping) Bytes() []byte {
	cached := g.cachedLowerBytes.Load()
	if cached == nil {
		b := g.bytes(true)
		g.cachedLowerBytes.Store(&b)
		cached = &b
	}
	out := make([]byte, len(*cached))
	copy(out, *cached)
	return out
}

// UpperBytes 返回范围内最高地址的网络字节序字节。
// 单值分组与 [Grouping.Bytes] 共享缓存。
func (g *Grouping) UpperBytes() []byte {
	if !g.IsMultiple() {
		return g.Bytes()
	}
	cached := g.cachedUpperBytes.Load()
	if cached == nil {
		b := g.bytes(false)
		g.cachedUpperBytes.Store(&b)
		cached = &b
	}
	out := make([]byte, len(*cached))
	copy(out, *cached)
	return out
}

// CopyBytes 把最低地址字节写入 dst。dst 为 nil 或容量不足时
// 返回新分配的副本，否则写入 dst 并返回 dst。
func (g *Grouping) CopyBytes(dst []byte) []byte {
	b := g.Bytes()
	if dst == nil || len(dst) < len(b) {
		return b
	}
	copy(dst, b)
	return dst
}

// bytes 从最后一个划分向前物化字节：每个划分把选定值（low 取下界，
// 否则上界）打包进尾部位；位宽不对齐字节边界时，剩余位进位到前一个字节。
func (g *Grouping) bytes(low bool) []byte {
	out := make([]byte, g.ByteCount())
	byteIndex, bitIndex := len(out)-1, 8
	for k := len(g.divisions) - 1; k >= 0; k-- {
		div := g.divisions[k]
		value := div.LowerValue()
		if !low {
			value = div.UpperValue()
		}
		divBits := div.BitCount()
		for divBits > 0 {
			out[byteIndex] |= byte(value << uint(8-bitIndex))
			value >>= uint(bitIndex)
			if divBits < bitIndex {
				bitIndex -= divBits
				break
			}
			divBits -= bitIndex
			bitIndex = 8
			byteIndex--
		}
	}
	return out
}

// Count 返回分组表示的地址个数，即各划分取值个数之积（任意精度）。
// 结果缓存；每次调用返回新分配的副本。
func (g *Grouping) Count() *big.Int {
	cached := g.cachedCount.Load()
	if cached == nil {
		cached = g.count()
		g.cachedCount.Store(cached)
	}
	return new(big.Int).Set(cached)
}

func (g *Grouping) count() *big.Int {
	result := big.NewInt(1)
	if len(g.divisions) > 0 && g.IsMultiple() {
		for _, d := range g.divisions {
			result.Mul(result, new(big.Int).SetUint64(d.ValueCount()))
		}
	}
	return result
}

// IsMultiple 报告分组是否表示多个地址。
// 从最后一个划分向前扫描：范围划分更可能聚集在尾部。结果缓存。
func (g *Grouping) IsMultiple() bool {
	switch g.cachedMultiple.Load() {
	case multipleTrue:
		return true
	case multipleFalse:
		return false
	}
	for i := len(g.divisions) - 1; i >= 0; i-- {
		if g.divisions[i].IsMultiple() {
			g.cachedMultiple.Store(multipleTrue)
			return true
		}
	}
	g.cachedMultiple.Store(multipleFalse)
	return false
}

// IsMultipleByPrefix 报告分组是否携带前缀且该前缀对应多个地址。
func (g *Grouping) IsMultipleByPrefix() bool {
	return g.hasPrefix && g.prefix < g.BitCount()
}

// IsMore 按地址个数与 other 三向比较：-1 表示更少，0 相等，1 更多。
// 双方都是单值时不物化计数。
func (g *Grouping) IsMore(other *Grouping) int {
	if !g.IsMultiple() {
		if other.IsMultiple() {
			return -1
		}
		return 0
	}
	if !other.IsMultiple() {
		return 1
	}
	return g.Count().Cmp(other.Count())
}

// MinPrefix 返回分组的最小前缀长度：前缀之后的低位在各划分中只由
// 全范围宿主位和上下界均为 0 的位组成。单值分组的结果是总位宽减去
// 最低地址的尾部零位数；以最低地址为基、该长度的前缀块一般大于分组
// 范围，范围等价的前缀见 [Grouping.EquivalentPrefix]。
//
// 从最后一个划分向前累计：划分的 MinPrefix 等于其位宽时剩余高位全部
// 有效，停止；否则扣除其位宽，若划分贡献非零再补回其 MinPrefix 并停止。
func (g *Grouping) MinPrefix() xdivision.BitCount {
	total := g.BitCount()
	for i := len(g.divisions) - 1; i >= 0; i-- {
		div := g.divisions[i]
		segBits := div.BitCount()
		segPrefix := div.MinPrefix()
		if segPrefix == segBits {
			break
		}
		total -= segBits
		if segPrefix != 0 {
			total += segPrefix
			break
		}
	}
	return total
}

// EquivalentPrefix 返回仅用最低地址与前缀长度即可精确表达该分组范围的
// 前缀长度。不存在这样的前缀时第二个返回值为 false。
// 单值分组返回总位宽。
func (g *Grouping) EquivalentPrefix() (xdivision.BitCount, bool) {
	totalPrefix := 0
	count := len(g.divisions)
	for i := 0; i < count; i++ {
		div := g.divisions[i]
		divPrefix, ok := div.BlockPrefix()
		if !ok {
			return 0, false
		}
		mask := ^uint64(0) << uint(div.BitCount()-divPrefix)
		if !div.MatchesWithMask(div.LowerValue(), mask) {
			return 0, false
		}
		if divPrefix < div.BitCount() {
			// 跨界划分之后的所有划分必须全范围，否则无法表达
			for i++; i < count; i++ {
				if !g.divisions[i].IsFullRange() {
					return 0, false
				}
			}
			return totalPrefix + divPrefix, true
		}
		totalPrefix += divPrefix
	}
	return totalPrefix, true
}

// IsRangeEquivalent 报告分组的地址范围是否恰好等于
// 由最低地址与前缀 prefix 决定的 CIDR 块。
func (g *Grouping) IsRangeEquivalent(prefix xdivision.BitCount) bool {
	nonPrefixBits := g.BitCount() - prefix
	if nonPrefixBits < 0 {
		nonPrefixBits = 0
	}
	for i := len(g.divisions) - 1; i >= 0; i-- {
		div := g.divisions[i]
		bitCount := div.BitCount()
		if nonPrefixBits == 0 {
			if div.IsMultiple() {
				return false
			}
			continue
		}
		nonPrefixDivisionBits := bitCount
		if nonPrefixBits < bitCount {
			nonPrefixDivisionBits = nonPrefixBits
		}
		prefixMask := ^uint64(0) << uint(nonPrefixDivisionBits)
		hostMask := ^prefixMask
		lower := div.LowerValue()
		if lower|hostMask != div.UpperValue() || lower&prefixMask != lower {
			return false
		}
		nonPrefixBits -= bitCount
		if nonPrefixBits < 0 {
			nonPrefixBits = 0
		}
	}
	return true
}

// IsRangeEquivalentToPrefix 报告分组范围是否恰好等于自身前缀决定的块。
// 无前缀时等价于"不是多值"。
func (g *Grouping) IsRangeEquivalentToPrefix() bool {
	if !g.hasPrefix {
		return !g.IsMultiple()
	}
	return g.IsRangeEquivalent(g.prefix)
}

// AdjustedPrefixBySegment 把当前前缀取整到下一个（nextSegment 为 true）
// 或上一个段边界。无前缀时以 MinPrefix 是否为 0 决定取 0 还是总位宽；
// skipBitCountPrefix 使向下取整从总位宽起算而非直接返回总位宽。
func (g *Grouping) AdjustedPrefixBySegment(nextSegment bool, bitsPerSegment xdivision.BitCount, skipBitCountPrefix bool) xdivision.BitCount {
	bitCount := g.BitCount()
	prefix, hasPrefix := g.PrefixLength()
	if nextSegment {
		if !hasPrefix {
			if g.MinPrefix() == 0 {
				return 0
			}
			return bitCount
		}
		if prefix == bitCount {
			return bitCount
		}
		return prefix + bitsPerSegment - prefix%bitsPerSegment
	}
	if !hasPrefix {
		if g.MinPrefix() == 0 {
			return 0
		}
		if !skipBitCountPrefix {
			return bitCount
		}
		prefix = bitCount
	} else if prefix == 0 {
		return 0
	}
	return prefix - ((prefix-1)%bitsPerSegment + 1)
}

// AdjustedPrefix 把当前前缀加上 adjustment 并按标志钳制：
// ceiling 钳到总位宽上界，floor 钳到 0 下界。
// 无前缀时以 MinPrefix 是否为 0 决定基值取 0 还是总位宽。
func (g *Grouping) AdjustedPrefix(adjustment int, floor, ceiling bool) xdivision.BitCount {
	prefix, hasPrefix := g.PrefixLength()
	if !hasPrefix {
		if g.MinPrefix() == 0 {
			prefix = 0
		} else {
			prefix = g.BitCount()
		}
	}
	result := prefix + adjustment
	if ceiling && result > g.BitCount() {
		result = g.BitCount()
	}
	if floor && result < 0 {
		result = 0
	}
	return result
}

// Hash 返回分组的折叠哈希。
// 对每个划分把下界按高低 32 位异或折叠进 31*h + x；上界不等于下界时
// 同样折叠上界。结果缓存，0 作"未计算"哨兵（真为 0 的哈希每次重算）。
func (g *Grouping) Hash() uint32 {
	if cached := g.cachedHash.Load(); cached != 0 {
		return cached
	}
	result := int32(1)
	for _, div := range g.divisions {
		value := div.LowerValue()
		result = 31*result + foldUint64(value)
		if upper := div.UpperValue(); upper != value {
			result = 31*result + foldUint64(upper)
		}
	}
	h := uint32(result)
	g.cachedHash.Store(h)
	return h
}

// foldUint64 把 64 位值折叠为 32 位：高 32 位为零时直接截断，
// 否则高低两半异或后截断。
func foldUint64(v uint64) int32 {
	shifted := v >> 32
	if shifted == 0 {
		return int32(uint32(v))
	}
	return int32(uint32(v ^ shifted))
}

// Digest 返回分组内容的 xxhash 摘要，覆盖下界与上界的规范字节。
// 与 [Grouping.Hash] 不同，Digest 用于外部去重、分片等场景，
// 不参与 Equal/Hash 协定。
func (g *Grouping) Digest() uint64 {
	d := xxhash.New()
	_, _ = d.Write(g.Bytes())
	_, _ = d.Write(g.UpperBytes())
	return d.Sum64()
}

// IsSameGrouping 报告两个分组的划分序列是否逐个结构相等
// （位宽、下界、上界；前缀不参与比较）。
func (g *Grouping) IsSameGrouping(other *Grouping) bool {
	if other == nil || len(g.divisions) != len(other.divisions) {
		return false
	}
	for i, d := range g.divisions {
		if !d.IsSameValues(other.divisions[i]) {
			return false
		}
	}
	return true
}

// Equal 报告两个分组是否相等，等价于 [Grouping.IsSameGrouping]。
func (g *Grouping) Equal(other *Grouping) bool {
	if g == other {
		return true
	}
	return other != nil && other.IsSameGrouping(g)
}

// IsZero 报告所有划分是否均为单值 0。
func (g *Grouping) IsZero() bool {
	for _, d := range g.divisions {
		if !d.IsZero() {
			return false
		}
	}
	return true
}

// IsFullRange 报告所有划分是否均为全范围。
// 分组携带前缀时，按不变式宿主部分必为全范围，检查到前缀边界即可提前返回。
func (g *Grouping) IsFullRange() bool {
	bitsSoFar := 0
	for _, d := range g.divisions {
		if !d.IsFullRange() {
			return false
		}
		if g.hasPrefix {
			bitsSoFar += d.BitCount()
			if bitsSoFar >= g.prefix {
				break
			}
		}
	}
	return true
}

// IsDualString 报告分组呈现为字符串时是否需要 lower-upper 双值形式。
// 多值划分之后紧跟的划分不是全范围（单值或非全范围的多值）时，
// 序列无法表达为 lower-upper，返回 [ErrMismatchedSegmentRanges]。
func (g *Grouping) IsDualString() (bool, error) {
	count := len(g.divisions)
	for i := 0; i < count; i++ {
		if !g.divisions[i].IsMultiple() {
			continue
		}
		// 已确定需要双值形式，再校验尾部序列可表达
		isLastFull := true
		for j := count - 1; j >= 0; j-- {
			div := g.divisions[j]
			if div.IsMultiple() {
				if !isLastFull {
					return false, fmt.Errorf("%w: division %d followed by a later multiple division", ErrMismatchedSegmentRanges, j)
				}
				isLastFull = div.IsFullRange()
			} else {
				isLastFull = false
			}
		}
		return true, nil
	}
	return false, nil
}

// String 返回分组的调试表示：按序列出各划分，携带前缀时追加 /prefix。
func (g *Grouping) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, d := range g.divisions {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.String())
	}
	b.WriteByte(']')
	if g.hasPrefix {
		fmt.Fprintf(&b, "/%d", g.prefix)
	}
	return b.String()
}
