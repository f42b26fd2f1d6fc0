package xgrouping_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xgrouping"
	"github.com/omeyang/ipkit/pkg/addr/xipv4"
)

// mustIPv4 从字节与可选前缀构造 IPv4 地址。
func mustIPv4(t *testing.T, bytes []byte, prefix xdivision.PrefixLen) *xgrouping.Address {
	t.Helper()
	addr, err := xipv4.FromBytes(bytes, prefix)
	require.NoError(t, err)
	return addr
}

// mustIPv4Range 从逐段上下界构造范围形式的 IPv4 地址。
func mustIPv4Range(t *testing.T, lower, upper [4]uint8, prefix xdivision.PrefixLen) *xgrouping.Address {
	t.Helper()
	addr, err := xipv4.FromValueProviders(
		func(i int) uint64 { return uint64(lower[i]) },
		func(i int) uint64 { return uint64(upper[i]) },
		prefix,
	)
	require.NoError(t, err)
	return addr
}

// 场景：127.0.0.1 单值地址。
func TestLoopbackSingleValue(t *testing.T) {
	addr := mustIPv4(t, []byte{127, 0, 0, 1}, nil)
	sect := addr.Section()

	assert.Equal(t, []byte{0x7f, 0x00, 0x00, 0x01}, sect.Bytes())
	assert.Equal(t, big.NewInt(1), sect.Count())
	assert.False(t, sect.IsMultiple())
	assert.Equal(t, 32, sect.MinPrefix())

	p, ok := sect.EquivalentPrefix()
	require.True(t, ok)
	assert.Equal(t, 32, p)

	// 与 creator 合成的回环地址一致
	assert.True(t, addr.Equal(xipv4.Loopback()))
}

// 场景：10.0.0.0/8 子网块。
func TestPrefixBlock(t *testing.T) {
	addr := mustIPv4(t, []byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8))
	sect := addr.Section()

	assert.True(t, sect.IsMultipleByPrefix())
	assert.True(t, sect.IsMultiple())
	assert.True(t, sect.IsRangeEquivalent(8))
	assert.True(t, sect.IsRangeEquivalentToPrefix())

	// 段级前缀：seg 0 为 8，其余为 0
	p, ok := sect.Segment(0).DivisionPrefix()
	require.True(t, ok)
	assert.Equal(t, 8, p)
	for i := 1; i < sect.SegmentCount(); i++ {
		p, ok = sect.Segment(i).DivisionPrefix()
		require.True(t, ok)
		assert.Equal(t, 0, p)
		assert.True(t, sect.Segment(i).IsFullRange())
	}

	// 范围形式
	assert.Equal(t, []byte{10, 0, 0, 0}, sect.Bytes())
	assert.Equal(t, []byte{10, 255, 255, 255}, sect.UpperBytes())

	// 2^24 个地址
	want := new(big.Int).Lsh(big.NewInt(1), 24)
	assert.Equal(t, want, sect.Count())

	ep, ok := sect.EquivalentPrefix()
	require.True(t, ok)
	assert.Equal(t, 8, ep)
}

// 场景：通配 1.2.*.4。
func TestWildcardSegment(t *testing.T) {
	addr := mustIPv4Range(t, [4]uint8{1, 2, 0, 4}, [4]uint8{1, 2, 255, 4}, nil)
	sect := addr.Section()

	assert.True(t, sect.IsMultiple())
	assert.Equal(t, big.NewInt(256), sect.Count())

	// 尾段非全范围，无等价前缀
	_, ok := sect.EquivalentPrefix()
	assert.False(t, ok)
}

// 场景：0.0.0.0/0。
func TestZeroPrefix(t *testing.T) {
	addr := mustIPv4(t, []byte{0, 0, 0, 0}, xdivision.ToPrefixLen(0))
	sect := addr.Section()

	p, ok := sect.PrefixLength()
	require.True(t, ok)
	assert.Equal(t, 0, p)
	assert.True(t, sect.IsRangeEquivalentToPrefix())

	ep, ok := sect.EquivalentPrefix()
	require.True(t, ok)
	assert.Equal(t, 0, ep)

	want := new(big.Int).Lsh(big.NewInt(1), 32)
	assert.Equal(t, want, sect.Count())
	assert.True(t, sect.IsFullRange())
}

// 属性：多值性与计数一致。
func TestMultipleIffCountAboveOne(t *testing.T) {
	cases := []*xgrouping.Address{
		mustIPv4(t, []byte{127, 0, 0, 1}, nil),
		mustIPv4(t, []byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8)),
		mustIPv4Range(t, [4]uint8{1, 2, 0, 4}, [4]uint8{1, 2, 255, 4}, nil),
		mustIPv4(t, []byte{0, 0, 0, 0}, xdivision.ToPrefixLen(0)),
		mustIPv4(t, []byte{255, 255, 255, 255}, nil),
	}
	for _, addr := range cases {
		sect := addr.Section()
		assert.Equal(t, sect.Count().Cmp(big.NewInt(1)) > 0, sect.IsMultiple(), "addr %v", sect)
	}
}

// 属性：字节往返。非前缀分组从下界字节重建后与最低地址相等。
func TestByteRoundTrip(t *testing.T) {
	addr := mustIPv4Range(t, [4]uint8{1, 2, 0, 4}, [4]uint8{1, 2, 255, 4}, nil)
	rebuilt := mustIPv4(t, addr.Bytes(), nil)

	var c xipv4.Creator
	lowest, err := xgrouping.LowestAddress(addr, c)
	require.NoError(t, err)
	assert.True(t, rebuilt.Equal(lowest))

	// 单值地址往返等于自身
	single := mustIPv4(t, []byte{192, 168, 1, 1}, nil)
	assert.True(t, single.Equal(mustIPv4(t, single.Bytes(), nil)))
}

// 属性：等价前缀可靠性。等价前缀成立时范围与该前缀块一致，
// 且不存在更小的前缀满足范围等价。
func TestEquivalentPrefixSoundness(t *testing.T) {
	cases := []*xgrouping.Address{
		mustIPv4(t, []byte{127, 0, 0, 1}, nil),
		mustIPv4(t, []byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8)),
		mustIPv4(t, []byte{0, 0, 0, 0}, xdivision.ToPrefixLen(0)),
		mustIPv4(t, []byte{192, 168, 0, 0}, xdivision.ToPrefixLen(16)),
	}
	for _, addr := range cases {
		sect := addr.Section()
		p, ok := sect.EquivalentPrefix()
		if !ok {
			continue
		}
		assert.True(t, sect.IsRangeEquivalent(p), "prefix %d of %v", p, sect)
		for smaller := 0; smaller < p; smaller++ {
			assert.False(t, sect.IsRangeEquivalent(smaller), "smaller prefix %d of %v", smaller, sect)
		}
	}
}

// 属性：MinPrefix 单调性。单值分组的 MinPrefix 等于位宽减去
// 下界值的尾零位数。
func TestMinPrefixMonotonicity(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  int
	}{
		{[]byte{127, 0, 0, 1}, 32},
		{[]byte{1, 2, 3, 4}, 30},  // 4 = 0b100，尾零 2
		{[]byte{10, 0, 0, 0}, 7},  // 0x0A000000，尾零 25
		{[]byte{0, 0, 0, 0}, 0},   // 全零
		{[]byte{128, 0, 0, 0}, 1}, // 最高位
	}
	for _, tc := range cases {
		sect := mustIPv4(t, tc.bytes, nil).Section()
		assert.Equal(t, tc.want, sect.MinPrefix(), "bytes %v", tc.bytes)
		assert.LessOrEqual(t, sect.MinPrefix(), sect.BitCount())
	}
}

// 属性：哈希与相等协定。不同构造路径产生的相等分组哈希一致。
func TestHashEqualsAgreement(t *testing.T) {
	a := mustIPv4(t, []byte{1, 2, 3, 4}, nil)
	b, err := xipv4.FromUint32(0x01020304, nil)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Section().Hash(), b.Section().Hash())

	// 范围形式与单值形式不等，哈希折叠上界
	c := mustIPv4Range(t, [4]uint8{1, 2, 3, 4}, [4]uint8{1, 2, 3, 5}, nil)
	assert.False(t, a.Equal(c))
}

func TestIsMore(t *testing.T) {
	single := mustIPv4(t, []byte{1, 2, 3, 4}, nil).Section()
	small := mustIPv4Range(t, [4]uint8{1, 2, 3, 3}, [4]uint8{1, 2, 3, 4}, nil).Section()
	big8 := mustIPv4(t, []byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8)).Section()

	assert.Equal(t, 0, single.IsMore(&single.Grouping))
	assert.Equal(t, -1, single.IsMore(&small.Grouping))
	assert.Equal(t, 1, small.IsMore(&single.Grouping))
	assert.Equal(t, -1, small.IsMore(&big8.Grouping))
	assert.Equal(t, 1, big8.IsMore(&small.Grouping))
}

func TestIsZeroAndFullRange(t *testing.T) {
	zero := mustIPv4(t, []byte{0, 0, 0, 0}, nil).Section()
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsFullRange())

	full := mustIPv4Range(t, [4]uint8{0, 0, 0, 0}, [4]uint8{255, 255, 255, 255}, nil).Section()
	assert.True(t, full.IsFullRange())
	assert.False(t, full.IsZero())
}

func TestIsDualString(t *testing.T) {
	// 单值：无需双值形式
	dual, err := mustIPv4(t, []byte{1, 2, 3, 4}, nil).Section().IsDualString()
	require.NoError(t, err)
	assert.False(t, dual)

	// 1.2.3-4.*：非全范围多值段后全是全范围，可表达
	dual, err = mustIPv4Range(t, [4]uint8{1, 2, 3, 0}, [4]uint8{1, 2, 4, 255}, nil).Section().IsDualString()
	require.NoError(t, err)
	assert.True(t, dual)

	// 1.2.*.4：全范围多值段之后又出现单值段再无多值段——序列要求
	// 多值段只能出现在连续全范围尾部，1.2.*.4 的通配段位于单值段之前
	_, err = mustIPv4Range(t, [4]uint8{1, 2, 0, 4}, [4]uint8{1, 2, 255, 4}, nil).Section().IsDualString()
	assert.ErrorIs(t, err, xgrouping.ErrMismatchedSegmentRanges)
}

func TestAdjustedPrefixBySegment(t *testing.T) {
	// /12 向上取整到段边界 16，向下到 8
	block12 := mustIPv4(t, []byte{10, 16, 0, 0}, xdivision.ToPrefixLen(12)).Section()
	assert.Equal(t, 16, block12.AdjustedPrefixBySegment(true, 8, false))
	assert.Equal(t, 8, block12.AdjustedPrefixBySegment(false, 8, false))

	// 段边界上的前缀向下取整跨过整段
	block16 := mustIPv4(t, []byte{10, 16, 0, 0}, xdivision.ToPrefixLen(16)).Section()
	assert.Equal(t, 8, block16.AdjustedPrefixBySegment(false, 8, false))
	assert.Equal(t, 24, block16.AdjustedPrefixBySegment(true, 8, false))

	// 无前缀单值：MinPrefix 非零，向上取整返回位宽
	single := mustIPv4(t, []byte{1, 2, 3, 4}, nil).Section()
	assert.Equal(t, 32, single.AdjustedPrefixBySegment(true, 8, false))
	assert.Equal(t, 32, single.AdjustedPrefixBySegment(false, 8, false))

	// skipBitCountPrefix 使向下取整从位宽起算
	assert.Equal(t, 24, single.AdjustedPrefixBySegment(false, 8, true))

	// 无前缀且 MinPrefix 为 0：两个方向都直接返回 0
	wild := mustIPv4Range(t, [4]uint8{0, 0, 0, 0}, [4]uint8{255, 255, 255, 255}, nil).Section()
	assert.Equal(t, 0, wild.AdjustedPrefixBySegment(true, 8, false))
	assert.Equal(t, 0, wild.AdjustedPrefixBySegment(false, 8, true))
	assert.Equal(t, 0, wild.AdjustedPrefixBySegment(false, 8, false))
}

func TestAdjustedPrefix(t *testing.T) {
	block8 := mustIPv4(t, []byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8)).Section()
	assert.Equal(t, 12, block8.AdjustedPrefix(4, true, true))
	assert.Equal(t, 0, block8.AdjustedPrefix(-12, true, true))
	// 不设下限时允许为负
	assert.Equal(t, -4, block8.AdjustedPrefix(-12, false, true))
	// 不设上限时允许超出位宽
	assert.Equal(t, 40, block8.AdjustedPrefix(32, true, false))
	assert.Equal(t, 32, block8.AdjustedPrefix(32, true, true))
}

func TestDigestStable(t *testing.T) {
	a := mustIPv4(t, []byte{1, 2, 3, 4}, nil).Section()
	b, err := xipv4.FromUint32(0x01020304, nil)
	require.NoError(t, err)

	// 相同内容摘要一致
	assert.Equal(t, a.Digest(), b.Section().Digest())

	// 范围不同摘要不同
	c := mustIPv4Range(t, [4]uint8{1, 2, 3, 4}, [4]uint8{1, 2, 3, 5}, nil).Section()
	assert.NotEqual(t, a.Digest(), c.Digest())
}
