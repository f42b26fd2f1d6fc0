package xdivision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseBits(t *testing.T) {
	// 0b00000001 → 0b10000000
	seg := MustNewSegment(1, 1, 8, 10, nil)
	rev, err := seg.ReverseBits(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x80), rev.LowerValue())

	// 两次反转还原
	back, err := rev.ReverseBits(false)
	require.NoError(t, err)
	assert.True(t, seg.Equal(back))

	// 16 位段
	seg16 := MustNewSegment(0x8001, 0x8001, 16, 16, nil)
	rev16, err := seg16.ReverseBits(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x8001), rev16.LowerValue()) // 回文值

	seg16 = MustNewSegment(0x0001, 0x0001, 16, 16, nil)
	rev16, err = seg16.ReverseBits(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x8000), rev16.LowerValue())
}

func TestReverseBitsPerByte(t *testing.T) {
	// 每字节内部反转，字节顺序不变：0x01 0x02 → 0x80 0x40
	seg := MustNewSegment(0x0102, 0x0102, 16, 16, nil)
	rev, err := seg.ReverseBits(true)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x8040), rev.LowerValue())

	// 两次反转还原
	back, err := rev.ReverseBits(true)
	require.NoError(t, err)
	assert.True(t, seg.Equal(back))
}

func TestReverseBitsMultiple(t *testing.T) {
	// 全范围反转后仍是全范围
	full := MustNewSegment(0, 255, 8, 10, nil)
	rev, err := full.ReverseBits(false)
	require.NoError(t, err)
	assert.True(t, full.Equal(rev))

	// 其余多值范围不可反转
	ranged := MustNewSegment(3, 4, 8, 10, nil)
	_, err = ranged.ReverseBits(false)
	assert.ErrorIs(t, err, ErrIrreversibleRange)
	_, err = ranged.ReverseBits(true)
	assert.ErrorIs(t, err, ErrIrreversibleRange)
}

func TestReverseBytes(t *testing.T) {
	// 8 位段原样返回
	seg8 := MustNewSegment(0x12, 0x12, 8, 10, nil)
	rev, err := seg8.ReverseBytes()
	require.NoError(t, err)
	assert.True(t, seg8.Equal(rev))

	// 16 位段交换高低字节
	seg16 := MustNewSegment(0x1234, 0x1234, 16, 16, nil)
	rev, err = seg16.ReverseBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x3412), rev.LowerValue())

	// 两次反转还原
	back, err := rev.ReverseBytes()
	require.NoError(t, err)
	assert.True(t, seg16.Equal(back))

	// 多值非全范围不可反转
	ranged := MustNewSegment(0x0100, 0x0200, 16, 16, nil)
	_, err = ranged.ReverseBytes()
	assert.ErrorIs(t, err, ErrIrreversibleRange)
}

func TestSegmentMasking(t *testing.T) {
	seg := MustNewSegment(0xab, 0xab, 8, 16, nil)
	assert.Equal(t, uint64(0xa8), seg.MaskedValue(0xab, 6))
	assert.Equal(t, uint64(0xab), seg.MaskedValue(0xab, 8))
	assert.Equal(t, uint64(0), seg.MaskedValue(0xab, 0))
}

func TestWithoutPrefix(t *testing.T) {
	seg := MustNewSegment(10, 10, 8, 10, ToPrefixLen(4))
	bare := seg.WithoutPrefix()
	assert.False(t, bare.IsPrefixed())
	// 值不变
	assert.True(t, seg.Equal(bare))
	// 原段不受影响
	assert.True(t, seg.IsPrefixed())
}

func TestReverseUint64Bits(t *testing.T) {
	assert.Equal(t, uint64(0x80), ReverseUint64Bits(1, 8))
	assert.Equal(t, uint64(1), ReverseUint64Bits(0x80, 8))
	assert.Equal(t, uint64(0b101), ReverseUint64Bits(0b101, 3))
	assert.Equal(t, uint64(0b110), ReverseUint64Bits(0b011, 3))
}
