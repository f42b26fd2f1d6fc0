package xgrouping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xgrouping"
)

// 场景：IPv4 重分组为八进制（3 位每数字）。
// 32 位切为最高位在前的 (2, 30) 两个划分，基数 8。
func TestRegroupOctal(t *testing.T) {
	sect := mustIPv4(t, []byte{0x01, 0x02, 0x03, 0x04}, nil).Section()

	divs, err := sect.CreateNewDivisions(3)
	require.NoError(t, err)
	require.Len(t, divs, 2)

	// 最高位划分 2 位，余下 30 位
	assert.Equal(t, 2, divs[0].BitCount())
	assert.Equal(t, 30, divs[1].BitCount())
	assert.Equal(t, 8, divs[0].Radix())
	assert.Equal(t, 8, divs[1].Radix())

	// 0x01020304 的最高 2 位为 0，低 30 位为 0x1020304
	assert.Equal(t, uint64(0), divs[0].LowerValue())
	assert.Equal(t, uint64(0x1020304), divs[1].LowerValue())
}

// 重分组保持总位宽与字节物化。
func TestRegroupPreservesBytes(t *testing.T) {
	sect := mustIPv4(t, []byte{0xde, 0xad, 0xbe, 0xef}, nil).Section()

	for _, bitsPerDigit := range []int{1, 2, 3, 4, 5, 8} {
		regrouped, err := sect.Regroup(bitsPerDigit)
		require.NoError(t, err, "bitsPerDigit %d", bitsPerDigit)
		assert.Equal(t, sect.BitCount(), regrouped.BitCount())
		assert.Equal(t, sect.Bytes(), regrouped.Bytes(), "bitsPerDigit %d", bitsPerDigit)
	}
}

// 范围划分的上下界独立流式注入。
func TestRegroupRange(t *testing.T) {
	sect := mustIPv4Range(t, [4]uint8{1, 2, 3, 0}, [4]uint8{1, 2, 3, 255}, nil).Section()

	regrouped, err := sect.Regroup(4)
	require.NoError(t, err)
	assert.Equal(t, sect.Bytes(), regrouped.Bytes())
	assert.Equal(t, sect.UpperBytes(), regrouped.UpperBytes())
}

// 前缀经演算派生到新划分。
func TestRegroupPrefixed(t *testing.T) {
	sect := mustIPv4(t, []byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8)).Section()

	divs, err := sect.CreateNewPrefixedDivisions(4, xdivision.ToPrefixLen(8))
	require.NoError(t, err)
	require.Len(t, divs, 1)
	// 32 位恰好是一个 4 位对齐的划分（上限 60 位），前缀 8 落在划分内
	assert.Equal(t, 32, divs[0].BitCount())
	p, ok := divs[0].DivisionPrefix()
	require.True(t, ok)
	assert.Equal(t, 8, p)
	assert.Equal(t, 16, divs[0].Radix())
}

// bitsPerDigit 超出机器字宽被拒绝。
func TestRegroupInvalidBitsPerDigit(t *testing.T) {
	sect := mustIPv4(t, []byte{1, 2, 3, 4}, nil).Section()

	_, err := sect.CreateNewDivisions(32)
	assert.ErrorIs(t, err, xgrouping.ErrInvalidArgument)
	_, err = sect.CreateNewDivisions(0)
	assert.ErrorIs(t, err, xgrouping.ErrInvalidArgument)
}
