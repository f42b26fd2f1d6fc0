package xipv4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
)

func TestAddressCache(t *testing.T) {
	cache, err := NewAddressCache(16)
	require.NoError(t, err)

	a, err := cache.FromUint32(0x7f000001, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{127, 0, 0, 1}, a.Bytes())

	// 命中返回同一实例
	b, err := cache.FromUint32(0x7f000001, nil)
	require.NoError(t, err)
	assert.Same(t, a, b)

	// 前缀参与键：同值不同前缀是不同条目
	c, err := cache.FromUint32(0x7f000001, xdivision.ToPrefixLen(32))
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())

	// 容量必须为正
	_, err = NewAddressCache(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestAddressCacheEviction(t *testing.T) {
	cache, err := NewAddressCache(2)
	require.NoError(t, err)

	_, err = cache.FromUint32(1, nil)
	require.NoError(t, err)
	_, err = cache.FromUint32(2, nil)
	require.NoError(t, err)
	_, err = cache.FromUint32(3, nil)
	require.NoError(t, err)

	// LRU 淘汰最旧条目
	assert.Equal(t, 2, cache.Len())
}

func TestAddressCacheConcurrent(t *testing.T) {
	cache, err := NewAddressCache(128)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for v := uint32(0); v < 64; v++ {
				addr, err := cache.FromUint32(v, nil)
				if err != nil {
					return err
				}
				if got, ok := Uint32(addr); !ok || got != v {
					return ErrNotIPv4
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
