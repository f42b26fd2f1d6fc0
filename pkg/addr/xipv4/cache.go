package xipv4

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xgrouping"
)

// cacheKey 标识一个单值 IPv4 地址及其前缀。
type cacheKey struct {
	value     uint32
	prefix    int
	hasPrefix bool
}

// AddressCache 是单值 IPv4 地址的 LRU 驻留缓存。
// 地址不可变，缓存命中直接复用同一实例，其内部的惰性派生
// （字节、计数、最低/最高地址）随实例一并复用。
// 必须通过 [NewAddressCache] 创建；所有方法并发安全。
type AddressCache struct {
	lru *lru.Cache[cacheKey, *xgrouping.Address]
}

// NewAddressCache 创建容量为 size 的地址缓存。
// size 不为正时返回 [ErrInvalidSize]。
func NewAddressCache(size int) (*AddressCache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	inner, err := lru.New[cacheKey, *xgrouping.Address](size)
	if err != nil {
		return nil, err
	}
	return &AddressCache{lru: inner}, nil
}

// FromUint32 返回 value/prefix 对应的地址，未命中时构造并驻留。
// 并发未命中可能重复构造，后入缓存者生效；地址不可变，重复构造无害。
func (c *AddressCache) FromUint32(value uint32, prefix xdivision.PrefixLen) (*xgrouping.Address, error) {
	key := cacheKey{value: value}
	if prefix != nil {
		key.prefix, key.hasPrefix = *prefix, true
	}
	if addr, ok := c.lru.Get(key); ok {
		return addr, nil
	}
	addr, err := FromUint32(value, prefix)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, addr)
	return addr, nil
}

// Len 返回当前驻留的地址个数。
func (c *AddressCache) Len() int {
	return c.lru.Len()
}

// Purge 清空缓存。已发出的地址实例不受影响。
func (c *AddressCache) Purge() {
	c.lru.Purge()
}
