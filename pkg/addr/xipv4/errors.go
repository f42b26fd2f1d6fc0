package xipv4

import "errors"

var (
	// ErrNotIPv4 表示输入不是 IPv4 地址或位宽不符。
	ErrNotIPv4 = errors.New("xipv4: not an IPv4 address")

	// ErrUnalignedRange 表示地址区间无法表达为逐段范围。
	ErrUnalignedRange = errors.New("xipv4: range cannot be expressed per segment")

	// ErrInvalidSize 表示缓存容量不为正。
	ErrInvalidSize = errors.New("xipv4: cache size must be positive")
)
