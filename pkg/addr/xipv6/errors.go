package xipv6

import "errors"

var (
	// ErrNotIPv6 表示输入不是 IPv6 地址或位宽不符。
	ErrNotIPv6 = errors.New("xipv6: not an IPv6 address")
)
