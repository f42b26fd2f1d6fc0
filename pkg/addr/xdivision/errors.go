package xdivision

import "errors"

var (
	// ErrInvalidBitCount 表示位宽超出 [1, 63]。
	ErrInvalidBitCount = errors.New("xdivision: bit count out of range [1, 63]")

	// ErrInvalidRange 表示数值范围非法（lower > upper 或超出位宽容量）。
	ErrInvalidRange = errors.New("xdivision: invalid value range")

	// ErrInvalidPrefix 表示划分级前缀超出 [0, bitCount]。
	ErrInvalidPrefix = errors.New("xdivision: division prefix out of range")

	// ErrIrreversibleRange 表示多值范围无法反转：
	// 反转后的取值集合不再是连续的 [lower, upper] 区间。
	ErrIrreversibleRange = errors.New("xdivision: range is not reversible")
)
