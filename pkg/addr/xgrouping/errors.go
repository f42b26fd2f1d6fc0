package xgrouping

import "errors"

var (
	// ErrInvalidArgument 表示构造参数非法：不支持 zone 的地址族收到非空
	// zone、重分组的 bitsPerDigit 超出机器字宽、段宽不一致等。
	ErrInvalidArgument = errors.New("xgrouping: invalid argument")

	// ErrIndexOutOfBounds 表示下标越界：subsection 的 from > to，
	// 或批量拷贝的目标区间超出段数组。
	ErrIndexOutOfBounds = errors.New("xgrouping: index out of bounds")

	// ErrSizeMismatch 表示 replace 操作越界：index + other.size > this.size。
	ErrSizeMismatch = errors.New("xgrouping: address size mismatch")

	// ErrMismatchedSegmentRanges 表示范围序列无法表达为 lower-upper 双值
	// 字符串：多值划分之后紧跟的划分不是全范围。
	ErrMismatchedSegmentRanges = errors.New("xgrouping: mismatched segment ranges")
)
