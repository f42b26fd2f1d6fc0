// Package xdivision 提供地址划分（Division）的不可变值模型。
//
// Division 是一段连续比特区间，携带 [lower, upper] 数值范围和可选的
// 划分级前缀长度。Segment 是位宽由地址族固定的 Division（IPv4 为 8 位，
// IPv6 为 16 位），在 Division 之上增加位反转与字节反转运算。
// 两者都是不可变值类型，构造后可安全地在多个 goroutine 间共享。
//
// # 核心类型
//
//   - [Division]: 位宽 1~63 的数值范围划分，可选划分级前缀
//   - [Segment]: 地址族固定位宽的 Division，支持位/字节反转
//   - [PrefixLen]: 可选前缀长度（nil 表示无前缀）
//
// # 快速示例
//
// 构造一个 8 位划分并查询其属性：
//
//	div, _ := xdivision.New(0, 255, 8, 10, nil)
//	fmt.Println(div.IsFullRange())  // true
//	fmt.Println(div.MinPrefix())    // 0
//	fmt.Println(div.ValueCount())   // 256
//
// # 设计决策
//
//   - Division 按值传递，字段全部不可导出，构造后不可变，无需同步即可并发读
//   - 可选前缀在字段上用 (int, bool) 表示，参数传递用 [PrefixLen]（*int），
//     与上层 grouping 的前缀演算保持一致
//   - 位宽上限 63：所有数值运算停留在 uint64 内，不引入大整数
//   - [MustNew] 仅供已完成掩码归一化的 creator 使用，非法参数 panic；
//     外部输入一律走 [New] 并检查 error
//
// # 前缀一致性
//
// Division 自身不校验划分级前缀与整体 grouping 前缀的关系，
// 该不变式由上层 xgrouping 在构造路径上维护（见 xgrouping 包文档）。
package xdivision
