// Package xintern 提供不可变值的驻留表（interning table）。
//
// 驻留表是一次分配、惰性填充、从不收缩的定长槽位数组，
// 面向"可能取值有限且值不可变"的场景（如地址段按值驻留、
// 按 (前缀, 值) 驻留）。
//
// # 核心类型
//
//   - [Table]: 一维驻留表，槽位按下标寻址
//   - [Matrix]: 二维驻留表，行长度可不等（如按前缀分行、行内按值寻址）
//
// # 快速示例
//
//	table := xintern.NewTable[string](256)
//	v := table.LoadOrCreate(7, func() *string { s := "seg-7"; return &s })
//
// # 并发模型
//
// 表的访问是良性竞争（benign race）：槽位存放不可变值，
// 并发的首次填充可能重复构造，后写覆盖先写，所有写入值相等，
// 下一个读取者丢弃多余构造即可。读取无锁；写入通过 sync/atomic
// 发布完整构造的值。
//
// # 设计决策
//
//   - 槽位存 *T 而非 T：atomic.Pointer 保证发布的值完整可见
//   - create 回调在竞争下可能被多次调用，必须是纯构造、无副作用
//   - 不提供删除与收缩：驻留对象生命周期与表一致
package xintern
