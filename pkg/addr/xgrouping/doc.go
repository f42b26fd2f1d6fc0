// Package xgrouping 提供地址划分分组（grouping）引擎。
//
// Grouping 是不可变的 Division 有序序列，携带可选的整体前缀长度和一组
// 惰性缓存（计数、字节物化、多值性、哈希）。Section 是全部划分均为同宽
// Segment 的 Grouping，即与地址族无关的地址主体。包内同时提供分组之上
// 的全部算法原语：规范字节物化、前缀演算、范围枚举、结构相等、反转、
// 截取（subsection）与重分组（radix 变换）。
//
// # 核心类型
//
//   - [Grouping]: Division 序列 + 整体前缀 + 惰性缓存
//   - [Section]: 同宽 Segment 组成的 Grouping
//   - [Address]: Section + 可选 zone 的地址包装
//   - [SegmentCreator] / [SectionCreator] / [AddressCreator]: 地址族工厂能力表
//   - [SegmentsIterator] / [SectionIterator] / [AddressIterator]: 笛卡尔积枚举器
//   - [StringOptions]: 字符串呈现参数（格式化前端的最小接口面）
//
// # 快速示例
//
// 通过 creator 从字节构造 section 并查询：
//
//	sect, _ := creator.CreateSectionFromBytes([]byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8))
//	fmt.Println(sect.Count())                  // 16777216
//	fmt.Println(sect.IsRangeEquivalent(8))     // true
//
// # 不变式
//
// 构造完成后恒成立：
//
//  1. totalBitCount = Σ division.BitCount()
//  2. 整体前缀 p 与各划分前缀一致：位于宿主部分的划分前缀为 0 且全范围；
//     完全位于网络部分的划分无前缀；跨界划分前缀为 p - 起始位偏移
//  3. 每个划分 lower <= upper，分组按字典序亦然
//  4. 返回调用方后不可变；缓存单调（只从未初始化到已初始化，从不失效）
//
// # 并发模型
//
// Grouping 发布后只读，结构字段的读取无需同步。惰性缓存使用
// sync/atomic 安全发布：并发的首次计算可能重复，但所有写入值相等，
// 后写覆盖先写无碍（良性竞争）。最低/最高派生 section 的缓存
// 在未命中时经 singleflight 合并计算，命中后读取无锁。
//
// # 设计决策
//
//   - Java 式深继承（DivisionGrouping → Section → 各族 Section）折叠为
//     组合：Grouping 持有划分数组与缓存，族常量（段位宽、最大值）由
//     creator 能力表携带，算法以能力表为参数共享
//   - 多态工厂表达为能力接口而非类型层级；划分重分组直接产出
//     [xdivision.Division] 值，无需族内子类型
//   - 哈希折叠算法可产生 0，而缓存以 0 作"未计算"哨兵：真为 0 的哈希
//     每次重算，结果恒等，仅损失缓存收益（沿用原始行为）
//   - [Grouping.Count] 每次返回新分配的 big.Int 副本：big.Int 可变，
//     缓存值不允许逃逸给调用方
package xgrouping
