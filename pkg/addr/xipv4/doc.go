// Package xipv4 提供 IPv4 地址族门面。
//
// xipv4 在 xgrouping 引擎之上携带 IPv4 族常量（4 段、每段 8 位），
// 实现段/节/地址工厂能力表 [Creator]（含三级驻留缓存），并提供与
// Go 标准库 [net/netip] 及社区库 [go4.org/netipx] 的互转、
// 回环地址合成、地址 LRU 缓存和 wire 序列化结构。
//
// # 核心功能
//
//   - creator.go: [Creator] 工厂与段驻留缓存（按值 / 按 (前缀, 值) /
//     按前缀全范围三级缓存）
//   - ipv4.go: 构造入口（FromBytes/FromUint32/FromAddr/FromPrefix/
//     FromValueProviders/FromIPRange）、netip/netipx 互转、Loopback、
//     迭代与字符串呈现
//   - cache.go: [AddressCache]，单值地址的 LRU 驻留
//   - wire.go: [WireSection]，JSON/BSON/YAML 序列化结构
//
// # 快速示例
//
// 构造 10.0.0.0/8 并查询：
//
//	addr, _ := xipv4.FromBytes([]byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8))
//	fmt.Println(addr.IsMultiple())          // true（/8 表示整个子网块）
//	fmt.Println(addr.Section().Count())     // 16777216
//	fmt.Println(xipv4.String(addr))         // 10.*.*.*/8 的规范形式
//
// # 驻留缓存
//
// 三级段缓存与 Java 时代的地址库同构：
//
//   - 按值：256 个无前缀单值段，一槽一值
//   - 按 (前缀, 值)：前缀 p ∈ [1, 8]，行内按掩码后的高 p 位寻址
//   - 按前缀全范围：[0, 255]/p 段，一前缀一槽
//
// 缓存访问是良性竞争：槽位存放不可变段，并发首次填充可能重复构造，
// 所有写入值相等，读取无锁。
//
// # 设计决策
//
//   - zone 是 IPv6 概念：[Creator.CreateAddressWithZone] 收到非空 zone
//     时返回 xgrouping.ErrInvalidArgument
//   - [FromIPRange] 仅接受能表达为逐段范围的区间（首个分叉段之后
//     必须整段全范围），其余返回 [ErrUnalignedRange]——本包不做
//     CIDR 分解，需要时先用 netipx 把范围拆为前缀
//   - 序列化是门面便利，不构成稳定 wire 契约
package xipv4
