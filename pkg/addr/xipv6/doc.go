// Package xipv6 提供 IPv6 地址族门面。
//
// xipv6 在 xgrouping 引擎之上携带 IPv6 族常量（8 段、每段 16 位），
// 实现段/节/地址工厂能力表 [Creator]，支持 zone 标识，并提供与
// Go 标准库 [net/netip] 的互转和回环地址合成。
//
// # 核心功能
//
//   - creator.go: [Creator] 工厂与段驻留缓存
//   - ipv6.go: 构造入口（FromBytes/FromAddr/FromPrefix）、netip 互转、
//     Loopback、迭代与字符串呈现
//
// # 驻留缓存
//
// IPv6 段空间有 65536 个取值，逐值驻留全空间不划算：
//
//   - 按值：只驻留 [0, 255] 的低值段（零段与小值段最常见），
//     更大的值直接构造
//   - 按前缀全范围：[0, 0xffff]/p 段，一前缀一槽
//   - 不做按 (前缀, 值) 驻留：16 行 × 最多 2^16 槽的矩阵收益配不上开销
//
// # 设计决策
//
//   - zone 在地址层携带，不参与 section 的结构相等；
//     [Creator.CreateAddressWithZone] 接受任意 zone
//   - 多值地址的字符串呈现使用非压缩的冒分十六进制；
//     单值地址走 [netip.Addr] 的规范压缩形式
package xipv6
