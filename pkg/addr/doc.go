// Package addr 提供地址建模相关的子包。
//
// 子包列表：
//   - xdivision: 地址划分与段的不可变值模型（位范围、前缀、反转）
//   - xgrouping: 划分分组引擎（惰性缓存、前缀演算、枚举、重分组）
//   - xipv4: IPv4 地址族门面（工厂、驻留缓存、netip/netipx 互转、序列化）
//   - xipv6: IPv6 地址族门面（16 位段、zone、netip 互转）
//
// 依赖方向自下而上：xdivision ← xgrouping ← xipv4/xipv6。
// 地址族门面通过 creator 能力表向引擎注入族常量，引擎不反向依赖门面。
package addr
