// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xintern: 不可变值的驻留表，定长槽位、惰性填充、良性竞争访问
//
// 设计原则：
//   - 工具包不依赖业务包，只向上提供能力
//   - 并发访问默认安全，文档标注竞争语义
package util
