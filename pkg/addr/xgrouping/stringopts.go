package xgrouping

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
)

// 默认的范围分隔符与通配符。
const (
	DefaultRangeSeparator  = "-"
	DefaultSegmentWildcard = "*"
)

// Wildcards 定义范围与通配呈现符号。
type Wildcards struct {
	// RangeSeparator 分隔范围的下界与上界，空串时取 [DefaultRangeSeparator]。
	RangeSeparator string
	// Wildcard 表示全范围段的通配符，空串时不用通配而展开为范围。
	Wildcard string
	// SingleWildcard 表示单数字通配符。随参数原样携带，
	// 本包的渲染（ToNormalizedString / ToNormalizedStringRange）不使用它。
	SingleWildcard string
}

// StringOptions 描述一种字符串呈现方式。值本身可复用于任意分组；
// 物化后的呈现参数缓存在选项值内部，挂接缓存不改动分组。
type StringOptions struct {
	// Radix 是段值的呈现基数。
	Radix int
	// Separator 分隔相邻段，0 表示无分隔符。
	Separator rune
	// Uppercase 控制十六进制等字母数字的大小写。
	Uppercase bool
	// Reverse 反转段的呈现顺序；splitDigits 时同时反转段内数字。
	Reverse bool
	// SplitDigits 把段内数字也用分隔符拆开。
	SplitDigits bool
	// ExpandSegments 把段值补齐前导零到满宽。
	ExpandSegments bool
	// Wildcards 是范围与通配呈现符号。
	Wildcards Wildcards
	// SegmentStrPrefix 是每段的字符串前缀（如 inet_aton 风格的 0x、0）。
	SegmentStrPrefix string
	// AddressLabel 是整个地址的前置标签。
	AddressLabel string
	// ZoneSeparator 分隔地址与 zone，0 表示默认的 '%'。
	ZoneSeparator rune

	cachedParams atomic.Pointer[StringParams]
}

// CachedParams 返回挂接在选项上的物化呈现参数；未挂接时为 nil。
func (o *StringOptions) CachedParams() *StringParams {
	return o.cachedParams.Load()
}

// SetCachedParams 把物化呈现参数挂接到选项上。
func (o *StringOptions) SetCachedParams(params *StringParams) {
	o.cachedParams.Store(params)
}

// StringParams 是物化后的呈现参数。与选项不同，参数与具体分组无关，
// 可跨分组复用。
type StringParams struct {
	Radix            int
	Separator        rune
	Uppercase        bool
	Reverse          bool
	SplitDigits      bool
	ExpandSegments   bool
	Wildcards        Wildcards
	SegmentStrPrefix string
	AddressLabel     string
	ZoneSeparator    rune
}

// ToParams 物化并缓存选项的呈现参数。
// 同一选项值上的并发物化产生相等参数，后写覆盖先写无碍。
func (o *StringOptions) ToParams() *StringParams {
	if cached := o.cachedParams.Load(); cached != nil {
		return cached
	}
	params := &StringParams{
		Radix:            o.Radix,
		Separator:        o.Separator,
		Uppercase:        o.Uppercase,
		Reverse:          o.Reverse,
		SplitDigits:      o.SplitDigits,
		ExpandSegments:   o.ExpandSegments,
		Wildcards:        o.Wildcards,
		SegmentStrPrefix: o.SegmentStrPrefix,
		AddressLabel:     o.AddressLabel,
		ZoneSeparator:    o.ZoneSeparator,
	}
	if params.Radix == 0 {
		params.Radix = 10
	}
	if params.Wildcards.RangeSeparator == "" {
		params.Wildcards.RangeSeparator = DefaultRangeSeparator
	}
	if params.ZoneSeparator == 0 {
		params.ZoneSeparator = '%'
	}
	o.cachedParams.Store(params)
	return params
}

// ToNormalizedString 按呈现参数渲染分组，zone 非空时以 zone 分隔符追加。
func (p *StringParams) ToNormalizedString(g *Grouping, zone string) string {
	var b strings.Builder
	b.WriteString(p.AddressLabel)
	p.appendDivisions(&b, g)
	if zone != "" {
		b.WriteRune(p.ZoneSeparator)
		b.WriteString(zone)
	}
	return b.String()
}

// ToNormalizedStringRange 把 lower 和 upper 渲染为 lower-upper 双值形式。
func (p *StringParams) ToNormalizedStringRange(lower, upper *Grouping, zone string) string {
	var b strings.Builder
	b.WriteString(p.AddressLabel)
	p.appendDivisions(&b, lower)
	b.WriteString(p.Wildcards.RangeSeparator)
	p.appendDivisions(&b, upper)
	if zone != "" {
		b.WriteRune(p.ZoneSeparator)
		b.WriteString(zone)
	}
	return b.String()
}

func (p *StringParams) appendDivisions(b *strings.Builder, g *Grouping) {
	count := g.DivisionCount()
	for i := 0; i < count; i++ {
		if i > 0 && p.Separator != 0 {
			b.WriteRune(p.Separator)
		}
		index := i
		if p.Reverse {
			index = count - i - 1
		}
		p.appendDivision(b, g.Division(index))
	}
}

func (p *StringParams) appendDivision(b *strings.Builder, div xdivision.Division) {
	b.WriteString(p.SegmentStrPrefix)
	if div.IsMultiple() && div.IsFullRange() && p.Wildcards.Wildcard != "" {
		b.WriteString(p.Wildcards.Wildcard)
		return
	}
	b.WriteString(p.formatValue(div.LowerValue(), div.BitCount()))
	if div.IsMultiple() {
		b.WriteString(p.Wildcards.RangeSeparator)
		b.WriteString(p.formatValue(div.UpperValue(), div.BitCount()))
	}
}

// formatValue 渲染单个划分值：按基数格式化，可选补齐前导零、
// 大写和拆分数字。
func (p *StringParams) formatValue(value uint64, bitCount xdivision.BitCount) string {
	s := strconv.FormatUint(value, p.Radix)
	if p.Uppercase {
		s = strings.ToUpper(s)
	}
	if p.ExpandSegments {
		maxValue := ^(^uint64(0) << uint(bitCount))
		width := len(strconv.FormatUint(maxValue, p.Radix))
		for len(s) < width {
			s = "0" + s
		}
	}
	if p.SplitDigits && p.Separator != 0 {
		var b strings.Builder
		runes := []rune(s)
		if p.Reverse {
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
		}
		for i, r := range runes {
			if i > 0 {
				b.WriteRune(p.Separator)
			}
			b.WriteRune(r)
		}
		return b.String()
	}
	return s
}
