// Package normalize converts free-text tender quantities and labels into
// canonical forms. All functions are total: they never panic and report
// unparsable input through their ok result.
package normalize

import "strings"

// Dimension is the closed review dimension enum used to join requirements
// to responses.
type Dimension string

const (
	DimQualification   Dimension = "qualification"
	DimTechnical       Dimension = "technical"
	DimBusiness        Dimension = "business"
	DimPrice           Dimension = "price"
	DimDocStructure    Dimension = "doc_structure"
	DimScheduleQuality Dimension = "schedule_quality"
	DimOther           Dimension = "other"
)

// Dimensions lists every known dimension.
var Dimensions = []Dimension{
	DimQualification, DimTechnical, DimBusiness, DimPrice,
	DimDocStructure, DimScheduleQuality, DimOther,
}

var moneyCleaner = strings.NewReplacer(
	" ", "", "\t", "", ",", "", "，", "", "人民币", "¥",
)

// MoneyToCNY parses a money expression into integer yuan.
// Handles Arabic and Chinese numerals, 万/亿 multipliers, thousands
// separators, and currency symbols: "500万元" → 5000000, "¥1,200,000" →
// 1200000, "伍拾万元整" → 500000.
func MoneyToCNY(text string) (int64, bool) {
	cleaned := moneyCleaner.Replace(text)
	cleaned = strings.NewReplacer("RMB", "¥", "rmb", "¥", "CNY", "¥", "￥", "¥", "$", "¥").Replace(cleaned)

	runes := []rune(cleaned)
	for i := 0; i < len(runes); {
		if !isArabicNumeral(runes[i]) && !isCNNumeral(runes[i]) {
			i++
			continue
		}
		j := i
		for j < len(runes) && (isArabicNumeral(runes[j]) || isCNNumeral(runes[j])) {
			j++
		}
		run := string(runes[i:j])
		hasUnit := j < len(runes) && (runes[j] == '元' || runes[j] == '圆' || runes[j] == '块')
		_, endsWithSection := cnSections[runes[j-1]]
		marked := i > 0 && runes[i-1] == '¥'
		if hasUnit || endsWithSection || marked {
			if v, ok := evalNumeral(run); ok && v > 0 {
				return int64(v + 0.5), true
			}
		}
		i = j
	}
	return 0, false
}

// DurationToDays parses "N天", "N日", "N个自然日", "N日历天" and "N个月"
// (fixed 30-day months) into integer days.
func DurationToDays(text string) (int, bool) {
	return scanQuantity(text, func(suffix []rune) (int, bool) {
		switch {
		case hasRunePrefix(suffix, "自然日"), hasRunePrefix(suffix, "自然天"),
			hasRunePrefix(suffix, "日历天"),
			hasRunePrefix(suffix, "天"), hasRunePrefix(suffix, "日"):
			return 1, true
		case hasRunePrefix(suffix, "月"):
			return 30, true
		}
		return 0, false
	})
}

// WarrantyToMonths parses "N个月", "N月" and "N年" (fixed 12-month years)
// into integer months.
func WarrantyToMonths(text string) (int, bool) {
	return scanQuantity(text, func(suffix []rune) (int, bool) {
		switch {
		case hasRunePrefix(suffix, "月"):
			return 1, true
		case hasRunePrefix(suffix, "年"):
			return 12, true
		}
		return 0, false
	})
}

// scanQuantity finds the first numeral run whose unit suffix the classify
// callback accepts, and returns the run's value times the unit multiplier.
// An optional 个 between number and unit is skipped.
func scanQuantity(text string, classify func(suffix []rune) (int, bool)) (int, bool) {
	runes := []rune(strings.TrimSpace(text))
	for i := 0; i < len(runes); {
		if !isArabicNumeral(runes[i]) && !isCNNumeral(runes[i]) {
			i++
			continue
		}
		j := i
		for j < len(runes) && (isArabicNumeral(runes[j]) || isCNNumeral(runes[j])) {
			j++
		}
		k := j
		if k < len(runes) && runes[k] == '个' {
			k++
		}
		if mult, ok := classify(runes[k:]); ok {
			if v, ok := evalNumeral(string(runes[i:j])); ok && v > 0 {
				return int(v+0.5) * mult, true
			}
		}
		i = j
	}
	return 0, false
}

func hasRunePrefix(runes []rune, prefix string) bool {
	return strings.HasPrefix(string(runes), prefix)
}

// dimensionAliases is evaluated in order; the first match wins.
var dimensionAliases = []struct {
	dim     Dimension
	aliases []string
}{
	{DimQualification, []string{"qualification", "资格", "资质"}},
	{DimPrice, []string{"price", "价格", "报价"}},
	{DimTechnical, []string{"technical", "技术"}},
	{DimBusiness, []string{"business", "commercial", "商务"}},
	{DimDocStructure, []string{"doc_structure", "document", "文件结构", "格式", "编制"}},
	{DimScheduleQuality, []string{"schedule_quality", "schedule", "进度", "工期", "质量"}},
}

// ParseDimension maps a free-text dimension label (Chinese or English) to
// the closed enum. Unknown input maps to DimOther.
func ParseDimension(text string) Dimension {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return DimOther
	}
	for _, d := range Dimensions {
		if t == string(d) {
			return d
		}
	}
	for _, entry := range dimensionAliases {
		for _, a := range entry.aliases {
			if strings.Contains(t, a) {
				return entry.dim
			}
		}
	}
	return DimOther
}


// DefaultPriceAnchorKeywords marks text blocks that carry the bid's actual
// price figures, as opposed to incidental money mentions (past contract
// values, penalty clauses).
var DefaultPriceAnchorKeywords = []string{
	"投标总价", "投标报价", "报价表", "开标一览表", "总报价", "报价明细", "分项报价",
}

// IsPriceAnchor reports whether text looks like a price-bearing artifact.
// A nil keyword list selects DefaultPriceAnchorKeywords.
func IsPriceAnchor(text string, keywords []string) bool {
	if keywords == nil {
		keywords = DefaultPriceAnchorKeywords
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
