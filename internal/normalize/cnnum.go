package normalize

import (
	"strconv"
	"strings"
)

var cnDigits = map[rune]int64{
	'零': 0, '〇': 0,
	'一': 1, '壹': 1,
	'二': 2, '两': 2, '贰': 2,
	'三': 3, '叁': 3,
	'四': 4, '肆': 4,
	'五': 5, '伍': 5,
	'六': 6, '陆': 6,
	'七': 7, '柒': 7,
	'八': 8, '捌': 8,
	'九': 9, '玖': 9,
}

var cnUnits = map[rune]float64{
	'十': 10, '拾': 10,
	'百': 100, '佰': 100,
	'千': 1000, '仟': 1000,
}

var cnSections = map[rune]float64{
	'万': 10_000, '萬': 10_000,
	'亿': 100_000_000, '億': 100_000_000,
}

// evalNumeral evaluates a numeral run that may mix Arabic digits with
// Chinese units and section markers: "500", "五百", "3万5千", "一亿二千万".
// Returns false when the run contains anything else.
func evalNumeral(s string) (float64, bool) {
	runes := []rune(s)
	var total, section, current float64
	seen := false
	i := 0
	for i < len(runes) {
		r := runes[i]
		if r >= '0' && r <= '9' {
			j := i
			for j < len(runes) && ((runes[j] >= '0' && runes[j] <= '9') || runes[j] == '.') {
				j++
			}
			v, err := strconv.ParseFloat(string(runes[i:j]), 64)
			if err != nil {
				return 0, false
			}
			current = v
			seen = true
			i = j
			continue
		}
		if d, ok := cnDigits[r]; ok {
			current = current*10 + float64(d)
			seen = true
			i++
			continue
		}
		if u, ok := cnUnits[r]; ok {
			// bare 十 means 10
			if current == 0 {
				current = 1
			}
			section += current * u
			current = 0
			seen = true
			i++
			continue
		}
		if m, ok := cnSections[r]; ok {
			section = (section + current) * m
			total += section
			section = 0
			current = 0
			seen = true
			i++
			continue
		}
		return 0, false
	}
	if !seen {
		return 0, false
	}
	return total + section + current, true
}

// parseNumberToken parses either an Arabic number (thousands separators and
// decimals allowed) or a Chinese numeral run, without unit suffixes.
func parseNumberToken(s string) (float64, bool) {
	s = strings.NewReplacer(",", "", "，", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}
	return evalNumeral(s)
}

func isCNNumeral(r rune) bool {
	if _, ok := cnDigits[r]; ok {
		return true
	}
	if _, ok := cnUnits[r]; ok {
		return true
	}
	_, ok := cnSections[r]
	return ok
}

func isArabicNumeral(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}
