// Package speech rewrites digit-based numeric text into words for audio playback.
package speech

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	percentRangePattern = regexp.MustCompile(`(\d+)-(\d+)%`)
	unitRangePattern    = regexp.MustCompile(`(\d+)-(\d+)\s+(weeks|days|months|hours)`)
	percentPattern      = regexp.MustCompile(`(\d+)%`)
)

var (
	ones  = []string{"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	teens = []string{"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	tens  = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}
)

// Normalize spells out percentage ranges, unit ranges and single percentages.
// Text that matches none of the patterns is returned unchanged.
func Normalize(text string) string {
	text = replaceMatches(text, percentRangePattern, func(g []string) string {
		return NumberToWords(g[1]) + " to " + NumberToWords(g[2]) + " percent"
	})
	text = replaceMatches(text, unitRangePattern, func(g []string) string {
		return NumberToWords(g[1]) + " to " + NumberToWords(g[2]) + " " + g[3]
	})
	return replaceMatches(text, percentPattern, func(g []string) string {
		return NumberToWords(g[1]) + " percent"
	})
}

// NumberToWords spells integers 0-999. Anything else is returned as given.
func NumberToWords(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || n >= 1000 {
		return digits
	}
	if n == 0 {
		return "zero"
	}
	if n < 100 {
		return underHundred(n)
	}

	words := ones[n/100] + " hundred"
	if rem := n % 100; rem != 0 {
		words += " and " + underHundred(rem)
	}
	return words
}

func underHundred(n int) string {
	switch {
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n%10 == 0:
		return tens[n/10]
	default:
		return tens[n/10] + " " + ones[n%10]
	}
}

// replaceMatches leaves every match that is part of a decimal token untouched,
// so "2.5%" and "1.5-2%" stay as written instead of being half rewritten.
func replaceMatches(text string, re *regexp.Regexp, render func([]string) string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 16*len(matches))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if inDecimalToken(text, start) {
			continue
		}
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = text[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(text[last:start])
		b.WriteString(render(groups))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// inDecimalToken reports whether the numeric token ending at or running into
// start contains a decimal point.
func inDecimalToken(text string, start int) bool {
	for i := start - 1; i >= 0; i-- {
		switch c := text[i]; {
		case c == '.':
			return i > 0 && isDigit(text[i-1])
		case isDigit(c) || c == '-':
		default:
			return false
		}
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
