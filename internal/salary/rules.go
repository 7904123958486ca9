package salary

import (
	"regexp"
	"strconv"
	"strings"
)

// The rule pass handles the literal patterns boards emit most often:
// "$90,000 - $110,000 a year", "£45k-£55k per annum", "CAD 40/hr". It only
// claims a result when currency, amounts and an explicit period word are all
// present; anything less falls through to the extraction capability.

const currencyPattern = `C\$|CA\$|US\$|\$|£|€|CAD|USD|GBP|EUR`

var (
	currencyRe = regexp.MustCompile(`(?i)` + currencyPattern)
	rangeRe    = regexp.MustCompile(`(?i)(?:` + currencyPattern + `)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k)?\s*(?:-|–|—|\bto\b)\s*(?:` + currencyPattern + `)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k)?`)
	singleRe   = regexp.MustCompile(`(?i)(?:` + currencyPattern + `)\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k)?`)
	upToRe     = regexp.MustCompile(`(?i)\b(?:up to|max(?:imum)?)\b`)
)

// ParseRules attempts the deterministic rule pass. The boolean is false when
// the text does not match a complete literal pattern and the cascade should
// move on.
func ParseRules(text, location string) (*Normalization, bool) {
	period := detectPeriod(text)
	if period == PeriodUnknown {
		return nil, false
	}

	symbol := currencyRe.FindString(text)
	if symbol == "" {
		return nil, false
	}
	currency := ResolveSymbol(symbol, location)
	if currency == "" {
		return nil, false
	}

	if m := rangeRe.FindStringSubmatch(text); m != nil {
		lo, okLo := parseAmount(m[1], m[2])
		hi, okHi := parseAmount(m[3], m[4])
		if okLo && okHi {
			if lo > hi {
				lo, hi = hi, lo
			}
			return &Normalization{
				Min:        &lo,
				Max:        &hi,
				Currency:   currency,
				Period:     period,
				Confidence: 1.0,
				Source:     SourceRule,
			}, true
		}
	}

	if m := singleRe.FindStringSubmatch(text); m != nil {
		amount, ok := parseAmount(m[1], m[2])
		if ok {
			n := &Normalization{
				Max:        &amount,
				Currency:   currency,
				Period:     period,
				Confidence: 1.0,
				Source:     SourceRule,
			}
			// "Up to X" is a ceiling only; a bare figure is a point value.
			if !upToRe.MatchString(text) {
				lo := amount
				n.Min = &lo
			}
			return n, true
		}
	}

	return nil, false
}

// HasDigits reports whether the text contains anything numeric at all.
// Clearly non-numeric text never reaches a paid extraction call.
func HasDigits(text string) bool {
	return strings.ContainsAny(text, "0123456789")
}

func parseAmount(num, kSuffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	if kSuffix != "" {
		v *= 1000
	}
	return v, true
}

func detectPeriod(text string) Period {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "year", "annum", "annual", "/yr", "p.a.", "yearly"):
		return PeriodYear
	case containsAny(t, "month", "/mo"):
		return PeriodMonth
	case containsAny(t, "hour", "/hr", "hourly"):
		return PeriodHour
	default:
		return PeriodUnknown
	}
}

func containsAny(text string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
