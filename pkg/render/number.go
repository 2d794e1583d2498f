package render

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/aibee/wizard/pkg/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber groups thousands in numeric-looking text.
// Integers are grouped ("5000" -> "5,000"); values with a decimal point get
// exactly two decimals ("1234.5" -> "1,234.50"). Existing separators are
// ignored. Anything else is returned unchanged.
func FormatNumber(text string) string {
	if !numericLooking(text) {
		return text
	}
	clean := strings.ReplaceAll(text, ",", "")
	if strings.Contains(clean, ".") {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return text
		}
		return formatDecimal(f)
	}
	if grouped, ok := groupInteger(clean); ok {
		return grouped
	}
	return text
}

// groupInteger groups an integer literal of any magnitude without going through float64.
func groupInteger(lit string) (string, bool) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(lit), 10)
	if !ok {
		return "", false
	}
	if n.IsInt64() {
		return printer.Sprintf("%d", n.Int64()), true
	}

	digits := n.String()
	sign := ""
	if digits[0] == '-' {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	b.WriteString(sign)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

// formatValue renders a scalar cell value, grouping numbers.
func formatValue(v domain.Value) string {
	switch v.Kind() {
	case domain.KindNull:
		return ""
	case domain.KindNumber:
		if lit, ok := v.NumberLiteral(); ok {
			if grouped, ok := groupInteger(lit); ok {
				return grouped
			}
		}
		f, ok := v.Float64()
		if !ok {
			return v.Text()
		}
		return formatDecimal(f)
	case domain.KindString:
		s, _ := v.Str()
		return FormatNumber(s)
	}
	return v.Text()
}

func formatDecimal(f float64) string {
	return printer.Sprintf("%.2f", f)
}

// numericLooking reports whether text is made of digits once '.' and ',' are removed.
func numericLooking(text string) bool {
	digits := 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == ',':
		default:
			return false
		}
	}
	return digits > 0
}

// parseAmount reads a summable cell value, stripping grouping separators.
// integral reports whether the literal had no fractional part.
func parseAmount(v domain.Value) (amount float64, integral bool, ok bool) {
	var text string
	switch v.Kind() {
	case domain.KindNumber:
		text, _ = v.NumberLiteral()
	case domain.KindString:
		text, _ = v.Str()
	default:
		return 0, false, false
	}
	clean := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, false
	}
	return f, !strings.ContainsAny(clean, ".eE"), true
}

// formatTotal formats a computed sum. Sums of integers stay integers.
func formatTotal(sum float64, integral bool) string {
	if integral && sum == math.Trunc(sum) && math.Abs(sum) < 1<<53 {
		return printer.Sprintf("%d", int64(sum))
	}
	return formatDecimal(sum)
}
