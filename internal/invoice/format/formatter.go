package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)
)

const DefaultInvoiceNumberTemplate = "{PREFIX}{SEQ5}"

// FormatInvoiceNumber formats a human-readable invoice number from a
// template, the tenant's invoice prefix, the issue time and a sequence.
func FormatInvoiceNumber(
	template string,
	prefix string,
	issuedAt time.Time,
	seq int64,
) (string, error) {

	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}

	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := strings.ReplaceAll(template, "{PREFIX}", strings.TrimSpace(prefix))

	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))

	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}

		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}

		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}

	return out, nil
}

// Currency holds the tenant's money presentation settings.
type Currency struct {
	Symbol            string
	SymbolPosition    string // "pre" or "post"
	Decimals          int32
	ThousandSeparator string
	DecimalSeparator  string
}

// CurrencyFromSettings reads the currency keys of a resolved settings map.
func CurrencyFromSettings(values map[string]string) Currency {
	c := Currency{
		Symbol:            values["currencySymbol"],
		SymbolPosition:    values["site_currency_symbol_position"],
		Decimals:          2,
		ThousandSeparator: values["thousand_separator"],
		DecimalSeparator:  values["decimal_separator"],
	}
	if n, err := strconv.Atoi(strings.TrimSpace(values["decimal_format"])); err == nil && n >= 0 && n <= 6 {
		c.Decimals = int32(n)
	}
	if c.DecimalSeparator == "" {
		c.DecimalSeparator = "."
	}
	return c
}

// Money renders amount with grouping, separators and symbol placement.
func (c Currency) Money(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(c.Decimals)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(c.ThousandSeparator)
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += c.DecimalSeparator + frac
	}
	if c.SymbolPosition == "post" {
		out += c.Symbol
	} else {
		out = c.Symbol + out
	}
	if amount.IsNegative() {
		out = "-" + out
	}
	return out
}

var dateTokens = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'n': "1",
	'd': "02",
	'j': "2",
	'M': "Jan",
	'F': "January",
	'D': "Mon",
	'l': "Monday",
	'H': "15",
	'G': "15",
	'h': "03",
	'g': "3",
	'i': "04",
	's': "05",
	'A': "PM",
	'a': "pm",
}

// Date formats t with a dateFormat setting such as "Y-m-d" or "d/m/Y".
// Unknown letters are copied through.
func Date(t time.Time, pattern string) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = "Y-m-d"
	}
	var layout strings.Builder
	for i := 0; i < len(pattern); i++ {
		if tok, ok := dateTokens[pattern[i]]; ok {
			layout.WriteString(tok)
			continue
		}
		layout.WriteByte(pattern[i])
	}
	return t.Format(layout.String())
}
