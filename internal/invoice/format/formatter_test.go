package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	at := time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)

	got, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, "#INVO", at, 12)
	require.NoError(t, err)
	assert.Equal(t, "#INVO00012", got)

	got, err = FormatInvoiceNumber("{PREFIX}-{YYYY}{MM}{DD}-{SEQ}", "INV", at, 3)
	require.NoError(t, err)
	assert.Equal(t, "INV-20250207-3", got)

	_, err = FormatInvoiceNumber(DefaultInvoiceNumberTemplate, "#INVO", at, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("{PREFIX}{BOGUS}", "X", at, 1)
	assert.Error(t, err)
}

func TestCurrencyMoney(t *testing.T) {
	usd := CurrencyFromSettings(map[string]string{
		"currencySymbol":                "$",
		"site_currency_symbol_position": "pre",
		"decimal_format":                "2",
		"thousand_separator":            ",",
		"decimal_separator":             ".",
	})
	assert.Equal(t, "$1,234,567.50", usd.Money(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "$83.00", usd.Money(decimal.NewFromInt(83)))
	assert.Equal(t, "-$5.00", usd.Money(decimal.NewFromInt(-5)))

	eur := CurrencyFromSettings(map[string]string{
		"currencySymbol":                "€",
		"site_currency_symbol_position": "post",
		"decimal_format":                "0",
		"thousand_separator":            ".",
	})
	assert.Equal(t, "1.000€", eur.Money(decimal.NewFromInt(1000)))
}

func TestDate(t *testing.T) {
	at := time.Date(2025, 3, 4, 15, 7, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-04", Date(at, "Y-m-d"))
	assert.Equal(t, "04/03/2025", Date(at, "d/m/Y"))
	assert.Equal(t, "Mar 4, 2025", Date(at, "M j, Y"))
	assert.Equal(t, "2025-03-04", Date(at, ""))
}
