package domain

import (
	"strconv"
	"strings"
)

// Value is a typed default: string, bool or int.
type Value any

var defaults = map[string]Value{
	// locale
	"defaultLanguage": "en",
	"dateFormat":      "Y-m-d",
	"timeFormat":      "g:i A",
	"defaultTimezone": "UTC",

	// branding
	"logo_dark":       "logo_dark.png",
	"logo_light":      "logo_light.png",
	"favicon":         "favicon.png",
	"title_text":      "WorkHub",
	"footer_text":     "Copyright WorkHub",
	"site_rtl":        false,
	"color":           "theme-1",
	"color_flag":      false,
	"cust_darklayout": false,
	"cust_theme_bg":   true,

	// storage
	"storage_setting":               "local",
	"local_storage_validation":      "jpg,jpeg,png,pdf,xlsx,csv",
	"local_storage_max_upload_size": 2048000,

	// currency
	"defaultCurrency":               "USD",
	"currencySymbol":                "$",
	"site_currency_symbol_position": "pre",
	"decimal_format":                2,
	"thousand_separator":            ",",
	"decimal_separator":             ".",

	"invoice_prefix": "#INVO",
}

// PresentationKeys are the only keys copied from the operator to a new
// tenant. Currency, storage and payment keys stay tenant-owned.
var PresentationKeys = []string{
	"defaultLanguage",
	"dateFormat",
	"timeFormat",
	"defaultTimezone",
	"logo_dark",
	"logo_light",
	"favicon",
	"title_text",
	"footer_text",
	"site_rtl",
	"color",
	"color_flag",
	"cust_darklayout",
	"cust_theme_bg",
}

// Defaults returns a copy of the static default table.
func Defaults() map[string]Value {
	out := make(map[string]Value, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}

// Encode renders a value the way it is stored. Booleans become "1"/"0".
func Encode(v Value) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

// Coerce converts an override for key to the stored form of that key's
// static type. Unknown keys and values that do not parse are rejected.
func Coerce(key, raw string) (string, bool) {
	static, ok := defaults[key]
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	switch static.(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", false
		}
		return Encode(b), true
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", false
		}
		return Encode(n), true
	default:
		return raw, true
	}
}

// DefaultsProvider serves the effective default table, static values
// possibly overridden by the operator's overlay file.
type DefaultsProvider interface {
	Default(key string) (string, bool)
	All() map[string]string
}
