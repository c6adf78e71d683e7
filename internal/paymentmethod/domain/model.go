package domain

import "strings"

// Config is the typed projection of one method's stored keys.
type Config struct {
	Method  string            `json:"method"`
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Fields  map[string]string `json:"fields"`
}

// Masked hides secret values for display.
func (c Config) Masked() Config {
	d, ok := Lookup(c.Method)
	if !ok {
		return c
	}
	fields := make(map[string]string, len(c.Fields))
	for key, value := range c.Fields {
		if f, ok := d.Field(key); ok && f.Secret && value != "" {
			value = "********"
		}
		fields[key] = value
	}
	c.Fields = fields
	return c
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidationError rejects a write that would enable an incomplete method.
type ValidationError struct {
	Method string
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid_payment_config: " + strings.Join(e.Errors, "; ")
}

type UpdateConfigRequest struct {
	Enabled         *bool             `json:"enabled"`
	Fields          map[string]string `json:"fields"`
	IgnoreWorkspace bool              `json:"ignore_workspace"`
}

// IsEnabledValue reports whether a stored flag means on: "1" or boolean true.
func IsEnabledValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		return true
	default:
		return false
	}
}
