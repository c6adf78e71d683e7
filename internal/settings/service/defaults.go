package service

import (
	"strings"

	"github.com/smallbiznis/workhub/internal/config"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
)

type defaultsProvider struct {
	overlay *config.OverlayHolder
}

// NewDefaultsProvider layers the settings.yml overlay over the static table.
// Overlay keys that are not in the static table, or whose values do not
// parse as the static type, are ignored.
func NewDefaultsProvider(overlay *config.OverlayHolder) settingsdomain.DefaultsProvider {
	return &defaultsProvider{overlay: overlay}
}

func (p *defaultsProvider) Default(key string) (string, bool) {
	static, ok := settingsdomain.Defaults()[key]
	if !ok {
		return "", false
	}
	if value, ok := p.override(p.overlay.Get(), key); ok {
		return value, true
	}
	return settingsdomain.Encode(static), true
}

func (p *defaultsProvider) All() map[string]string {
	overlay := p.overlay.Get()
	out := make(map[string]string)
	for key, value := range settingsdomain.Defaults() {
		if override, ok := p.override(overlay, key); ok {
			out[key] = override
			continue
		}
		out[key] = settingsdomain.Encode(value)
	}
	return out
}

// override reads key from the overlay, whose keys viper lower-cases.
func (p *defaultsProvider) override(overlay map[string]string, key string) (string, bool) {
	raw, ok := overlay[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return settingsdomain.Coerce(key, raw)
}
