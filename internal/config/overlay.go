package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// OverlayHolder keeps the operator-editable default overrides loaded from
// settings.yml. Reloads are picked up without a restart.
type OverlayHolder struct {
	current atomic.Value // holds map[string]string
}

// NewOverlayHolder reads settings.yml from the configured path or the usual
// locations. A missing file yields an empty overlay.
func NewOverlayHolder(cfg Config, log *zap.Logger) (*OverlayHolder, error) {
	log = log.Named("config.overlay")
	v := viper.New()

	v.SetConfigName("settings")
	v.SetConfigType("yml")
	if cfg.SettingsOverlayPath != "" {
		v.SetConfigFile(cfg.SettingsOverlayPath)
	}
	v.AddConfigPath("/etc/workhub")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WORKHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &OverlayHolder{}
	holder.current.Store(map[string]string{})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return holder, nil
		}
		if cfg.SettingsOverlayPath == "" {
			return nil, err
		}
		// explicit path that does not exist yet; watch nothing
		return holder, nil
	}

	holder.current.Store(readOverlay(v))

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		holder.current.Store(readOverlay(v))
		log.Info("settings overlay reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticOverlay builds a holder from fixed values.
func NewStaticOverlay(values map[string]string) *OverlayHolder {
	holder := &OverlayHolder{}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	holder.current.Store(copied)
	return holder
}

// Get returns the current overlay values. Callers must not mutate the map.
func (h *OverlayHolder) Get() map[string]string {
	if h == nil {
		return nil
	}
	values, _ := h.current.Load().(map[string]string)
	return values
}

func readOverlay(v *viper.Viper) map[string]string {
	raw := v.GetStringMapString("defaults")
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		out[key] = value
	}
	return out
}
