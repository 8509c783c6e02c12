package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"alphatick/internal/logger"
)

// Watch re-runs a full Load whenever the primary config file changes
// and hands the validated result to onReload. A reload that fails to
// parse or validate is logged and dropped, leaving the running config
// untouched. Edits to included files take effect the next time the
// primary file is written.
func Watch(path string, onReload func(*Config)) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config watch requires a path")
	}
	if onReload == nil {
		return fmt.Errorf("config watch requires a callback")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watching config failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := Load(path)
		if err != nil {
			logger.Errorf("config reload rejected: %v", err)
			return
		}
		logger.Infof("config reloaded from %s", filepath.Base(path))
		onReload(cfg)
	})
	v.WatchConfig()
	return nil
}
