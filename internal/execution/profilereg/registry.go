// Package profilereg loads per-symbol execution profiles (slice counts
// and intervals for TWAP/VWAP schedules) from a YAML file and keeps
// them hot-reloaded while the engine runs.
package profilereg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"alphatick/internal/execution"
	"alphatick/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Profile describes one symbol's slicing parameters. Zero values fall
// through to the scheduler's size-based auto-pick.
type Profile struct {
	Symbol           string `yaml:"symbol"`
	TWAPSlices       int    `yaml:"twap_slices"`
	TWAPIntervalSecs int    `yaml:"twap_interval_secs"`
	VWAPSlices       int    `yaml:"vwap_slices"`
	VWAPIntervalSecs int    `yaml:"vwap_interval_secs"`
}

// FileConfig maps the profiles file.
type FileConfig struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Snapshot is an immutable view of the loaded profiles.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Profiles map[string]Profile
}

// Registry watches the profiles file and serves the latest snapshot.
// It implements execution.ProfileProvider.
type Registry struct {
	path string
	v    *viper.Viper

	mu       sync.RWMutex
	snapshot Snapshot
}

var profileSchema = mustCompileSchema(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"twap_slices":        map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 20},
		"twap_interval_secs": map[string]interface{}{"type": "integer", "minimum": 0},
		"vwap_slices":        map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 30},
		"vwap_interval_secs": map[string]interface{}{"type": "integer", "minimum": 0},
	},
})

// NewRegistry reads the profiles file and starts watching it for
// changes.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("profile registry requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read execution profiles failed: %w", err)
	}
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("execution profile reload failed: %v", err)
		}
	})
	v.WatchConfig()
	return r, nil
}

// Snapshot returns the current profile set.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

// Profile returns the profile for a symbol.
func (r *Registry) Profile(symbol string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.snapshot.Profiles[strings.ToUpper(strings.TrimSpace(symbol))]
	return p, ok
}

// TWAPProfile satisfies execution.ProfileProvider.
func (r *Registry) TWAPProfile(symbol string) execution.TWAPConfig {
	p, ok := r.Profile(symbol)
	if !ok {
		return execution.TWAPConfig{}
	}
	return execution.TWAPConfig{
		Slices:   p.TWAPSlices,
		Interval: time.Duration(p.TWAPIntervalSecs) * time.Second,
	}
}

// VWAPProfile satisfies execution.ProfileProvider.
func (r *Registry) VWAPProfile(symbol string) execution.VWAPConfig {
	p, ok := r.Profile(symbol)
	if !ok {
		return execution.VWAPConfig{}
	}
	return execution.VWAPConfig{
		Slices:   p.VWAPSlices,
		Interval: time.Duration(p.VWAPIntervalSecs) * time.Second,
	}
}

func (r *Registry) reload() error {
	cfg, err := readProfileFile(r.path)
	if err != nil {
		return err
	}
	profiles := make(map[string]Profile, len(cfg.Profiles))
	for name, p := range cfg.Profiles {
		symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
		if symbol == "" {
			symbol = strings.ToUpper(strings.TrimSpace(name))
		}
		if err := validateProfile(p); err != nil {
			logger.Errorf("execution profile %s rejected: %v", symbol, err)
			continue
		}
		p.Symbol = symbol
		profiles[symbol] = p
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Profiles: profiles,
	}
	r.mu.Unlock()
	logger.Infof("Execution profile registry loaded %d profiles from %s", len(profiles), filepath.Base(r.path))
	return nil
}

func validateProfile(p Profile) error {
	doc := map[string]interface{}{
		"twap_slices":        float64(p.TWAPSlices),
		"twap_interval_secs": float64(p.TWAPIntervalSecs),
		"vwap_slices":        float64(p.VWAPSlices),
		"vwap_interval_secs": float64(p.VWAPIntervalSecs),
	}
	return profileSchema.Validate(doc)
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := Snapshot{
		Version:  src.Version,
		LoadedAt: src.LoadedAt,
		Profiles: make(map[string]Profile, len(src.Profiles)),
	}
	for id, p := range src.Profiles {
		dst.Profiles[id] = p
	}
	return dst
}

func readProfileFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read execution profiles failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse execution profiles failed: %w", err)
	}
	return cfg, nil
}

func mustCompileSchema(data map[string]interface{}) *jsonschema.Schema {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile.json", strings.NewReader(string(raw))); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile("profile.json")
	if err != nil {
		panic(err)
	}
	return schema
}
