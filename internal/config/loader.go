package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/vinecrawl/vinecrawl/internal/types"
)

// Loader reads site and product configurations from YAML files.
// Configs are looked up by name under <dir>/sites and <dir>/products.
type Loader struct {
	dir   string
	cache map[string]any
}

// NewLoader creates a Loader rooted at the given config directory. An empty
// dir falls back to ./configs, then ~/.vinecrawl.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, cache: make(map[string]any)}
}

// Site loads a site configuration by name (e.g. "totalwine").
func (l *Loader) Site(name string) (*SiteConfig, error) {
	if cached, ok := l.cache["site_"+name]; ok {
		return cached.(*SiteConfig), nil
	}

	cfg := DefaultSiteConfig()
	if err := l.unmarshal("sites", name, cfg); err != nil {
		return nil, err
	}
	if err := ValidateSite(cfg); err != nil {
		return nil, &types.ConfigError{Name: name, Err: err}
	}

	l.cache["site_"+name] = cfg
	return cfg, nil
}

// Product loads a product-type configuration by name (e.g. "wine").
func (l *Loader) Product(name string) (*ProductConfig, error) {
	if cached, ok := l.cache["product_"+name]; ok {
		return cached.(*ProductConfig), nil
	}

	cfg := &ProductConfig{}
	if err := l.unmarshal("products", name, cfg); err != nil {
		return nil, err
	}
	if err := ValidateProduct(cfg); err != nil {
		return nil, &types.ConfigError{Name: name, Err: err}
	}

	l.cache["product_"+name] = cfg
	return cfg, nil
}

// AvailableSites returns the names of all site configurations on disk.
func (l *Loader) AvailableSites() []string {
	return l.available("sites")
}

// AvailableProducts returns the names of all product configurations on disk.
func (l *Loader) AvailableProducts() []string {
	return l.available("products")
}

// ClearCache drops all cached configurations.
func (l *Loader) ClearCache() {
	l.cache = make(map[string]any)
}

func (l *Loader) available(kind string) []string {
	var names []string
	for _, dir := range l.searchDirs() {
		entries, err := os.ReadDir(filepath.Join(dir, kind))
		if err != nil {
			continue
		}
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if ext == ".yaml" || ext == ".yml" {
				names = append(names, strings.TrimSuffix(e.Name(), ext))
			}
		}
	}
	return names
}

// unmarshal reads <dir>/<kind>/<name>.yaml into cfg, with environment
// variable substitution applied to all string values.
func (l *Loader) unmarshal(kind, name string, cfg any) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(name)
	for _, dir := range l.searchDirs() {
		v.AddConfigPath(filepath.Join(dir, kind))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return &types.ConfigError{Name: name, Err: fmt.Errorf("%s config not found", kind)}
		}
		return &types.ConfigError{Name: name, Err: err}
	}

	settings := substituteEnv(v.AllSettings())

	sv := viper.New()
	if err := sv.MergeConfigMap(settings.(map[string]any)); err != nil {
		return &types.ConfigError{Name: name, Err: err}
	}
	if err := sv.Unmarshal(cfg); err != nil {
		return &types.ConfigError{Name: name, Err: fmt.Errorf("unmarshal: %w", err)}
	}
	return nil
}

func (l *Loader) searchDirs() []string {
	if l.dir != "" {
		return []string{l.dir}
	}
	dirs := []string{"./configs"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".vinecrawl"))
	}
	return dirs
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Z_][A-Z0-9_]*)`)

// substituteEnv recursively replaces ${VAR} and $VAR references in string
// values. Unset variables are left as-is.
func substituteEnv(value any) any {
	switch val := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = substituteEnv(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = substituteEnv(v)
		}
		return out
	case string:
		return envVarPattern.ReplaceAllStringFunc(val, func(match string) string {
			name := strings.TrimPrefix(match, "$")
			name = strings.TrimPrefix(name, "{")
			name = strings.TrimSuffix(name, "}")
			if env, ok := os.LookupEnv(name); ok {
				return env
			}
			return match
		})
	default:
		return value
	}
}
