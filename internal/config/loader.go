package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Environment variables read by modgraph.
const (
	envPrefix = "MODGRAPH"

	EnvConfig     = "MODGRAPH_CONFIG"
	EnvProject    = "MODGRAPH_PROJECT"
	EnvDescriptor = "MODGRAPH_DESCRIPTOR"
)

// Loader reads the config file and the environment overrides that have no
// command-line flag. Keys with a flag (descriptor, project) are resolved by
// ResolveAll so that their source can be reported.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return NewLoaderFs(afero.NewOsFs())
}

// NewLoaderFs creates a loader reading config files from fs.
func NewLoaderFs(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// newViper returns a fresh viper instance so that successive loads never
// see each other's values.
func (l *Loader) newViper() *viper.Viper {
	v := viper.New()
	v.SetFs(l.fs)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("watch.debounce")
	_ = v.BindEnv("log.timestamps")
	_ = v.BindEnv("ignore")

	return v
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// A missing file is not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	v := l.newViper()
	v.SetConfigFile(expandedPath)
	if filepath.Ext(expandedPath) == "" {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w", expandedPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	return cfg.WithDefaults(), nil
}
