package news

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const espnNewsURLFormat = "http://site.api.espn.com/apis/site/v2/sports/soccer/%s/news"

var defaultLeagues = []struct {
	code string
	name string
}{
	{"eng.1", "Premier League"},
	{"esp.1", "La Liga"},
	{"ger.1", "Bundesliga"},
	{"ita.1", "Serie A"},
}

// DefaultConfigs returns the ESPN league sources used when no source files exist.
func DefaultConfigs() []*Config {
	configs := make([]*Config, 0, len(defaultLeagues))
	for _, league := range defaultLeagues {
		configs = append(configs, &Config{
			Name:   league.code,
			Type:   SourceTypeESPN,
			URL:    fmt.Sprintf(espnNewsURLFormat, league.code),
			Label:  "ESPN",
			League: league.name,
			Settings: ConfigSettings{
				Enabled: true,
				Timeout: 30,
			},
		})
	}
	return configs
}

type ConfigCache struct {
	sourcesDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewConfigCache(sourcesDir string) *ConfigCache {
	return &ConfigCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Config),
	}
}

// Run loads every *.yml file of the sources directory. When the directory is
// missing or holds no source files the default leagues are used.
func (cc *ConfigCache) Run() error {
	files, err := cc.sourceFiles()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		slog.Debug("No source files found, using default leagues", "dir", cc.sourcesDir)
		cc.mu.Lock()
		defer cc.mu.Unlock()
		for _, config := range DefaultConfigs() {
			cc.cache[config.Name] = config
		}
		return nil
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		sourceName := strings.TrimSuffix(fileName, ".yml")

		config, err := cc.LoadConfig(sourceName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "source", sourceName, "type", config.Type, "enabled", config.Settings.Enabled)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(sourceName string) (*Config, error) {
	configFile := cc.getConfigFilePath(sourceName)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = sourceName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(sourceName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[sourceName]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", sourceName)
	}
	return config, nil
}

// GetEnabledConfigs returns enabled sources ordered by name.
func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	var enabled []*Config
	for _, v := range cc.cache {
		if v.Settings.Enabled {
			enabled = append(enabled, v)
		}
	}

	slices.SortFunc(enabled, func(a, b *Config) int {
		return strings.Compare(a.Name, b.Name)
	})

	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) sourceFiles() ([]string, error) {
	if _, err := os.Stat(cc.sourcesDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}

	return files, nil
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Type == "" {
		config.Type = SourceTypeESPN
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	requiredFields := map[string]string{
		"source name": config.Name,
		"source URL":  config.URL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	if config.Type != SourceTypeESPN && config.Type != SourceTypeRSS {
		return fmt.Errorf("unsupported source type: %s", config.Type)
	}

	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	for _, filter := range config.Filters {
		if !slices.Contains(filterFields, filter.Field) {
			return fmt.Errorf("unsupported filter field: %s", filter.Field)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(sourceName string) string {
	return filepath.Join(cc.sourcesDir, sourceName+".yml")
}
