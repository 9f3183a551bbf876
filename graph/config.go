package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optimizer configuration surface a graph exposes.
// Absent options are zero, which disables the corresponding feature.
type Config struct {
	// MultiKeyFetchEnabled tags rewritten steps for batched multi-key reads
	MultiKeyFetchEnabled bool `yaml:"multi-key-fetch"`

	// EagerPropertyPrefetchEnabled allows the batching advisor to tag
	// vertex-producing steps for property prefetch
	EagerPropertyPrefetchEnabled bool `yaml:"eager-property-prefetch"`

	// VertexCacheSizeHint bounds one prefetch batch (0 = executor default)
	VertexCacheSizeHint uint `yaml:"vertex-cache-size"`
}

// DefaultConfig returns the configuration of a freshly opened graph
func DefaultConfig() Config {
	return Config{
		MultiKeyFetchEnabled:         false,
		EagerPropertyPrefetchEnabled: false,
		VertexCacheSizeHint:          20000,
	}
}

// ParseConfig decodes a YAML document. Keys that are not present keep their
// zero value; unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if len(data) == 0 {
		return cfg, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := doc.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := checkConfigKeys(&doc); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// YAML renders the config as a YAML document
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

var configKeys = map[string]bool{
	"multi-key-fetch":         true,
	"eager-property-prefetch": true,
	"vertex-cache-size":       true,
}

func checkConfigKeys(doc *yaml.Node) error {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if !configKeys[key.Value] {
			return fmt.Errorf("unknown config option %q at line %d", key.Value, key.Line)
		}
	}
	return nil
}
