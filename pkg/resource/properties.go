package resource

import (
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is used when PROPERTIES_FILE_PATH is not set
const DefaultPath = "configs/application.yml"

var (
	mu         sync.RWMutex
	properties = viper.New()
	envPattern = regexp.MustCompile(`^\$\{([^:}]+)(?::([^}]*))?}$`)
)

// Path returns the properties file location, honoring PROPERTIES_FILE_PATH
func Path() string {
	if value, ok := os.LookupEnv("PROPERTIES_FILE_PATH"); ok && value != "" {
		return value
	}
	return DefaultPath
}

// Load reads application properties from a YAML file, replacing any previously loaded ones.
// String values written as ${ENV} or ${ENV:default} are resolved against the environment.
func Load(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("fail to read properties %s: %w", filepath, err)
	}

	resolved := make(map[string]any)
	parsePropertiesMap("", v.AllSettings(), resolved)
	for key, value := range resolved {
		v.Set(key, value)
	}

	mu.Lock()
	defer mu.Unlock()
	properties = v
	return nil
}

// parsePropertiesMap reads recursively the YAML file
func parsePropertiesMap(prefix string, data map[string]any, result map[string]any) {
	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			if resolved, ok := resolveEnvVariable(v); ok {
				result[fullKey] = resolved
			}
		case map[string]any:
			parsePropertiesMap(fullKey, v, result)
		}
	}
}

// resolveEnvVariable resolves ${ENV:default} patterns; ok is false for plain strings
func resolveEnvVariable(value string) (string, bool) {
	matches := envPattern.FindStringSubmatch(value)
	if len(matches) == 0 {
		return "", false
	}

	if envValue, exists := os.LookupEnv(matches[1]); exists {
		return envValue, true
	}
	return matches[2], true
}

func current() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	return properties
}

// SetDefault registers a fallback value for a key
func SetDefault(key string, value any) {
	current().SetDefault(key, value)
}

// IsSet reports whether a key has a value, including defaults
func IsSet(key string) bool {
	return current().IsSet(key)
}

func Get(key string) any {
	return current().Get(key)
}

func GetString(key string) string {
	return current().GetString(key)
}

func GetBool(key string) bool {
	return current().GetBool(key)
}

func GetDuration(key string) time.Duration {
	return current().GetDuration(key)
}

func GetInt(key string) int {
	return current().GetInt(key)
}

func GetInt32(key string) int32 {
	return current().GetInt32(key)
}

func GetSizeInBytes(key string) uint {
	return current().GetSizeInBytes(key)
}
