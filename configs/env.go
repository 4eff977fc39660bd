package configs

import (
	"github.com/spf13/viper"
)

type EnvConfig struct {
	ApplicationName string
	MessagesPath    string
}

var Env *EnvConfig

func init() {
	v := viper.New()
	v.AutomaticEnv()

	Env = &EnvConfig{
		ApplicationName: getStringOrDefault(v, "APPLICATION_NAME", "sqs-output"),
		MessagesPath:    v.GetString("MESSAGES_FILE_PATH"),
	}
}

func getStringOrDefault(v *viper.Viper, key, defaultValue string) string {
	value := v.GetString(key)
	if value == "" {
		return defaultValue
	}
	return value
}
