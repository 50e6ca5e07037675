package config

import (
	"strings"

	"github.com/spf13/viper"
)

const environmentVariablePrefix = "DIALSIGHT"

// ApplyEnvironmentOverrides layers DIALSIGHT_* environment variables on top
// of the loaded configuration. Supported keys: DIALSIGHT_API_ENDPOINT,
// DIALSIGHT_API_MODEL, DIALSIGHT_LOGGING_LEVEL, DIALSIGHT_DEFAULTS_WORKERS.
// The credential itself is read separately via ResolveToken.
func ApplyEnvironmentOverrides(root *Root) {
	environment := viper.New()
	environment.SetEnvPrefix(environmentVariablePrefix)
	environment.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	environment.AutomaticEnv()

	if endpoint := environment.GetString("api.endpoint"); endpoint != "" {
		root.API.Endpoint = endpoint
	}
	if model := environment.GetString("api.model"); model != "" {
		root.API.Model = model
	}
	if level := environment.GetString("logging.level"); level != "" {
		root.Logging.Level = level
	}
	if workers := environment.GetInt("defaults.workers"); workers > 0 {
		root.Defaults.Workers = workers
	}
}
