package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	emptyEndpointErrorMessage                = "config.api.endpoint is empty"
	emptyModelErrorMessage                   = "config.api.model is empty"
	rootConfigurationEmptyContentErrorFormat = "root configuration %s is empty"
	rootConfigurationUnmarshalErrorFormat    = "unmarshal root configuration %s: %w"

	defaultTokenEnvironmentVariableName = "DIALSIGHT_TOKEN"
	defaultMaxTokens                    = 4096
	defaultTimeoutSeconds               = 120
	defaultMaxRetries                   = 3
	defaultMaxValidationRetries         = 2
	defaultWorkerCount                  = 4
	defaultChunkSize                    = 10
)

type Root struct {
	API       API       `yaml:"api"`
	Logging   Logging   `yaml:"logging"`
	Defaults  Defaults  `yaml:"defaults"`
	Output    Output    `yaml:"output"`
	Templates Templates `yaml:"templates"`
}

type API struct {
	Endpoint string `yaml:"endpoint"`
	TokenEnv string `yaml:"token_env"`
	Model    string `yaml:"model"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Defaults struct {
	Question       string `yaml:"question"`
	Task           string `yaml:"task"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	// MaxValidationRetries distinguishes "not set" from an explicit zero;
	// zero means a single validation attempt with no retries.
	MaxValidationRetries *int `yaml:"max_validation_retries"`
	Workers              int  `yaml:"workers"`
}

type Output struct {
	SaveAnnotations bool `yaml:"save_annotations"`
	ChunkSize       int  `yaml:"chunk_size"`
}

type Templates struct {
	// Path points to an optional YAML file of template set overrides.
	Path string `yaml:"path"`
}

// LoadRoot parses the provided configuration source, validates required
// fields and fills unset numeric fields with their defaults.
func LoadRoot(source RootConfigurationSource) (Root, error) {
	if len(source.Content) == 0 {
		return Root{}, fmt.Errorf(rootConfigurationEmptyContentErrorFormat, source.Reference)
	}

	var rootConfiguration Root
	if err := yaml.Unmarshal(source.Content, &rootConfiguration); err != nil {
		return Root{}, fmt.Errorf(rootConfigurationUnmarshalErrorFormat, source.Reference, err)
	}
	rootConfiguration.applyDefaults()

	if rootConfiguration.API.Endpoint == "" {
		return Root{}, errors.New(emptyEndpointErrorMessage)
	}
	if rootConfiguration.API.Model == "" {
		return Root{}, errors.New(emptyModelErrorMessage)
	}
	return rootConfiguration, nil
}

func (root *Root) applyDefaults() {
	if root.API.TokenEnv == "" {
		root.API.TokenEnv = defaultTokenEnvironmentVariableName
	}
	if root.Defaults.MaxTokens <= 0 {
		root.Defaults.MaxTokens = defaultMaxTokens
	}
	if root.Defaults.TimeoutSeconds <= 0 {
		root.Defaults.TimeoutSeconds = defaultTimeoutSeconds
	}
	if root.Defaults.MaxRetries <= 0 {
		root.Defaults.MaxRetries = defaultMaxRetries
	}
	if root.Defaults.MaxValidationRetries == nil {
		retries := defaultMaxValidationRetries
		root.Defaults.MaxValidationRetries = &retries
	}
	if root.Defaults.Workers <= 0 {
		root.Defaults.Workers = defaultWorkerCount
	}
	if root.Output.ChunkSize <= 0 {
		root.Output.ChunkSize = defaultChunkSize
	}
}

// ValidationRetries returns the configured validation retry bound.
func (root Root) ValidationRetries() int {
	if root.Defaults.MaxValidationRetries == nil {
		return defaultMaxValidationRetries
	}
	return *root.Defaults.MaxValidationRetries
}

// ResolveToken reads the API credential from the configured environment
// variable. The token never appears in configuration files or flags.
func (root Root) ResolveToken() string {
	return os.Getenv(root.API.TokenEnv)
}
