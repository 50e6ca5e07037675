package dialsight

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/dialsight/internal/config"
	"github.com/temirov/dialsight/internal/prompts"
	"github.com/temirov/dialsight/internal/reasoning"
	"github.com/temirov/dialsight/internal/vlm"
)

// loadRootConfiguration resolves the configuration from the search paths,
// layers environment and flag overrides, and registers any template override
// file the configuration points at.
func loadRootConfiguration() (config.Root, error) {
	loader, loaderErr := config.NewDefaultRootConfigurationLoader()
	if loaderErr != nil {
		return config.Root{}, loaderErr
	}
	source, loadErr := loader.Load(globals.configPath)
	if loadErr != nil {
		return config.Root{}, loadErr
	}
	root, parseErr := config.LoadRoot(source)
	if parseErr != nil {
		return config.Root{}, parseErr
	}
	config.ApplyEnvironmentOverrides(&root)
	applyGlobalOverrides(&root)

	if root.Templates.Path != "" {
		if overridesErr := prompts.LoadOverridesFromFile(root.Templates.Path); overridesErr != nil {
			return config.Root{}, fmt.Errorf("load template overrides: %w", overridesErr)
		}
	}
	return root, nil
}

func applyGlobalOverrides(root *config.Root) {
	if globals.model != "" {
		root.API.Model = globals.model
	}
	if globals.endpoint != "" {
		root.API.Endpoint = globals.endpoint
	}
	if globals.timeoutSeconds > 0 {
		root.Defaults.TimeoutSeconds = globals.timeoutSeconds
	}
	if globals.maxRetries > 0 {
		root.Defaults.MaxRetries = globals.maxRetries
	}
	if globals.validationRetries >= 0 {
		retries := globals.validationRetries
		root.Defaults.MaxValidationRetries = &retries
	}
}

func newLogger(root config.Root) (*zap.Logger, error) {
	loggerConfiguration := zap.NewProductionConfig()
	if root.Logging.Format == "console" {
		loggerConfiguration = zap.NewDevelopmentConfig()
	}
	if root.Logging.Level != "" {
		level, levelErr := zapcore.ParseLevel(root.Logging.Level)
		if levelErr != nil {
			return nil, fmt.Errorf("parse logging level %q: %w", root.Logging.Level, levelErr)
		}
		loggerConfiguration.Level = zap.NewAtomicLevelAt(level)
	}
	return loggerConfiguration.Build()
}

// newClient builds the inference client. The credential comes from the
// configured environment variable only.
func newClient(root config.Root, logger *zap.Logger) (vlm.Client, error) {
	token := root.ResolveToken()
	if token == "" {
		return vlm.Client{}, fmt.Errorf(missingTokenErrorFormat, root.API.TokenEnv)
	}
	return vlm.Client{
		BaseURL:   root.API.Endpoint,
		Token:     token,
		Model:     root.API.Model,
		MaxTokens: root.Defaults.MaxTokens,
		Timeout:   time.Duration(root.Defaults.TimeoutSeconds) * time.Second,
		Logger:    logger,
	}, nil
}

// resolveTemplates picks the template set for the task. When bounding boxes
// are in play and the named set has no placeholders to receive them, the
// bbox-enhanced set is used instead so the annotations are never dropped.
func resolveTemplates(task string, useBBox bool) prompts.Set {
	set := prompts.Lookup(task)
	if useBBox && !set.SupportsBBox() {
		return prompts.Lookup(prompts.TaskRotaryBBox)
	}
	return set
}

func newEngine(root config.Root, client vlm.Client, templates prompts.Set, question string, logger *zap.Logger) *reasoning.Engine {
	return &reasoning.Engine{
		Agent:                client,
		Templates:            templates,
		Question:             question,
		MaxRetriesPerCall:    root.Defaults.MaxRetries,
		MaxValidationRetries: root.ValidationRetries(),
		Logger:               logger,
	}
}
