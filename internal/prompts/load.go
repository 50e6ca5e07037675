package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type overrideFile struct {
	Templates map[string]Set `yaml:"templates"`
}

// LoadOverridesFromFile reads a YAML file of template sets and registers each
// entry, replacing built-in sets of the same name. Sets must carry all three
// stages; partial overrides are rejected to avoid mixing stage provenance.
func LoadOverridesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return LoadOverrides(data)
}

// LoadOverrides registers template sets from raw YAML.
func LoadOverrides(data []byte) error {
	var parsed overrideFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse template overrides: %w", err)
	}
	for name, set := range parsed.Templates {
		if set.Stage1 == "" || set.Stage2 == "" || set.Stage3 == "" {
			return fmt.Errorf("template set %q must define stage1, stage2 and stage3", name)
		}
		Register(name, set)
	}
	return nil
}
