package dialsight

import (
	"fmt"
	"strings"
)

// boolChoiceValue lets a boolean flag accept both bare form (--use-bbox) and
// explicit form (--use-bbox=false).
type boolChoiceValue struct {
	target *bool
}

func newBoolChoiceValue(target *bool) *boolChoiceValue {
	return &boolChoiceValue{target: target}
}

func (value *boolChoiceValue) String() string {
	if value.target == nil {
		return "false"
	}
	return fmt.Sprintf("%t", *value.target)
}

func (value *boolChoiceValue) Set(raw string) error {
	parsed, parseErr := parseBoolChoice(raw)
	if parseErr != nil {
		return parseErr
	}
	*value.target = parsed
	return nil
}

func (value *boolChoiceValue) Type() string {
	return "bool"
}

func parseBoolChoice(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "true", "t", "1", "yes", "y", "on":
		return true, nil
	case "false", "f", "0", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value %q", raw)
}
