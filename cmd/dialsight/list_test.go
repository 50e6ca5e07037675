package dialsight

import (
	"bytes"
	"strings"
	"testing"
)

func TestListTemplatesCommandPrintsRegisteredSets(t *testing.T) {
	globals.configPath = ""
	command := newListTemplatesCommand()
	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetErr(output)

	if executeErr := command.Execute(); executeErr != nil {
		t.Fatalf("execute: %v", executeErr)
	}
	printed := output.String()
	for _, name := range []string{"washer_knob", "generic_visual", "rotary_bbox"} {
		if !strings.Contains(printed, name) {
			t.Fatalf("output missing %q: %q", name, printed)
		}
	}
}
