package dialsight

import (
	"strings"
	"testing"
	"time"

	"github.com/temirov/dialsight/internal/config"
	"github.com/temirov/dialsight/internal/prompts"
)

func embeddedRoot(t *testing.T) config.Root {
	t.Helper()
	loader := config.NewRootConfigurationLoader("", "")
	source, loadErr := loader.Load("")
	if loadErr != nil {
		t.Fatalf("load embedded configuration: %v", loadErr)
	}
	root, parseErr := config.LoadRoot(source)
	if parseErr != nil {
		t.Fatalf("parse embedded configuration: %v", parseErr)
	}
	return root
}

func TestApplyGlobalOverrides(t *testing.T) {
	saved := globals
	defer func() { globals = saved }()
	globals = globalOptions{
		model:             "override-model",
		endpoint:          "https://override.test",
		timeoutSeconds:    7,
		maxRetries:        5,
		validationRetries: 0,
	}

	root := embeddedRoot(t)
	applyGlobalOverrides(&root)

	if root.API.Model != "override-model" || root.API.Endpoint != "https://override.test" {
		t.Fatalf("api overrides not applied: %+v", root.API)
	}
	if root.Defaults.TimeoutSeconds != 7 || root.Defaults.MaxRetries != 5 {
		t.Fatalf("default overrides not applied: %+v", root.Defaults)
	}
	if root.ValidationRetries() != 0 {
		t.Fatalf("explicit zero validation retries must win, got %d", root.ValidationRetries())
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	root := embeddedRoot(t)
	root.API.TokenEnv = "DIALSIGHT_TEST_ABSENT_TOKEN"

	if _, clientErr := newClient(root, nil); clientErr == nil {
		t.Fatalf("missing token must error")
	}

	t.Setenv("DIALSIGHT_TEST_ABSENT_TOKEN", "secret")
	client, clientErr := newClient(root, nil)
	if clientErr != nil {
		t.Fatalf("client with token: %v", clientErr)
	}
	if client.Token != "secret" || client.Model != root.API.Model {
		t.Fatalf("client fields = %+v", client)
	}
	if client.Timeout != time.Duration(root.Defaults.TimeoutSeconds)*time.Second {
		t.Fatalf("client timeout = %v", client.Timeout)
	}
}

func TestResolveTemplatesKeepsBBoxAnnotations(t *testing.T) {
	data := prompts.KnobData{
		KnobClose: []prompts.Annotation{
			{Label: "knob", BBox: []int{0, 0, 10, 10}},
			{Label: "Off", BBox: []int{20, 0, 30, 10}},
		},
	}

	// washer_knob has no bbox placeholders; with boxes in play the
	// bbox-capable set must be selected so the annotations survive.
	set := resolveTemplates(prompts.TaskWasherKnob, true)
	rendered := set.Stage1PromptWithBBox("which mode?", data)
	if !strings.Contains(rendered, "[20, 0, 30, 10]") {
		t.Fatalf("bbox annotations missing from stage-1 prompt: %q", rendered)
	}

	withoutBoxes := resolveTemplates(prompts.TaskWasherKnob, false)
	if withoutBoxes != prompts.Lookup(prompts.TaskWasherKnob) {
		t.Fatalf("task set must stay untouched without bbox data")
	}
	bboxTask := resolveTemplates(prompts.TaskRotaryBBox, true)
	if bboxTask != prompts.Lookup(prompts.TaskRotaryBBox) {
		t.Fatalf("bbox-capable task set must not be replaced")
	}
}
