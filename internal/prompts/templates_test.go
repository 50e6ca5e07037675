package prompts

import (
	"strings"
	"testing"
)

func TestStagePromptsResolveAllPlaceholders(t *testing.T) {
	for _, setName := range []string{TaskWasherKnob, TaskGenericVisual} {
		templateSet := Lookup(setName)
		stage1 := templateSet.Stage1Prompt("Which mode is selected?")
		if strings.Contains(stage1, "{question}") {
			t.Fatalf("%s stage1 left {question} unresolved", setName)
		}
		if !strings.Contains(stage1, "Which mode is selected?") {
			t.Fatalf("%s stage1 missing question text", setName)
		}
		stage2 := templateSet.Stage2Prompt("RULES BODY")
		if strings.Contains(stage2, "{rules}") || !strings.Contains(stage2, "RULES BODY") {
			t.Fatalf("%s stage2 did not resolve rules", setName)
		}
		stage3 := templateSet.Stage3Prompt("Wool", "Cotton, Rinse")
		if strings.Contains(stage3, "{answer}") || strings.Contains(stage3, "{adjacent_modes}") {
			t.Fatalf("%s stage3 left placeholders unresolved", setName)
		}
	}
}

func TestLookupFallsBackToGenericVisual(t *testing.T) {
	unknown := Lookup("no_such_task")
	generic := Lookup(TaskGenericVisual)
	if unknown.Stage1 != generic.Stage1 {
		t.Fatalf("unknown task name should fall back to the generic set")
	}
}

func TestExtractAnswerTag(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  string
		wantFound bool
	}{
		{"simple", "reasoning...\n<answer>Quick Wash 15</answer>", "Quick Wash 15", true},
		{"multiline body", "<answer>\n  Wool\n</answer>", "Wool", true},
		{"case insensitive tag", "<ANSWER>Off</ANSWER>", "Off", true},
		{"missing", "no tag here", "", false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			answer, found := ExtractAnswerTag(testCase.input)
			if found != testCase.wantFound {
				t.Fatalf("found=%v want %v", found, testCase.wantFound)
			}
			if answer != testCase.expected {
				t.Fatalf("answer=%q want %q", answer, testCase.expected)
			}
		})
	}
}

func TestFormatBBoxInfoSeparatesKnobAndLabels(t *testing.T) {
	data := KnobData{
		KnobClose: []Annotation{
			{Label: "Knob", BBox: []int{100, 120, 300, 320}},
			{Label: "Cotton", BBox: []int{10, 20, 60, 40}},
			{Label: "Rinse", BBox: []int{400, 20, 460, 40}},
		},
		Status: &Annotation{Label: "Cotton", BBox: []int{10, 20, 60, 40}},
	}
	bboxInfo, knobBBox, modeBBoxes := FormatBBoxInfo(data)
	if knobBBox != "[100, 120, 300, 320]" {
		t.Fatalf("knob bbox = %q", knobBBox)
	}
	if !strings.Contains(bboxInfo, "Circular element region: Knob") {
		t.Fatalf("bbox info missing knob line: %s", bboxInfo)
	}
	if !strings.Contains(bboxInfo, "Current state annotation: Cotton") {
		t.Fatalf("bbox info missing status note: %s", bboxInfo)
	}
	if strings.Contains(modeBBoxes, "Knob") {
		t.Fatalf("mode bbox list should not include the knob box: %s", modeBBoxes)
	}
	if !strings.Contains(modeBBoxes, "* Cotton: bbox [10, 20, 60, 40]") {
		t.Fatalf("mode bbox list missing Cotton: %s", modeBBoxes)
	}
}

func TestStage1PromptWithBBoxResolvesAllPlaceholders(t *testing.T) {
	data := KnobData{KnobClose: []Annotation{
		{Label: "knob", BBox: []int{0, 0, 10, 10}},
		{Label: "Off", BBox: []int{20, 0, 30, 10}},
	}}
	prompt := Lookup(TaskRotaryBBox).Stage1PromptWithBBox("Where does it point?", data)
	for _, placeholder := range []string{"{question}", "{bbox_info}", "{knob_bbox}", "{mode_bboxes}"} {
		if strings.Contains(prompt, placeholder) {
			t.Fatalf("placeholder %s unresolved", placeholder)
		}
	}
}

func TestGroundTruth(t *testing.T) {
	withStatus := KnobData{Status: &Annotation{Label: "Heavy Duty"}}
	if label, ok := withStatus.GroundTruth(); !ok || label != "Heavy Duty" {
		t.Fatalf("ground truth = %q, %v", label, ok)
	}
	if _, ok := (KnobData{}).GroundTruth(); ok {
		t.Fatalf("expected no ground truth without status annotation")
	}
}

func TestLoadOverridesRegistersCompleteSets(t *testing.T) {
	overrideYAML := []byte(`
templates:
  custom_dial:
    stage1: "s1 {question}"
    stage2: "s2 {rules}"
    stage3: "s3 {answer} {adjacent_modes}"
`)
	if err := LoadOverrides(overrideYAML); err != nil {
		t.Fatalf("load overrides: %v", err)
	}
	loaded := Lookup("custom_dial")
	if loaded.Stage1 != "s1 {question}" {
		t.Fatalf("override not registered: %q", loaded.Stage1)
	}
}

func TestLoadOverridesRejectsPartialSets(t *testing.T) {
	partialYAML := []byte(`
templates:
  broken:
    stage1: "only one stage"
`)
	if err := LoadOverrides(partialYAML); err == nil {
		t.Fatalf("expected error for partial template set")
	}
}

func TestSupportsBBox(t *testing.T) {
	if Lookup(TaskWasherKnob).SupportsBBox() {
		t.Fatalf("washer_knob stage-1 has no bbox placeholders")
	}
	if Lookup(TaskGenericVisual).SupportsBBox() {
		t.Fatalf("generic_visual stage-1 has no bbox placeholders")
	}
	if !Lookup(TaskRotaryBBox).SupportsBBox() {
		t.Fatalf("rotary_bbox stage-1 must accept bbox annotations")
	}
}
