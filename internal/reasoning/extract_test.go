package reasoning

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractCleanAnswerPrefersTag(t *testing.T) {
	if answer := ExtractCleanAnswer("<answer> Wool </answer>"); answer != "Wool" {
		t.Fatalf("answer = %q", answer)
	}
	if answer := ExtractCleanAnswer("reasoning first\n<answer>Quick Wash 15</answer>\ntrailing"); answer != "Quick Wash 15" {
		t.Fatalf("answer = %q", answer)
	}
}

func TestExtractCleanAnswerStripsOneQuoteLayer(t *testing.T) {
	if answer := ExtractCleanAnswer(`"Quick Wash 15'"`); answer != "Quick Wash 15'" {
		t.Fatalf("answer = %q, want exactly one quote layer removed", answer)
	}
	if answer := ExtractCleanAnswer("'Off'"); answer != "Off" {
		t.Fatalf("answer = %q", answer)
	}
	if answer := ExtractCleanAnswer(`"mismatched'`); answer != `"mismatched'` {
		t.Fatalf("mismatched quotes must be kept, got %q", answer)
	}
}

func TestExtractCleanAnswerScansLongTextFromEnd(t *testing.T) {
	longText := strings.Repeat("analysis of the dial geometry. ", 5) + "\n" +
		"# Heading\n" +
		"**Bold note**\n" +
		"- bullet item\n" +
		"Heavy Duty\n" +
		"\n" +
		"- trailing bullet"
	if answer := ExtractCleanAnswer(longText); answer != "Heavy Duty" {
		t.Fatalf("answer = %q", answer)
	}
}

func TestExtractCleanAnswerShortTextUnchanged(t *testing.T) {
	if answer := ExtractCleanAnswer("  Rinse and Spin  "); answer != "Rinse and Spin" {
		t.Fatalf("answer = %q", answer)
	}
}

func TestExtractModeLabelsConventions(t *testing.T) {
	rulesText := `**GREEN SCALE LINES:**
- Off: 90 degrees
- [Quick Wash 15]: 60 degrees
- Speed Wash 30: 30 degrees
The label "Heavy Duty": 120 degrees and 'Wool': 150 degrees complete the dial.
- Off: 90 degrees`
	labels := ExtractModeLabels(rulesText)
	expected := []string{"Off", "Quick Wash 15", "Speed Wash 30", "Heavy Duty", "Wool"}
	if !reflect.DeepEqual(labels, expected) {
		t.Fatalf("labels = %v want %v", labels, expected)
	}
}

func TestExtractModeLabelsDiscardsOversizedMatches(t *testing.T) {
	oversized := "- " + strings.Repeat("x", 60) + ": 45 degrees"
	if labels := ExtractModeLabels(oversized); len(labels) != 0 {
		t.Fatalf("oversized label should be discarded, got %v", labels)
	}
}

func TestExtractModeLabelsEmptyInput(t *testing.T) {
	if labels := ExtractModeLabels("no angles mentioned here"); len(labels) != 0 {
		t.Fatalf("expected no labels, got %v", labels)
	}
}
