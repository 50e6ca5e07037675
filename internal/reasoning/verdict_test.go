package reasoning

import "testing"

func TestClassifyExplicitInvalidExtractsReason(t *testing.T) {
	verdict := Classify("Checks done.\nINVALID: pointer not aligned with scale line")
	if verdict.Passed {
		t.Fatalf("expected failed verdict")
	}
	if verdict.Reason != "pointer not aligned with scale line" {
		t.Fatalf("reason = %q", verdict.Reason)
	}
}

func TestClassifyExplicitValidInClosingLines(t *testing.T) {
	verdict := Classify("Collinearity checked.\nAll tests agree.\n**YOUR FINAL DECISION:**\nVALID")
	if !verdict.Passed {
		t.Fatalf("expected passed verdict, got reason %q", verdict.Reason)
	}
}

func TestClassifyValidShadowedByInvalidFails(t *testing.T) {
	verdict := Classify("The tests disagree.\nVALID\nINVALID: mismatch found")
	if verdict.Passed {
		t.Fatalf("INVALID in closing lines must not pass")
	}
}

func TestClassifyAmbiguousTextFailsSafe(t *testing.T) {
	for _, text := range []string{"", "the knob looks nice", "angle is 42 degrees", "no conclusion reached"} {
		verdict := Classify(text)
		if verdict.Passed {
			t.Fatalf("ambiguous text %q must not pass", text)
		}
	}
	if Classify("completely unrelated text").Reason != "Validation result unclear or ambiguous" {
		t.Fatalf("default rule should report ambiguity")
	}
}

func TestClassifyTrailingFailMarker(t *testing.T) {
	verdict := Classify("Long analysis here.\nMore analysis.\nCollinearity Status: FAIL")
	if verdict.Passed {
		t.Fatalf("trailing FAIL must fail validation")
	}
}

func TestClassifyGeometricPassVariant(t *testing.T) {
	text := "Collinearity Status: PASS\nMatch Status: MATCH\nall distances computed above, see table"
	// Pad the tail so the closing-lines VALID rule cannot fire first.
	for i := 0; i < 12; i++ {
		text += "\nfiller line with numbers 1 2 3"
	}
	verdict := Classify(text)
	if !verdict.Passed {
		t.Fatalf("geometric pass wording should pass, got reason %q", verdict.Reason)
	}
	if verdict.Reason != "Geometric tests passed" {
		t.Fatalf("reason = %q", verdict.Reason)
	}
}

func TestClassifyGeometricFailSuggestsClosestLine(t *testing.T) {
	text := "Match Status: MISMATCH\nClosest scale line: 'Heavy Duty'\nAngular distance: 3 degrees"
	for i := 0; i < 12; i++ {
		text += "\nfiller commentary"
	}
	verdict := Classify(text)
	if verdict.Passed {
		t.Fatalf("mismatch must fail")
	}
	if verdict.SuggestedAnswer != "Heavy Duty" {
		t.Fatalf("suggested answer = %q", verdict.SuggestedAnswer)
	}
}

func TestClassifySuggestionPatternPriority(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		suggested string
	}{
		{"should be wins", "INVALID: wrong. Should be 'Wool'. Pointer actually points to Rinse", "Wool"},
		{"points to", "INVALID: Pointer points to 'Cotton', not 'Wool'", "Cotton"},
		{"closer to", "INVALID: pointer closer to Heavy Duty", "Heavy Duty"},
		{"actually without space", "INVALID: wrong. Actually'Heavy Duty' is the aligned mode", "Heavy Duty"},
		{"no suggestion", "INVALID: geometry unreadable", ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			verdict := Classify(testCase.text)
			if verdict.Passed {
				t.Fatalf("expected failed verdict")
			}
			if verdict.SuggestedAnswer != testCase.suggested {
				t.Fatalf("suggested = %q want %q", verdict.SuggestedAnswer, testCase.suggested)
			}
		})
	}
}
