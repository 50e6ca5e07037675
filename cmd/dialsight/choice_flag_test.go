package dialsight

import "testing"

func TestParseBoolChoice(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  bool
		expectErr bool
	}{
		{"", true, false},
		{"true", true, false},
		{"YES", true, false},
		{"on", true, false},
		{"1", true, false},
		{"false", false, false},
		{"No", false, false},
		{"off", false, false},
		{"0", false, false},
		{" t ", true, false},
		{"maybe", false, true},
	}
	for _, testCase := range testCases {
		parsed, parseErr := parseBoolChoice(testCase.raw)
		if testCase.expectErr {
			if parseErr == nil {
				t.Fatalf("parseBoolChoice(%q) should error", testCase.raw)
			}
			continue
		}
		if parseErr != nil {
			t.Fatalf("parseBoolChoice(%q): %v", testCase.raw, parseErr)
		}
		if parsed != testCase.expected {
			t.Fatalf("parseBoolChoice(%q) = %v want %v", testCase.raw, parsed, testCase.expected)
		}
	}
}

func TestBoolChoiceValueSet(t *testing.T) {
	target := false
	value := newBoolChoiceValue(&target)
	if setErr := value.Set("yes"); setErr != nil {
		t.Fatalf("set: %v", setErr)
	}
	if !target {
		t.Fatalf("target should be true after Set")
	}
	if value.String() != "true" {
		t.Fatalf("String() = %q", value.String())
	}
	if setErr := value.Set("banana"); setErr == nil {
		t.Fatalf("invalid value should error")
	}
}
