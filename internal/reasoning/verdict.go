package reasoning

import (
	"regexp"
	"strings"
)

// verdictText is the pre-split view of one stage-3 response that the rule
// predicates read from.
type verdictText struct {
	raw        string
	lower      string
	upper      string
	upperLines []string
}

// verdictRule pairs a predicate with its outcome. Rules are evaluated in
// declaration order; the first rule that matches decides the verdict.
type verdictRule struct {
	name     string
	evaluate func(verdictText) (Verdict, bool)
}

var (
	invalidReasonPattern = regexp.MustCompile(`(?i)INVALID:?\s*(.+)`)
	shouldBePattern      = regexp.MustCompile(`(?i)should be\s*["']?([^"'\n]+)`)
	actuallyPattern      = regexp.MustCompile(`(?i)actually?\s*["']?([^"'\n]+)`)
	pointsToPattern      = regexp.MustCompile(`(?i)points? to\s*["']?([^"'\n]+)`)
	closerToPattern      = regexp.MustCompile(`(?i)closer to\s*["']?([^"'\n,.]+)`)
	closestLinePattern   = regexp.MustCompile(`(?i)closest scale line:\s*["']?([^"'\n]+)`)
)

var suggestionPatterns = []*regexp.Regexp{
	shouldBePattern,
	actuallyPattern,
	pointsToPattern,
	closerToPattern,
}

var verdictRules = []verdictRule{
	{
		name: "explicit invalid or trailing fail",
		evaluate: func(text verdictText) (Verdict, bool) {
			tail := strings.Join(lastN(text.upperLines, 5), "\n")
			if !strings.Contains(text.upper, "INVALID:") && !strings.Contains(tail, "FAIL") {
				return Verdict{}, false
			}
			reason := "Validation check failed"
			if match := invalidReasonPattern.FindStringSubmatch(text.raw); match != nil {
				reason = strings.TrimSpace(match[1])
			}
			suggested := ""
			for _, pattern := range suggestionPatterns {
				if match := pattern.FindStringSubmatch(text.raw); match != nil {
					suggested = strings.TrimSpace(match[1])
					break
				}
			}
			return Verdict{Passed: false, Reason: reason, SuggestedAnswer: suggested}, true
		},
	},
	{
		name: "explicit valid in closing lines",
		evaluate: func(text verdictText) (Verdict, bool) {
			tail := strings.Join(lastN(text.upperLines, 10), "\n")
			if strings.Contains(tail, "VALID") && !strings.Contains(tail, "INVALID") {
				return Verdict{Passed: true, Reason: "All validation checks passed"}, true
			}
			return Verdict{}, false
		},
	},
	{
		name: "geometric tests passed",
		evaluate: func(text verdictText) (Verdict, bool) {
			if strings.Contains(text.lower, "collinearity status: pass") && strings.Contains(text.lower, "match status: match") {
				return Verdict{Passed: true, Reason: "Geometric tests passed"}, true
			}
			return Verdict{}, false
		},
	},
	{
		name: "geometric tests failed",
		evaluate: func(text verdictText) (Verdict, bool) {
			if !strings.Contains(text.lower, "collinearity status: fail") && !strings.Contains(text.lower, "match status: mismatch") {
				return Verdict{}, false
			}
			suggested := ""
			if match := closestLinePattern.FindStringSubmatch(text.raw); match != nil {
				suggested = strings.TrimSpace(match[1])
			}
			return Verdict{Passed: false, Reason: "Geometric alignment test failed", SuggestedAnswer: suggested}, true
		},
	},
}

// Classify reads stage-3 validation text into a verdict. The rules run in
// priority order and ambiguous text always fails; absence of an unambiguous
// pass marker is never interpreted as success.
func Classify(validationText string) Verdict {
	text := verdictText{
		raw:        validationText,
		lower:      strings.ToLower(validationText),
		upper:      strings.ToUpper(validationText),
		upperLines: strings.Split(strings.ToUpper(validationText), "\n"),
	}
	for _, rule := range verdictRules {
		if verdict, matched := rule.evaluate(text); matched {
			return verdict
		}
	}
	return Verdict{Passed: false, Reason: "Validation result unclear or ambiguous"}
}

func lastN(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
