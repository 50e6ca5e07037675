package reasoning

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/temirov/dialsight/internal/prompts"
)

const longAnswerThreshold = 100

// ExtractCleanAnswer reduces free-form stage-2 text to a short answer. Tagged
// content wins; otherwise one layer of surrounding quotes is stripped and, for
// long text, the last meaningful line is taken. Never fails; worst case the
// trimmed input comes back unchanged.
func ExtractCleanAnswer(text string) string {
	if tagged, found := prompts.ExtractAnswerTag(text); found {
		return tagged
	}
	cleaned := stripQuoteLayer(strings.TrimSpace(text))
	if utf8.RuneCountInString(cleaned) > longAnswerThreshold {
		lines := strings.Split(cleaned, "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			line := strings.TrimSpace(lines[i])
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "**") || strings.HasPrefix(line, "-") {
				continue
			}
			return line
		}
	}
	return cleaned
}

// stripQuoteLayer removes exactly one layer of matching surrounding quote
// characters, double or single.
func stripQuoteLayer(text string) string {
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	if first == last && (first == '"' || first == '\'') {
		return text[1 : len(text)-1]
	}
	return text
}

var modeLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[-•]\s*\[?([^]:\n]+)\]?[:\s]+\d+\.?\d*\s*(?:degrees?)?`),
	regexp.MustCompile(`"([^"]+)"[:\s]+\d+\.?\d*\s*(?:degrees?)?`),
	regexp.MustCompile(`'([^']+)'[:\s]+\d+\.?\d*\s*(?:degrees?)?`),
}

// ExtractModeLabels pulls position-label names out of stage-1 rules text. It
// recognizes colon-delimited bullets plus double- and single-quoted label
// conventions, keeps first-seen order and drops duplicates. Labels of 50 or
// more characters are discarded as parsing noise.
func ExtractModeLabels(rulesText string) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, pattern := range modeLabelPatterns {
		for _, match := range pattern.FindAllStringSubmatch(rulesText, -1) {
			label := strings.TrimSpace(match[1])
			if label == "" || utf8.RuneCountInString(label) >= 50 {
				continue
			}
			if _, duplicate := seen[label]; duplicate {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	return labels
}
