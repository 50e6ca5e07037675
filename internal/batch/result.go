package batch

import (
	"math"
	"strings"

	"github.com/temirov/dialsight/internal/reasoning"
)

// Result is the per-image record appended to the line-delimited result
// stream.
type Result struct {
	Image             string                  `json:"image"`
	ImagePath         string                  `json:"image_path"`
	Success           bool                    `json:"success"`
	Stage1Rules       string                  `json:"stage1_rules"`
	Stage2Answer      string                  `json:"stage2_answer"`
	Stage3Validation  string                  `json:"stage3_validation"`
	FinalAnswer       string                  `json:"final_answer"`
	Confidence        float64                 `json:"confidence"`
	ProcessingSeconds float64                 `json:"processing_time_seconds"`
	RetryCount        int                     `json:"retry_count"`
	RetryHistory      []reasoning.RetryRecord `json:"retry_history,omitempty"`
	GroundTruth       string                  `json:"ground_truth,omitempty"`
	Correct           *bool                   `json:"correct,omitempty"`
	Timestamp         string                  `json:"timestamp"`
	Error             string                  `json:"error,omitempty"`
}

// RoundConfidence rounds to two decimals for the persisted record.
func RoundConfidence(confidence float64) float64 {
	return math.Round(confidence*100) / 100
}

// NormalizeAnswer lowers case and strips spaces and quote characters so that
// cosmetic differences do not fail a comparison.
func NormalizeAnswer(answer string) string {
	normalized := strings.ToLower(answer)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, `"`, "")
	normalized = strings.ReplaceAll(normalized, "'", "")
	return normalized
}

// CompareAnswers reports whether a final answer matches the ground-truth
// label, exactly or by containment in either direction, after normalization.
func CompareAnswers(finalAnswer string, groundTruth string) bool {
	normalizedAnswer := NormalizeAnswer(finalAnswer)
	normalizedTruth := NormalizeAnswer(groundTruth)
	if normalizedAnswer == "" || normalizedTruth == "" {
		return false
	}
	return normalizedAnswer == normalizedTruth ||
		strings.Contains(normalizedAnswer, normalizedTruth) ||
		strings.Contains(normalizedTruth, normalizedAnswer)
}
