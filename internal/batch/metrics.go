package batch

import "time"

// Report aggregates one evaluation run. Accuracy is computed only over
// samples that carried a ground-truth label; failures are counted apart from
// low-confidence successes.
type Report struct {
	RunID                 string  `json:"run_id"`
	Total                 int     `json:"total_samples"`
	Successful            int     `json:"successful"`
	Failed                int     `json:"failed"`
	SuccessRate           float64 `json:"success_rate"`
	WithGroundTruth       int     `json:"with_ground_truth"`
	CorrectAnswers        int     `json:"correct_answers"`
	Accuracy              float64 `json:"accuracy"`
	AverageConfidence     float64 `json:"average_confidence"`
	AverageLatencySeconds float64 `json:"average_latency_seconds"`
	Interrupted           bool    `json:"interrupted"`
	GeneratedAt           string  `json:"generated_at"`
}

// Summarize folds the result stream into an aggregate report.
func Summarize(runID string, results []Result, interrupted bool) Report {
	report := Report{
		RunID:       runID,
		Total:       len(results),
		Interrupted: interrupted,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	var confidenceSum float64
	var latencySum float64
	for _, result := range results {
		latencySum += result.ProcessingSeconds
		if result.Success {
			report.Successful++
			confidenceSum += result.Confidence
		} else {
			report.Failed++
		}
		if result.GroundTruth != "" {
			report.WithGroundTruth++
			if result.Correct != nil && *result.Correct {
				report.CorrectAnswers++
			}
		}
	}

	if report.Total > 0 {
		report.SuccessRate = float64(report.Successful) / float64(report.Total)
		report.AverageLatencySeconds = latencySum / float64(report.Total)
	}
	if report.Successful > 0 {
		report.AverageConfidence = confidenceSum / float64(report.Successful)
	}
	if report.WithGroundTruth > 0 {
		report.Accuracy = float64(report.CorrectAnswers) / float64(report.WithGroundTruth)
	}
	return report
}
