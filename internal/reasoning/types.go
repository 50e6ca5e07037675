package reasoning

import (
	"context"

	"github.com/temirov/dialsight/internal/prompts"
)

// Inferencer is the model-call surface the engine depends on. vlm.Client
// satisfies it; tests substitute scripted fakes.
type Inferencer interface {
	Infer(ctx context.Context, promptText string, imagePaths []string, maxRetries int) (string, error)
}

// Request describes one image to reason about. Immutable once created.
type Request struct {
	ImagePath string
	Question  string
	TaskID    string
	// BBoxes carries sidecar bounding-box annotations; when present the
	// stage-1 prompt is rendered with the bbox-enhanced placeholders.
	BBoxes *prompts.KnobData
}

// RetryRecord captures one rejected validation attempt. Records are
// append-only and chronological; every failure is recorded, including the one
// on the last allowed attempt, so a fully failed run holds one more entry
// than the validation retry bound.
type RetryRecord struct {
	Attempt         int    `json:"attempt"`
	Answer          string `json:"answer"`
	FailureReason   string `json:"validation_failure"`
	SuggestedAnswer string `json:"suggested_correct_answer,omitempty"`
	Reflection      string `json:"vlm_reflection,omitempty"`
}

// Result is the outcome of one Reason call. Partial stage outputs are kept
// even when the call fails, for diagnostics.
type Result struct {
	Stage1Rules      string        `json:"stage1_rules"`
	Stage2Answer     string        `json:"stage2_answer"`
	Stage3Validation string        `json:"stage3_validation"`
	FinalAnswer      string        `json:"final_answer"`
	Confidence       float64       `json:"confidence"`
	RetryCount       int           `json:"retry_count"`
	RetryHistory     []RetryRecord `json:"retry_history,omitempty"`
}

// Verdict is the structured reading of stage-3 validation text.
type Verdict struct {
	Passed          bool
	Reason          string
	SuggestedAnswer string
}
