package reasoning

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/dialsight/internal/prompts"
)

const defaultMaxRetriesPerCall = 3

// ErrStageOneFailure marks a reasoning call whose rule-extraction stage never
// produced text. There is no fallback for stage 1; the whole call fails.
var ErrStageOneFailure = errors.New("stage 1 rule extraction failed")

// Engine drives the three-stage reasoning protocol for one image at a time.
// A single Reason call is strictly sequential; concurrent callers must use
// separate Engine values or treat the Engine as read-only after construction.
type Engine struct {
	Agent     Inferencer
	Templates prompts.Set
	Question  string
	// MaxRetriesPerCall bounds transport retries per model call. Zero means
	// the default of 3.
	MaxRetriesPerCall int
	// MaxValidationRetries bounds how many times stages 2 and 3 are re-run
	// after a failed validation. Zero is a valid setting (single attempt).
	MaxValidationRetries int
	Logger               *zap.Logger
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

func (e *Engine) maxRetriesPerCall() int {
	if e.MaxRetriesPerCall > 0 {
		return e.MaxRetriesPerCall
	}
	return defaultMaxRetriesPerCall
}

// Reason runs the full protocol: stage 1 once, then a bounded stage-2/3 loop
// with validation feedback, then final-answer synthesis. On failure the
// returned Result still carries whatever stage outputs were gathered, with
// confidence forced to zero and an explanatory final answer.
func (e *Engine) Reason(ctx context.Context, request Request) (Result, error) {
	var result Result
	if err := e.run(ctx, request, &result); err != nil {
		result.FinalAnswer = fmt.Sprintf("Reasoning failed: %v", err)
		result.Confidence = 0.0
		return result, err
	}
	return result, nil
}

func (e *Engine) run(ctx context.Context, request Request, result *Result) error {
	question := request.Question
	if question == "" {
		question = e.Question
	}

	stage1Prompt := e.Templates.Stage1Prompt(question)
	if request.BBoxes != nil {
		stage1Prompt = e.Templates.Stage1PromptWithBBox(question, *request.BBoxes)
	}
	stage1Text, stage1Err := e.Agent.Infer(ctx, stage1Prompt, []string{request.ImagePath}, e.maxRetriesPerCall())
	if stage1Err != nil {
		return fmt.Errorf("%w: %v", ErrStageOneFailure, stage1Err)
	}
	result.Stage1Rules = stage1Text

	adjacentModes := ExtractModeLabels(stage1Text)
	if len(adjacentModes) > 5 {
		adjacentModes = adjacentModes[:5]
	}
	adjacentModesText := strings.Join(adjacentModes, ", ")
	e.logger().Debug("extracted position labels",
		zap.String("image", request.ImagePath),
		zap.Strings("labels", adjacentModes))

	failureCount := 0
	for attempt := 0; attempt <= e.MaxValidationRetries; attempt++ {
		e.logger().Info("reasoning attempt",
			zap.String("image", request.ImagePath),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", e.MaxValidationRetries+1))

		stage2Prompt := e.Templates.Stage2Prompt(stage1Text)
		if len(result.RetryHistory) > 0 {
			stage2Prompt += buildReflectionBlock(result.RetryHistory)
		}
		stage2Text, stage2Err := e.Agent.Infer(ctx, stage2Prompt, []string{request.ImagePath}, e.maxRetriesPerCall())
		if stage2Err != nil {
			return fmt.Errorf("stage 2 inference on attempt %d: %w", attempt+1, stage2Err)
		}
		candidate := ExtractCleanAnswer(stage2Text)
		result.Stage2Answer = candidate

		stage3Prompt := e.Templates.Stage3Prompt(candidate, adjacentModesText)
		stage3Text, stage3Err := e.Agent.Infer(ctx, stage3Prompt, []string{request.ImagePath}, e.maxRetriesPerCall())
		if stage3Err != nil {
			return fmt.Errorf("stage 3 inference on attempt %d: %w", attempt+1, stage3Err)
		}
		result.Stage3Validation = stage3Text

		verdict := Classify(stage3Text)
		if verdict.Passed {
			e.logger().Info("validation passed",
				zap.String("image", request.ImagePath),
				zap.Int("attempt", attempt+1))
			break
		}

		e.logger().Warn("validation failed",
			zap.String("image", request.ImagePath),
			zap.Int("attempt", attempt+1),
			zap.String("reason", verdict.Reason))

		// Diagnostic only: on the final allowed attempt ask the model to
		// reflect on the rejection. The reflection never changes the outcome.
		reflectionText := ""
		if attempt == e.MaxValidationRetries {
			reflectionText = e.requestReflection(ctx, request.ImagePath, candidate, verdict.Reason)
		}

		result.RetryHistory = append(result.RetryHistory, RetryRecord{
			Attempt:         attempt + 1,
			Answer:          candidate,
			FailureReason:   verdict.Reason,
			SuggestedAnswer: verdict.SuggestedAnswer,
			Reflection:      reflectionText,
		})
		failureCount++

		if attempt == e.MaxValidationRetries && verdict.SuggestedAnswer != "" {
			// The validator named a better answer and there are no attempts
			// left; adopt it directly with fixed reduced confidence.
			e.logger().Info("adopting validation-suggested answer",
				zap.String("image", request.ImagePath),
				zap.String("suggested", verdict.SuggestedAnswer))
			result.Stage2Answer = verdict.SuggestedAnswer
			result.FinalAnswer = verdict.SuggestedAnswer
			result.Confidence = 0.6
			result.RetryCount = failureCount
			return nil
		}
	}

	finalAnswer, confidence := synthesizeFinalAnswer(result.Stage2Answer, result.Stage3Validation, result.Stage1Rules)
	if failureCount > 0 {
		confidence = confidence - 0.1*float64(failureCount)
		if confidence < 0.5 {
			confidence = 0.5
		}
	}
	result.FinalAnswer = finalAnswer
	result.Confidence = confidence
	result.RetryCount = failureCount

	e.logger().Info("reasoning completed",
		zap.String("image", request.ImagePath),
		zap.String("final_answer", finalAnswer),
		zap.Float64("confidence", confidence),
		zap.Int("retries", failureCount))
	return nil
}

func buildReflectionBlock(history []RetryRecord) string {
	previousAnswers := make([]string, 0, len(history))
	for _, record := range history {
		previousAnswers = append(previousAnswers, record.Answer)
	}
	last := history[len(history)-1]

	var builder strings.Builder
	builder.WriteString("\n\n## REFLECTION ON PREVIOUS FAILURE:\n")
	fmt.Fprintf(&builder, "Previous attempt identified: **%s**\n", strings.Join(previousAnswers, ", "))
	fmt.Fprintf(&builder, "Validation failure reason: %s\n", last.FailureReason)
	if last.SuggestedAnswer != "" {
		fmt.Fprintf(&builder, "Suggested correct answer: %s\n", last.SuggestedAnswer)
	}
	builder.WriteString("\n**What went wrong?** Reflect on why the previous answer was incorrect.\n")
	builder.WriteString("**What to check?** Re-examine the pointer angle and scale line positions more carefully.\n")
	builder.WriteString("**Corrective action:** Measure angles precisely and find the truly closest scale line.\n")
	return builder.String()
}

func (e *Engine) requestReflection(ctx context.Context, imagePath string, candidate string, failureReason string) string {
	reflectionPrompt := fmt.Sprintf(
		"# Validation Reflection\n\n"+
			"Your previous answer '%s' was INVALID.\n\n"+
			"**Validation failure reason:** %s\n\n"+
			"Please reflect:\n"+
			"1. Why did you think '%s' was correct?\n"+
			"2. What geometric evidence contradicts this answer?\n"+
			"3. What is the most likely correct answer based on geometric analysis?\n\n"+
			"Provide a brief reflection (2-3 sentences) to guide the next attempt.",
		candidate, failureReason, candidate)
	reflectionText, reflectionErr := e.Agent.Infer(ctx, reflectionPrompt, []string{imagePath}, 1)
	if reflectionErr != nil {
		e.logger().Warn("reflection request failed", zap.Error(reflectionErr))
		return ""
	}
	e.logger().Debug("model reflection", zap.String("reflection", reflectionText))
	return reflectionText
}

var correctionPattern = regexp.MustCompile(`(?i)should be\s*"?([^"\n]+)"?`)

var geometryKeywords = []string{"pointer", "green line", "center", "endpoint", "extension line", "indicator", "scale"}

// synthesizeFinalAnswer combines the three stage outputs into the final
// answer and a heuristic confidence in [0,1]. Base confidence 0.7; the
// stage-3 wording moves it up or down, the stage-1 geometry vocabulary adds a
// reasoning-quality bonus.
func synthesizeFinalAnswer(stage2Answer string, stage3Validation string, stage1Rules string) (string, float64) {
	confidence := 0.7
	cleanAnswer := stripQuoteLayer(strings.TrimSpace(stage2Answer))

	finalAnswer := cleanAnswer
	validationLower := strings.ToLower(stage3Validation)
	switch {
	case strings.Contains(validationLower, "valid") || strings.Contains(validationLower, "yes"):
		confidence += 0.2
	case strings.Contains(validationLower, "invalid") || strings.Contains(validationLower, "no"):
		confidence -= 0.3
		if match := correctionPattern.FindStringSubmatch(stage3Validation); match != nil {
			finalAnswer = strings.TrimSpace(match[1])
			confidence += 0.1
		} else {
			finalAnswer = "Uncertain: " + cleanAnswer
		}
	default:
		confidence -= 0.1
	}

	rulesLower := strings.ToLower(stage1Rules)
	for _, keyword := range geometryKeywords {
		if strings.Contains(rulesLower, keyword) {
			confidence += 0.1
			break
		}
	}

	if confidence < 0.0 {
		confidence = 0.0
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return finalAnswer, confidence
}
