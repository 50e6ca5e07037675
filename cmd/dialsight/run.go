package dialsight

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dialsight/internal/batch"
	"github.com/temirov/dialsight/internal/geometry"
	"github.com/temirov/dialsight/internal/prompts"
	"github.com/temirov/dialsight/internal/reasoning"
)

type runCommandOptions struct {
	imagePath      string
	question       string
	task           string
	useBBox        bool
	saveAnnotation bool
}

func newRunCommand() *cobra.Command {
	options := runCommandOptions{}
	command := &cobra.Command{
		Use:   runCommandUse,
		Short: runCommandShort,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runSingleImage(command, options)
		},
	}
	flags := command.Flags()
	flags.StringVar(&options.imagePath, imageFlagName, "", imageFlagUsage)
	flags.StringVar(&options.question, questionFlagName, "", questionFlagUsage)
	flags.StringVar(&options.task, taskFlagName, "", taskFlagUsage)
	flags.Var(newBoolChoiceValue(&options.useBBox), useBBoxFlagName, useBBoxFlagUsage)
	flags.Lookup(useBBoxFlagName).NoOptDefVal = "true"
	flags.Var(newBoolChoiceValue(&options.saveAnnotation), saveAnnotationFlagName, saveAnnotationFlagUsage)
	flags.Lookup(saveAnnotationFlagName).NoOptDefVal = "true"
	_ = command.MarkFlagRequired(imageFlagName)
	return command
}

func runSingleImage(command *cobra.Command, options runCommandOptions) error {
	root, configurationErr := loadRootConfiguration()
	if configurationErr != nil {
		return configurationErr
	}
	logger, loggerErr := newLogger(root)
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	client, clientErr := newClient(root, logger)
	if clientErr != nil {
		return clientErr
	}

	question := options.question
	if question == "" {
		question = root.Defaults.Question
	}
	task := options.task
	if task == "" {
		task = root.Defaults.Task
	}
	engine := newEngine(root, client, resolveTemplates(task, options.useBBox), question, logger)

	request := reasoning.Request{
		ImagePath: options.imagePath,
		Question:  question,
		TaskID:    uuid.NewString(),
	}
	knobData, groundTruth, sidecarErr := loadSidecar(options.imagePath)
	if sidecarErr != nil {
		return sidecarErr
	}
	if options.useBBox {
		if knobData == nil {
			return fmt.Errorf("bounding boxes requested but no JSON sidecar found next to %s", options.imagePath)
		}
		request.BBoxes = knobData
	}

	ctx, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()
	outcome, reasonErr := engine.Reason(ctx, request)
	elapsedSeconds := time.Since(startedAt).Seconds()

	record := batch.Result{
		Image:             strings.TrimSuffix(filepath.Base(options.imagePath), filepath.Ext(options.imagePath)),
		ImagePath:         options.imagePath,
		Success:           reasonErr == nil,
		Stage1Rules:       outcome.Stage1Rules,
		Stage2Answer:      outcome.Stage2Answer,
		Stage3Validation:  outcome.Stage3Validation,
		FinalAnswer:       outcome.FinalAnswer,
		Confidence:        batch.RoundConfidence(outcome.Confidence),
		ProcessingSeconds: elapsedSeconds,
		RetryCount:        outcome.RetryCount,
		RetryHistory:      outcome.RetryHistory,
		GroundTruth:       groundTruth,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
	if reasonErr != nil {
		record.Error = reasonErr.Error()
	}
	if groundTruth != "" && reasonErr == nil {
		correct := batch.CompareAnswers(outcome.FinalAnswer, groundTruth)
		record.Correct = &correct
	}

	recordBytes, marshalErr := json.MarshalIndent(record, "", "  ")
	if marshalErr != nil {
		return marshalErr
	}
	fmt.Fprintln(command.OutOrStdout(), string(recordBytes))

	if options.saveAnnotation && reasonErr == nil {
		renderSingleAnnotation(options.imagePath, outcome.Stage1Rules, logger)
	}
	return reasonErr
}

// loadSidecar reads the optional "<stem>.json" annotation file next to the
// image. A missing sidecar is not an error.
func loadSidecar(imagePath string) (*prompts.KnobData, string, error) {
	sidecarPath := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".json"
	sidecarBytes, readErr := os.ReadFile(sidecarPath)
	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("read sidecar %s: %w", sidecarPath, readErr)
	}
	var knobData prompts.KnobData
	if unmarshalErr := json.Unmarshal(sidecarBytes, &knobData); unmarshalErr != nil {
		return nil, "", fmt.Errorf("parse sidecar %s: %w", sidecarPath, unmarshalErr)
	}
	groundTruth, _ := knobData.GroundTruth()
	return &knobData, groundTruth, nil
}

func renderSingleAnnotation(imagePath string, stage1Rules string, logger *zap.Logger) {
	annotation := geometry.ParseAnnotation(stage1Rules)
	if !annotation.Complete() {
		logger.Debug("skipping annotation render, geometry incomplete",
			zap.String("image", imagePath))
		return
	}
	outputPath := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + "_auxiliary_lines.jpg"
	if renderErr := geometry.Render(imagePath, annotation, outputPath); renderErr != nil {
		logger.Warn("annotation render failed",
			zap.String("image", imagePath),
			zap.Error(renderErr))
	}
}
