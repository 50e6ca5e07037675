package batch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/dialsight/internal/fsops"
	"github.com/temirov/dialsight/internal/geometry"
	"github.com/temirov/dialsight/internal/reasoning"
)

const reportFileName = "eval_report.json"

// EngineFactory builds a fresh reasoning engine. The runner calls it once per
// sample so every concurrent task owns its own engine and client; no client
// state is shared across workers.
type EngineFactory func() *reasoning.Engine

// Runner evaluates a sample set against the model with bounded concurrency.
type Runner struct {
	NewEngine       EngineFactory
	Ops             fsops.Ops
	OutputDirectory string
	Workers         int
	ChunkSize       int
	UseBBox         bool
	SaveAnnotations bool
	Question        string
	Logger          *zap.Logger
	RunID           string
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}

// Run processes the samples and writes the chunked result stream, the merged
// results.jsonl and the aggregate eval_report.json under OutputDirectory.
// Per-sample failures never stop the batch. Cancelling the context stops new
// samples from starting; in-flight samples run to completion.
func (r *Runner) Run(ctx context.Context, samples []Sample) (Report, error) {
	runID := r.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	if err := r.Ops.EnsureDir(r.OutputDirectory); err != nil {
		return Report{}, err
	}

	workerCount := r.Workers
	if workerCount <= 0 {
		workerCount = 1
	}

	resultStream := make(chan Result, workerCount)
	writer := NewChunkedWriter(r.Ops, r.OutputDirectory, r.ChunkSize)
	writerDone := make(chan error, 1)
	go func() {
		for result := range resultStream {
			if appendErr := writer.Append(result); appendErr != nil {
				writerDone <- appendErr
				for range resultStream {
				}
				return
			}
		}
		writerDone <- writer.Flush()
	}()

	group := new(errgroup.Group)
	group.SetLimit(workerCount)
	interrupted := false
	for _, sample := range samples {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		sample := sample
		group.Go(func() error {
			resultStream <- r.processSample(ctx, runID, sample)
			return nil
		})
	}
	_ = group.Wait()
	close(resultStream)
	if writerErr := <-writerDone; writerErr != nil {
		return Report{}, writerErr
	}

	results, mergeErr := writer.Merge()
	if mergeErr != nil {
		return Report{}, mergeErr
	}

	report := Summarize(runID, results, interrupted)
	reportBytes, marshalErr := json.MarshalIndent(report, "", "  ")
	if marshalErr != nil {
		return report, marshalErr
	}
	reportPath := r.Ops.FS.Join(r.OutputDirectory, reportFileName)
	if writeErr := r.Ops.FS.WriteFile(reportPath, reportBytes, filePermissions); writeErr != nil {
		return report, writeErr
	}
	r.logger().Info("batch run completed",
		zap.String("run_id", runID),
		zap.Int("total", report.Total),
		zap.Int("failed", report.Failed),
		zap.Float64("accuracy", report.Accuracy),
		zap.Bool("interrupted", report.Interrupted))
	return report, nil
}

func (r *Runner) processSample(ctx context.Context, runID string, sample Sample) Result {
	engine := r.NewEngine()
	request := reasoning.Request{
		ImagePath: sample.ImagePath,
		Question:  r.Question,
		TaskID:    runID,
	}
	if r.UseBBox && sample.KnobData != nil {
		request.BBoxes = sample.KnobData
	}

	startedAt := time.Now()
	outcome, reasonErr := engine.Reason(ctx, request)
	elapsedSeconds := time.Since(startedAt).Seconds()

	result := Result{
		Image:             sample.BaseName,
		ImagePath:         sample.ImagePath,
		Success:           reasonErr == nil,
		Stage1Rules:       outcome.Stage1Rules,
		Stage2Answer:      outcome.Stage2Answer,
		Stage3Validation:  outcome.Stage3Validation,
		FinalAnswer:       outcome.FinalAnswer,
		Confidence:        RoundConfidence(outcome.Confidence),
		ProcessingSeconds: elapsedSeconds,
		RetryCount:        outcome.RetryCount,
		RetryHistory:      outcome.RetryHistory,
		GroundTruth:       sample.GroundTruth,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
	if reasonErr != nil {
		result.Error = reasonErr.Error()
		r.logger().Warn("sample failed",
			zap.String("image", sample.ImagePath),
			zap.Error(reasonErr))
	}
	if sample.GroundTruth != "" && reasonErr == nil {
		correct := CompareAnswers(outcome.FinalAnswer, sample.GroundTruth)
		result.Correct = &correct
	}

	if r.SaveAnnotations && reasonErr == nil {
		r.renderAnnotation(sample, outcome.Stage1Rules)
	}
	return result
}

func (r *Runner) renderAnnotation(sample Sample, stage1Rules string) {
	annotation := geometry.ParseAnnotation(stage1Rules)
	if !annotation.Complete() {
		r.logger().Debug("skipping annotation render, geometry incomplete",
			zap.String("image", sample.ImagePath))
		return
	}
	outputPath := r.Ops.FS.Join(r.OutputDirectory, sample.BaseName+"_auxiliary_lines.jpg")
	if renderErr := geometry.Render(sample.ImagePath, annotation, outputPath); renderErr != nil {
		r.logger().Warn("annotation render failed",
			zap.String("image", sample.ImagePath),
			zap.Error(renderErr))
	}
}
