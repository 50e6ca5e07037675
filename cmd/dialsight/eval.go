package dialsight

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/temirov/dialsight/internal/batch"
	"github.com/temirov/dialsight/internal/fsops"
	"github.com/temirov/dialsight/internal/reasoning"
)

type evalCommandOptions struct {
	datasetDirectory string
	outputDirectory  string
	task             string
	workers          int
	maxSamples       int
	useBBox          bool
	saveAnnotation   bool
}

func newEvalCommand() *cobra.Command {
	options := evalCommandOptions{}
	command := &cobra.Command{
		Use:   evalCommandUse,
		Short: evalCommandShort,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runEvaluation(command, options)
		},
	}
	flags := command.Flags()
	flags.StringVar(&options.datasetDirectory, datasetDirFlagName, "", datasetDirFlagUsage)
	flags.StringVar(&options.outputDirectory, outputDirFlagName, "", outputDirFlagUsage)
	flags.StringVar(&options.task, taskFlagName, "", taskFlagUsage)
	flags.IntVar(&options.workers, workersFlagName, 0, workersFlagUsage)
	flags.IntVar(&options.maxSamples, maxSamplesFlagName, 0, maxSamplesFlagUsage)
	flags.Var(newBoolChoiceValue(&options.useBBox), useBBoxFlagName, useBBoxFlagUsage)
	flags.Lookup(useBBoxFlagName).NoOptDefVal = "true"
	flags.Var(newBoolChoiceValue(&options.saveAnnotation), saveAnnotationFlagName, saveAnnotationFlagUsage)
	flags.Lookup(saveAnnotationFlagName).NoOptDefVal = "true"
	_ = command.MarkFlagRequired(datasetDirFlagName)
	_ = command.MarkFlagRequired(outputDirFlagName)
	return command
}

func runEvaluation(command *cobra.Command, options evalCommandOptions) error {
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
	task := options.task
	if task == "" {
		task = root.Defaults.Task
	}
	templates := resolveTemplates(task, options.useBBox)

	workers := options.workers
	if workers <= 0 {
		workers = root.Defaults.Workers
	}
	saveAnnotations := root.Output.SaveAnnotations
	if command.Flags().Changed(saveAnnotationFlagName) {
		saveAnnotations = options.saveAnnotation
	}

	ops := fsops.NewOps(fsops.NewOS())
	samples, discoverErr := batch.DiscoverSamples(ops, options.datasetDirectory, options.maxSamples)
	if discoverErr != nil {
		return discoverErr
	}
	if len(samples) == 0 {
		return fmt.Errorf("no images found under %s", options.datasetDirectory)
	}

	ctx, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &batch.Runner{
		NewEngine: func() *reasoning.Engine {
			return newEngine(root, client, templates, root.Defaults.Question, logger)
		},
		Ops:             ops,
		OutputDirectory: options.outputDirectory,
		Workers:         workers,
		ChunkSize:       root.Output.ChunkSize,
		UseBBox:         options.useBBox,
		SaveAnnotations: saveAnnotations,
		Question:        root.Defaults.Question,
		Logger:          logger,
	}
	report, runErr := runner.Run(ctx, samples)
	if runErr != nil {
		return runErr
	}

	reportBytes, marshalErr := json.MarshalIndent(report, "", "  ")
	if marshalErr != nil {
		return marshalErr
	}
	fmt.Fprintln(command.OutOrStdout(), string(reportBytes))
	return nil
}
