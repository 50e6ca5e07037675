package dialsight

const (
	rootCommandUse   = "dialsight"
	rootCommandShort = "Three-stage visual reasoning over rotary-control photos"

	runCommandUse   = "run"
	runCommandShort = "Reason about a single image and print the result record"

	evalCommandUse   = "eval"
	evalCommandShort = "Evaluate a dataset directory and write JSONL results plus a report"

	listTemplatesCommandUse   = "list-templates"
	listTemplatesCommandShort = "List registered prompt template sets"

	configFlagName  = "config"
	configFlagUsage = "Path to config.yaml (searched in CWD and ~/.dialsight when omitted)"

	modelFlagName  = "model"
	modelFlagUsage = "Override the configured model identifier"

	endpointFlagName  = "endpoint"
	endpointFlagUsage = "Override the configured inference endpoint base URL"

	timeoutFlagName  = "timeout"
	timeoutFlagUsage = "Per-call timeout in seconds (0 = use configured default)"

	retriesFlagName  = "retries"
	retriesFlagUsage = "Transport retries per model call (0 = use configured default)"

	validationRetriesFlagName  = "validation-retries"
	validationRetriesFlagUsage = "Validation retries after a failed attempt (-1 = use configured default)"

	imageFlagName  = "image"
	imageFlagUsage = "Path to the image to reason about"

	questionFlagName  = "question"
	questionFlagUsage = "Question to ask about the image (default from config)"

	taskFlagName  = "task"
	taskFlagUsage = "Prompt template set to use"

	useBBoxFlagName  = "use-bbox"
	useBBoxFlagUsage = "Use bounding boxes from the JSON sidecar in the stage-1 prompt"

	saveAnnotationFlagName  = "save-annotation"
	saveAnnotationFlagUsage = "Draw the asserted geometry onto the image next to the results"

	datasetDirFlagName  = "dataset-dir"
	datasetDirFlagUsage = "Dataset directory with images and optional JSON sidecars"

	outputDirFlagName  = "output-dir"
	outputDirFlagUsage = "Directory for result chunks, merged results and the report"

	workersFlagName  = "workers"
	workersFlagUsage = "Concurrent workers (0 = use configured default)"

	maxSamplesFlagName  = "max-samples"
	maxSamplesFlagUsage = "Process at most this many samples (0 = all)"

	missingTokenErrorFormat = "API token is not set; export %s"
)
