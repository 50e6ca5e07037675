package dialsight

import (
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath        string
	model             string
	endpoint          string
	timeoutSeconds    int
	maxRetries        int
	validationRetries int
}

var globals = globalOptions{validationRetries: -1}

var rootCmd = &cobra.Command{
	Use:           rootCommandUse,
	Short:         rootCommandShort,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	persistentFlags := rootCmd.PersistentFlags()
	persistentFlags.StringVar(&globals.configPath, configFlagName, "", configFlagUsage)
	persistentFlags.StringVar(&globals.model, modelFlagName, "", modelFlagUsage)
	persistentFlags.StringVar(&globals.endpoint, endpointFlagName, "", endpointFlagUsage)
	persistentFlags.IntVar(&globals.timeoutSeconds, timeoutFlagName, 0, timeoutFlagUsage)
	persistentFlags.IntVar(&globals.maxRetries, retriesFlagName, 0, retriesFlagUsage)
	persistentFlags.IntVar(&globals.validationRetries, validationRetriesFlagName, -1, validationRetriesFlagUsage)

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newEvalCommand())
	rootCmd.AddCommand(newListTemplatesCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
