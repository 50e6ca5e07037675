package dialsight

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/dialsight/internal/prompts"
)

func newListTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   listTemplatesCommandUse,
		Short: listTemplatesCommandShort,
		RunE: func(command *cobra.Command, arguments []string) error {
			// Loading the configuration registers any template override file.
			if _, configurationErr := loadRootConfiguration(); configurationErr != nil {
				return configurationErr
			}
			for _, name := range prompts.Names() {
				fmt.Fprintln(command.OutOrStdout(), name)
			}
			return nil
		},
	}
}
