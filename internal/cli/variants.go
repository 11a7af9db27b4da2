package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gramtest/internal/pipespec"
)

// VariantsResult is the JSON payload of the variants command.
type VariantsResult struct {
	Spec      string   `json:"spec"`
	Default   string   `json:"default"`
	Available []string `json:"available"`
}

// NewVariantsCommand creates the variants command.
func NewVariantsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "variants SPEC",
		Short: "List the pipeline variants a spec provides",
		Long: `Print the default and available pipeline variants of a pipeline spec
(pipespec.xml, .zcheck or .zhfst).

Examples:
  gramtest variants tools/grammarcheckers/pipespec.xml
  gramtest variants --format json se.zcheck`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := pipespec.Locate(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read pipeline spec", err)
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Success(VariantsResult{
				Spec:      spec.Path,
				Default:   spec.Default,
				Available: spec.Available,
			}, func(w io.Writer) {
				for _, name := range spec.Available {
					marker := " "
					if name == spec.Default {
						marker = "*"
					}
					fmt.Fprintf(w, "%s %s\n", marker, name)
				}
			})
		},
	}
}
