package seed

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tphakala/wildlife-analytics/internal/app"
)

// Command creates the import command that loads cameras, species and
// detections from a YAML seed file.
func Command(ctx *app.Context) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [seed.yaml]",
		Short: "Import cameras, species and detections from YAML",
		Long:  "Upsert cameras and species and insert detections from a YAML seed file. Use - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			a, err := ctx.Open()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			res, err := a.Import(cmd.Context(), in)
			if err != nil {
				return err
			}
			return app.Encode(cmd.OutOrStdout(), format, res)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", app.FormatJSON, "Output format: json, yaml")

	return cmd
}
