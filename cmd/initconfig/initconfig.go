package initconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tphakala/wildlife-analytics/internal/app"
	"github.com/tphakala/wildlife-analytics/internal/conf"
)

// Command creates the init-config command that writes the default config.yaml.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration file",
		Long:  "Write the default config.yaml to path, --config, or ~/.config/wildlife-analytics/config.yaml. Existing files are left untouched.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.ConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, ".config", "wildlife-analytics", "config.yaml")
			}

			if err := conf.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "default configuration written to %s\n", path)
			return err
		},
	}
}
