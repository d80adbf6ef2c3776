package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Prints the merged configuration (defaults, config file, environment) so threshold tuning can start from the values actually in effect.",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Platform.APIKey != "" {
			shown.Platform.APIKey = "<redacted>"
		}

		out, err := yaml.Marshal(&shown)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
