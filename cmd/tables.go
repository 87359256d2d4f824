package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sap-gg/clifeed/internal"
	"github.com/sap-gg/clifeed/internal/tables"
)

// tablesCmd prints the lookup tables after the override file was merged in.
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Prints the effective lookup tables as YAML.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tbl, err := tables.Load(ctx, viper.GetString(TablesFileKey))
		if err != nil {
			return fmt.Errorf("loading lookup tables: %w", err)
		}
		if err := internal.NewYAMLEncoder(os.Stdout).EncodeContext(ctx, tbl); err != nil {
			return fmt.Errorf("encoding lookup tables: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
