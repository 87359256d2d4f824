package cmd

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sap-gg/clifeed/internal/tables"
)

var nextVersionCmd = &cobra.Command{
	Use:   "next-version <feed> <major>",
	Short: "Prints the release key the next publish into a feed would use.",
	Example: `
clifeed next-version cli-feed-v4.json 4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		major, err := strconv.Atoi(args[1])
		if err != nil || major < 1 {
			return fmt.Errorf("invalid major version %q", args[1])
		}

		tbl, err := tables.Load(ctx, viper.GetString(TablesFileKey))
		if err != nil {
			return fmt.Errorf("loading lookup tables: %w", err)
		}
		if _, ok := tbl.Feed(name); !ok {
			log.Warn().Str("feed", name).Msg("feed is not in the feed identity table")
		}

		engine, err := newEngine(ctx, "", true)
		if err != nil {
			return err
		}
		next, err := engine.NextVersion(ctx, name, major)
		if err != nil {
			return err
		}

		fmt.Println(next)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nextVersionCmd)
}
