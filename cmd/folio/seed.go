package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
)

var (
	seedConfig string
	seedFile   string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the seed content into the configured store",
	Long: `Seed inserts the built-in sample posts, photos and publications (or the
ones in --file) into the store named in the config. Running it twice
inserts the records twice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := folio.LoadConfig(seedConfig)
		if err != nil {
			return err
		}
		seed := content.DefaultSeed()
		if seedFile != "" {
			if seed, err = loadSeedFile(seedFile); err != nil {
				return err
			}
		}

		st, err := content.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return errors.Wrap(err, "open store")
		}
		defer st.Close()

		n, err := seed.Apply(cmd.Context(), st)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedConfig, "config", "c", "folio.yaml", "Path to the site config file")
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML seed file (default: built-in)")
	rootCmd.AddCommand(seedCmd)
}
