package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gizatt/skybox/internal/config"
)

func newCatalogCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the configured satellite catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			headers := []string{"ID", "ALIASES", "FOV", "STRATEGY", "IMAGERY"}
			rows := make([][]string, 0, len(cfg.Satellites))
			for _, sat := range cfg.Satellites {
				rows = append(rows, []string{
					sat.ID,
					strings.Join(sat.Aliases, ", "),
					fmt.Sprintf("%.1f°", sat.FOV()),
					sat.ImageStrategy,
					imagerySummary(sat),
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
}

func imagerySummary(sat config.Satellite) string {
	if sat.ImageStrategy == config.StrategyListing {
		return sat.ListingURL
	}
	if len(sat.ImageURLs) == 1 {
		return sat.ImageURLs[0]
	}
	return fmt.Sprintf("%s (+%d more)", sat.ImageURLs[0], len(sat.ImageURLs)-1)
}
