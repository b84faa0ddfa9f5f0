package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gizatt/skybox/internal/frame"
)

func newResolveCommand(opts *rootOptions) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Run one resolution pass and print the resulting frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, offline)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip all network access; serve only cached element text")
	return cmd
}

func runResolve(cmd *cobra.Command, opts *rootOptions, offline bool) error {
	logger, err := opts.logger()
	if err != nil {
		return err
	}
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	resolver, closeStore, err := buildResolver(cfg, logger, offline)
	if err != nil {
		return err
	}
	defer closeStore()

	frames := resolver.ResolveAll(cmd.Context())

	headers := []string{"SATELLITE", "TIMESTAMP", "SIZE", "FOV", "EXPECTED FOV", "DISTANCE KM", "IMAGE"}
	rows := make([][]string, 0, len(frames))
	for _, f := range frames {
		rows = append(rows, []string{
			f.SatelliteID,
			f.Timestamp.UTC().Format(time.RFC3339),
			fmt.Sprintf("%dx%d", f.Width, f.Height),
			fmt.Sprintf("%.1f°", f.FieldOfViewDeg),
			fmt.Sprintf("%.1f°", frame.ExpectedFieldOfView(f.PositionECEF)),
			fmt.Sprintf("%.0f", f.PositionECEF.Magnitude()/1000.0),
			f.ImageURL,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d satellites resolved\n", len(frames), len(cfg.Satellites))
	return nil
}
