package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"imagecheck/internal/config"
	"imagecheck/pkg/domain"

	"github.com/spf13/cobra"
)

func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check URL [URL...]",
		Short: "Validates the given image URLs once and prints the report as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			meter, err := newMeter()
			if err != nil {
				return err
			}

			eng, err := buildEngine(cfg, meter)
			if err != nil {
				return err
			}

			reqs := make([]domain.ImageRequest, 0, len(args))
			for _, arg := range args {
				reqs = append(reqs, domain.ImageRequest{URL: arg})
			}

			report, err := eng.Process(ctx, reqs)
			if err != nil {
				return fmt.Errorf("could not process batch: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("could not encode report: %w", err)
			}

			if report.Summary.Invalid > 0 {
				cmd.SilenceUsage = true

				return fmt.Errorf("%d of %d image URLs are invalid", report.Summary.Invalid, report.Summary.Total)
			}

			return nil
		},
	}

	return cmd
}
