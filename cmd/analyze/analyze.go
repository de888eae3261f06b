// Package analyze implements the one-shot trend analysis command.
package analyze

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cropsense/cropsense-go/internal/conf"
	"github.com/cropsense/cropsense-go/internal/datastore"
	"github.com/cropsense/cropsense-go/internal/logging"
	"github.com/cropsense/cropsense-go/internal/temporal"
)

// Command creates the analyze command.
func Command(settings *conf.Settings) *cobra.Command {
	var metric string
	var days int

	cmd := &cobra.Command{
		Use:   "analyze [farm-id]",
		Short: "Run a trend analysis for one farm and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(settings, args[0], metric, days)
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", "NDVI", "Vegetation index to analyze")
	cmd.Flags().IntVar(&days, "days", 0, "Lookback window in days (0 uses the configured default)")

	return cmd
}

func runAnalysis(settings *conf.Settings, farmID, metric string, days int) error {
	logging.Init()

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database backend enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() { _ = ds.Close() }()

	service := temporal.NewService(ds, settings.Analysis, nil)

	report, err := service.AnalyzeFarmTrend(farmID, metric, days)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
