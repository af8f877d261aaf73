package cli

import (
	"github.com/spf13/cobra"

	"presyo-tracker/internal/app"
)

var (
	runRegionID  int
	runCategory  string
	runOutputDir string
	runDryRun    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scrape-aggregate-publish cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.RunOptions{
			RegionID:  runRegionID,
			Category:  runCategory,
			OutputDir: runOutputDir,
			DryRun:    runDryRun,
		}

		return getApp().Run(cmd.Context(), opts)
	},
}

func init() {
	runCmd.Flags().IntVar(&runRegionID, "region", 0, "Restrict the run to one region id (default: all)")
	runCmd.Flags().StringVar(&runCategory, "category", "", "Restrict the run to one category slug (default: all)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Override the configured output directory")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "List planned fetches without scraping or publishing")
}
