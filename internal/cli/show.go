package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"presyo-tracker/internal/app"
)

var (
	showRegionID  int
	showCommodity string
	showLimit     int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent stored observations for one series",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			RegionID:  showRegionID,
			Commodity: showCommodity,
			Limit:     showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showRegionID, "region", 0, "Region id of the series")
	showCmd.Flags().StringVar(&showCommodity, "commodity", "", "Commodity name of the series")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of observations to display")
}
