// Package cmd - compare command
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"courier-pricing/internal/logging"
)

var (
	compareFlags  shipmentFlags
	compareFormat string
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare prices across all carriers",
	Long: `Price one shipment with every carrier that can handle it, cheapest first.
Carriers that cannot take the shipment are listed with the reason.

Examples:
  courier-pricing compare --country PL --postal 00-950 --weight 2.5 --service standard
  courier-pricing compare --zone EU_WEST --weight 12 --service express --format json`,
	RunE: runCompare,
}

func init() {
	compareFlags.register(compareCmd, false)
	compareCmd.Flags().StringVarP(&compareFormat, "format", "f", "cli", "output format (cli, json)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	req, err := compareFlags.request()
	if err != nil {
		return err
	}

	formatter, err := buildFormatter(cmd, compareFormat)
	if err != nil {
		return err
	}

	eng, err := buildEngine()
	if err != nil {
		return err
	}

	logging.Info("Comparing carriers")
	quotes, err := eng.CompareAllCarriers(context.Background(), req)
	if err != nil {
		return err
	}

	return formatter.RenderComparison(os.Stdout, quotes)
}
