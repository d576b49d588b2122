// Package cmd - quote command
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"courier-pricing/internal/logging"
)

var (
	quoteFlags  shipmentFlags
	quoteFormat string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Calculate the price for one shipment",
	Long: `Calculate a full price breakdown for a single shipment with one carrier.

Examples:
  courier-pricing quote --carrier meest --country PL --postal 00-950 --weight 2.5 --service standard
  courier-pricing quote --carrier dhl --zone EU_WEST --weight 12 --add-service cod --add-service insurance --declared-value 800
  courier-pricing quote --carrier meest --country PL --postal 00-950 --weight 2.5 --customer cust-1 --promo SAVE5`,
	RunE: runQuote,
}

func init() {
	quoteFlags.register(quoteCmd, true)
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "cli", "output format (cli, json)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	req, err := quoteFlags.request()
	if err != nil {
		return err
	}

	formatter, err := buildFormatter(cmd, quoteFormat)
	if err != nil {
		return err
	}

	eng, err := buildEngine()
	if err != nil {
		return err
	}

	logging.Info("Calculating quote")
	breakdown, err := eng.Calculate(context.Background(), req)
	if err != nil {
		return err
	}

	return formatter.RenderBreakdown(os.Stdout, breakdown)
}
