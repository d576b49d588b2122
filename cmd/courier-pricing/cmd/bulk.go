// Package cmd - bulk command
package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
	"courier-pricing/internal/logging"
)

var (
	bulkFormat            string
	bulkDiscountThreshold int
	bulkDiscountPercent   string
)

// bulkCmd represents the bulk command
var bulkCmd = &cobra.Command{
	Use:   "bulk [requests.json]",
	Short: "Price a batch of shipments",
	Long: `Price a batch of shipments from a JSON file holding an array of
calculation requests. Lines that fail are reported individually and do
not abort the batch.

Examples:
  courier-pricing bulk shipments.json
  courier-pricing bulk --discount-threshold 10 --discount-percent 5 shipments.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBulk,
}

func init() {
	bulkCmd.Flags().StringVarP(&bulkFormat, "format", "f", "cli", "output format (cli, json)")
	bulkCmd.Flags().IntVar(&bulkDiscountThreshold, "discount-threshold", 0, "minimum successful shipments for the bulk discount")
	bulkCmd.Flags().StringVar(&bulkDiscountPercent, "discount-percent", "", "bulk discount percentage off the aggregate total")
}

func runBulk(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(errors.TypeValidation, "failed to read requests file", err)
	}

	var reqs []types.PriceCalculationRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return errors.Wrap(errors.TypeValidation, "failed to parse requests file", err)
	}

	var bulkDiscount *types.BulkDiscount
	if bulkDiscountPercent != "" {
		percent, err := decimal.NewFromString(bulkDiscountPercent)
		if err != nil {
			return errors.Validationf("invalid discount percent %q", bulkDiscountPercent)
		}
		bulkDiscount = &types.BulkDiscount{
			Threshold: bulkDiscountThreshold,
			Percent:   percent,
		}
	}

	formatter, err := buildFormatter(cmd, bulkFormat)
	if err != nil {
		return err
	}

	eng, err := buildEngine()
	if err != nil {
		return err
	}

	logging.Info("Calculating bulk batch")
	result, err := eng.CalculateBulk(context.Background(), reqs, bulkDiscount)
	if err != nil {
		return err
	}

	return formatter.RenderBulk(os.Stdout, result)
}
