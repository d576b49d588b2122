// Package cmd provides the CLI commands for courier-pricing.
package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"courier-pricing/adapters/ratecard"
	"courier-pricing/core/engine"
	"courier-pricing/core/output"
	"courier-pricing/core/types"
	"courier-pricing/internal/config"
	"courier-pricing/internal/logging"
)

var (
	cfgFile  string
	cardsDir string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "courier-pricing",
	Short: "Calculate shipping prices across courier carriers",
	Long: `courier-pricing is a multi-carrier shipping price calculator.

It resolves destination zones, applies carrier pricing tables and
weight rules, and layers additional services, negotiated customer
discounts and promotions into a full price breakdown.

Examples:
  courier-pricing quote --carrier meest --country PL --postal 00-950 --weight 2.5 --service standard
  courier-pricing compare --country PL --postal 00-950 --weight 2.5 --service standard
  courier-pricing bulk shipments.json`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.courier-pricing.json)")
	rootCmd.PersistentFlags().StringVar(&cardsDir, "cards", "", "rate-card directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// buildFormatter resolves the output format, falling back to the
// configured default when the flag was not set explicitly
func buildFormatter(cmd *cobra.Command, flagValue string) (output.Formatter, error) {
	cfg := config.Get()
	format := flagValue
	if !cmd.Flags().Changed("format") && cfg.Output.DefaultFormat != "" {
		format = cfg.Output.DefaultFormat
	}
	return output.NewFormatter(format, cfg.Output.ShowBreakdown)
}

// buildEngine loads the rate cards and wires the pricing engine
func buildEngine() (*engine.Engine, error) {
	cfg := config.Get()

	dir := cfg.Pricing.RateCardDir
	if cardsDir != "" {
		dir = cardsDir
	}

	cat, err := ratecard.NewLoader().LoadDir(dir)
	if err != nil {
		return nil, err
	}

	opts := engine.DefaultOptions()
	opts.DefaultCurrency = types.Currency(cfg.Pricing.DefaultCurrency)
	if rate, err := decimal.NewFromString(cfg.Pricing.DefaultTaxRatePercent); err == nil {
		opts.DefaultTaxRatePercent = rate
	}
	opts.MaxBatchSize = cfg.Pricing.MaxBatchSize
	opts.Workers = cfg.Pricing.Workers

	return engine.New(cat.Repositories(), opts), nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("courier-pricing version 0.1.0")
	},
}

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		fmt.Printf("Default currency:  %s\n", cfg.Pricing.DefaultCurrency)
		fmt.Printf("Default tax rate:  %s%%\n", cfg.Pricing.DefaultTaxRatePercent)
		fmt.Printf("Max batch size:    %d\n", cfg.Pricing.MaxBatchSize)
		fmt.Printf("Workers:           %d\n", cfg.Pricing.Workers)
		fmt.Printf("Rate-card dir:     %s\n", cfg.Pricing.RateCardDir)
		return nil
	},
}
