// Package output renders calculation results for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter renders calculation results in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// RenderBreakdown renders a single quote
	RenderBreakdown(w io.Writer, b *types.PriceBreakdown) error

	// RenderComparison renders a carrier comparison
	RenderComparison(w io.Writer, quotes []types.CarrierQuote) error

	// RenderBulk renders a bulk calculation result
	RenderBulk(w io.Writer, r *types.BulkResult) error
}

// NewFormatter returns the formatter for the given format name.
// showDetails itemizes service charges and promotions in CLI output.
func NewFormatter(format string, showDetails bool) (Formatter, error) {
	switch Format(format) {
	case FormatCLI:
		return &CLIFormatter{ShowDetails: showDetails}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, errors.Validationf("unknown output format %q", format)
	}
}

// JSONFormatter renders results as indented JSON
type JSONFormatter struct{}

// Format returns the format type
func (f *JSONFormatter) Format() Format { return FormatJSON }

// RenderBreakdown renders a single quote as JSON
func (f *JSONFormatter) RenderBreakdown(w io.Writer, b *types.PriceBreakdown) error {
	return f.encode(w, b)
}

// RenderComparison renders a carrier comparison as JSON
func (f *JSONFormatter) RenderComparison(w io.Writer, quotes []types.CarrierQuote) error {
	return f.encode(w, quotes)
}

// RenderBulk renders a bulk result as JSON
func (f *JSONFormatter) RenderBulk(w io.Writer, r *types.BulkResult) error {
	return f.encode(w, r)
}

func (f *JSONFormatter) encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to encode result", err)
	}
	return nil
}

// CLIFormatter renders results as human-readable tables
type CLIFormatter struct {
	// ShowDetails itemizes service charges and applied promotions
	ShowDetails bool
}

// Format returns the format type
func (f *CLIFormatter) Format() Format { return FormatCLI }

// RenderBreakdown renders a single quote as a table
func (f *CLIFormatter) RenderBreakdown(w io.Writer, b *types.PriceBreakdown) error {
	fmt.Fprintf(w, "Quote %s\n", b.CalculationID)
	fmt.Fprintf(w, "  Lane:              %s / %s / %s\n", b.CarrierCode, b.ZoneCode, b.ServiceType)
	fmt.Fprintf(w, "  Effective weight:  %s kg\n", b.EffectiveWeightKg)
	fmt.Fprintf(w, "  Base price:        %s\n", money(b.BasePrice, b.Currency))
	if f.ShowDetails {
		for _, sc := range b.ServiceCharges {
			fmt.Fprintf(w, "    + %-15s %s (%s)\n", sc.Code, money(sc.Amount, b.Currency), sc.Source)
		}
	} else if !b.AdditionalServicesTotal.IsZero() {
		fmt.Fprintf(w, "  Services:          %s\n", money(b.AdditionalServicesTotal, b.Currency))
	}
	if !b.CustomerDiscount.IsZero() {
		fmt.Fprintf(w, "  Customer discount: -%s\n", money(b.CustomerDiscount, b.Currency))
	}
	if f.ShowDetails {
		for _, p := range b.AppliedPromotions {
			label := p.PromotionID
			if p.PromoCode != "" {
				label = p.PromoCode
			}
			fmt.Fprintf(w, "  Promotion %-9s -%s\n", label+":", money(p.Amount, b.Currency))
		}
	} else if !b.PromotionalDiscount.IsZero() {
		fmt.Fprintf(w, "  Promotions:        -%s\n", money(b.PromotionalDiscount, b.Currency))
	}
	fmt.Fprintf(w, "  Tax (%s%%):         %s\n", b.TaxRatePercent, money(b.TaxAmount, b.Currency))
	fmt.Fprintf(w, "  TOTAL:             %s\n", money(b.TotalPrice, b.Currency))
	return nil
}

// RenderComparison renders a carrier comparison as a table, priced
// quotes first in the order the engine returned them
func (f *CLIFormatter) RenderComparison(w io.Writer, quotes []types.CarrierQuote) error {
	fmt.Fprintf(w, "%-15s %-15s %s\n", "CARRIER", "TOTAL", "NOTES")
	for _, q := range quotes {
		if q.Priced() {
			fmt.Fprintf(w, "%-15s %-15s\n", q.CarrierCode, money(q.Breakdown.TotalPrice, q.Breakdown.Currency))
			continue
		}
		fmt.Fprintf(w, "%-15s %-15s %s\n", q.CarrierCode, "-", q.SkipReason)
	}
	return nil
}

// RenderBulk renders a bulk result as a table
func (f *CLIFormatter) RenderBulk(w io.Writer, r *types.BulkResult) error {
	for _, item := range r.Items {
		if item.Succeeded() {
			fmt.Fprintf(w, "  [%d] %-15s %s\n", item.Index, item.Breakdown.CarrierCode,
				money(item.Breakdown.TotalPrice, item.Breakdown.Currency))
			continue
		}
		fmt.Fprintf(w, "  [%d] FAILED (%s): %s\n", item.Index, item.ErrorType, item.ErrorMessage)
	}
	fmt.Fprintf(w, "Succeeded: %d  Failed: %d\n", r.SucceededCount, r.FailedCount)
	fmt.Fprintf(w, "Aggregate: %s\n", money(r.AggregateTotal, r.Currency))
	if !r.DiscountApplied.IsZero() {
		fmt.Fprintf(w, "Bulk discount: -%s\n", money(r.DiscountApplied, r.Currency))
	}
	fmt.Fprintf(w, "Final total: %s\n", money(r.FinalTotal, r.Currency))
	return nil
}

func money(v decimal.Decimal, c types.Currency) string {
	if c == "" {
		return v.String()
	}
	return v.StringFixed(c.MinorUnits()) + " " + string(c)
}
