package main

import (
	"fmt"
	"log/slog"

	"github.com/freightwise/rateshop/internal/cli"
	"github.com/freightwise/rateshop/internal/model"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the historical average price for a lane",
		Long: `Query the trailing average of realized prices for a lane, weight, and
freight class. This is the same lookup the pricing engine uses as its
historical floor.

Example:
  rateshop history --origin-zip 30301 --dest-zip 90210 --weight 500 --class 70`,
		RunE: runHistory,
	}

	cmd.Flags().String("origin-zip", "", "Origin postal code (required)")
	cmd.Flags().String("dest-zip", "", "Destination postal code (required)")
	cmd.Flags().Float64("weight", 0, "Shipment weight in pounds (required)")
	cmd.Flags().String("class", "", "NMFC freight class (required)")

	_ = cmd.MarkFlagRequired("origin-zip")
	_ = cmd.MarkFlagRequired("dest-zip")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("class")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	originZip, _ := cmd.Flags().GetString("origin-zip")
	destZip, _ := cmd.Flags().GetString("dest-zip")
	weight, _ := cmd.Flags().GetFloat64("weight")
	class, _ := cmd.Flags().GetString("class")

	store, err := initHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close history store", "error", closeErr)
		}
	}()

	avg, err := store.AveragePrice(ctx, model.HistoricalQuery{
		OriginZip:    originZip,
		DestZip:      destZip,
		Weight:       weight,
		FreightClass: class,
	})
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}

	lane := fmt.Sprintf("%s → %s", model.ZipPrefix(originZip)+"xx", model.ZipPrefix(destZip)+"xx")
	if avg == nil {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("No historical matches for lane %s, class %s, weight %.0f", lane, class, weight)))
		return nil
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Average price for lane %s, class %s, weight %.0f: $%s", lane, class, weight, avg.StringFixed(2))))
	return nil
}
