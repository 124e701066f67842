package main

import (
	"fmt"
	"log/slog"

	"github.com/freightwise/rateshop/internal/cli"
	"github.com/freightwise/rateshop/internal/config"
	"github.com/freightwise/rateshop/internal/model"
	"github.com/freightwise/rateshop/internal/pricing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func quoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Shop a shipment across all permitted carrier tariffs",
		Long: `Shop one shipment across every carrier and tariff the customer is
permitted to use, pick each carrier's lowest cost, and compute a sell price.

Examples:
  rateshop quote --origin-zip 30301 --origin-city Atlanta --origin-state GA \
    --dest-zip 90210 --dest-city "Beverly Hills" --dest-state CA \
    --weight 500 --class 70
  rateshop quote --origin-zip 30301 --dest-zip 90210 --weight 500 --class 70 \
    --customer acme`,
		RunE: runQuote,
	}

	cmd.Flags().String("origin-zip", "", "Origin postal code (required)")
	cmd.Flags().String("origin-city", "", "Origin city")
	cmd.Flags().String("origin-state", "", "Origin 2-letter state")
	cmd.Flags().String("dest-zip", "", "Destination postal code (required)")
	cmd.Flags().String("dest-city", "", "Destination city")
	cmd.Flags().String("dest-state", "", "Destination 2-letter state")
	cmd.Flags().Float64("weight", 0, "Commodity weight in pounds (required)")
	cmd.Flags().String("class", "", "NMFC freight class (required)")
	cmd.Flags().Int("pieces", 1, "Piece count")
	cmd.Flags().Float64Slice("dims", nil, "Dimensions LxWxH in inches (3 values)")
	cmd.Flags().String("payer", "Shipper", "Payer designation (Shipper, Consignee, ThirdParty)")
	cmd.Flags().String("customer", "", "Customer permission profile (default profile if empty)")

	_ = cmd.MarkFlagRequired("origin-zip")
	_ = cmd.MarkFlagRequired("dest-zip")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("class")

	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req, err := shipmentFromFlags(cmd)
	if err != nil {
		return err
	}
	customer, _ := cmd.Flags().GetString("customer")

	tariffs, err := config.LoadTariffs()
	if err != nil {
		return err
	}
	adapters, err := config.BuildAdapters()
	if err != nil {
		return err
	}

	store, err := initHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close history store", "error", closeErr)
		}
	}()

	pctx := pricing.Context{
		Tariffs:     tariffs,
		Allowed:     config.LoadAllowed(customer),
		Adapters:    adapters,
		Aggregation: config.AggregationConfig(),
	}

	engine := pricing.New(store)
	result, err := engine.Shop(ctx, pctx, req)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatTitle("Rate quotes"))
	fmt.Print(cli.RenderQuotes(result))
	return nil
}

func shipmentFromFlags(cmd *cobra.Command) (model.ShipmentRequest, error) {
	originZip, _ := cmd.Flags().GetString("origin-zip")
	originCity, _ := cmd.Flags().GetString("origin-city")
	originState, _ := cmd.Flags().GetString("origin-state")
	destZip, _ := cmd.Flags().GetString("dest-zip")
	destCity, _ := cmd.Flags().GetString("dest-city")
	destState, _ := cmd.Flags().GetString("dest-state")
	weight, _ := cmd.Flags().GetFloat64("weight")
	class, _ := cmd.Flags().GetString("class")
	pieces, _ := cmd.Flags().GetInt("pieces")
	dims, _ := cmd.Flags().GetFloat64Slice("dims")
	payer, _ := cmd.Flags().GetString("payer")

	line := model.CommodityLine{
		FreightClass: class,
		Weight:       weight,
		Pieces:       pieces,
	}
	if len(dims) > 0 {
		if len(dims) != 3 {
			return model.ShipmentRequest{}, fmt.Errorf("--dims needs exactly 3 values, got %d", len(dims))
		}
		line.Length, line.Width, line.Height = dims[0], dims[1], dims[2]
	}

	req := model.ShipmentRequest{
		Origin:      model.Stop{PostalCode: originZip, City: originCity, State: originState, Country: "US"},
		Destination: model.Stop{PostalCode: destZip, City: destCity, State: destState, Country: "US"},
		Commodities: []model.CommodityLine{line},
		Payer:       model.PayerType(payer),
	}

	if err := req.Validate(); err != nil {
		return model.ShipmentRequest{}, err
	}
	return req, nil
}

func init() {
	viper.SetDefault("quoting.timeout_seconds", 30)
	viper.SetDefault("quoting.max_concurrent", 4)
	viper.SetDefault("quoting.retry_attempts", 1)
	viper.SetDefault("history.weight_tolerance_pct", 10)
	viper.SetDefault("history.window_months", 12)
}
