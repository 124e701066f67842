package main

import (
	"fmt"
	"sort"

	"github.com/freightwise/rateshop/internal/carrier"
	"github.com/freightwise/rateshop/internal/cli"
	"github.com/freightwise/rateshop/internal/config"
	"github.com/freightwise/rateshop/internal/model"

	"github.com/spf13/cobra"
)

func tariffsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tariffs",
		Short: "List configured tariff accounts and credential health",
		RunE:  runTariffs,
	}
}

func runTariffs(_ *cobra.Command, _ []string) error {
	tariffs, err := config.LoadTariffs()
	if err != nil {
		return err
	}

	carrierIDs := make([]string, 0, len(tariffs))
	for id := range tariffs {
		carrierIDs = append(carrierIDs, id)
	}
	sort.Strings(carrierIDs)

	fmt.Println(cli.FormatTitle("Configured tariffs"))
	for _, id := range carrierIDs {
		names := make([]string, 0, len(tariffs[id]))
		for name := range tariffs[id] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			account := tariffs[id][name]
			line := fmt.Sprintf("%-10s %-24s margin %5.1f%%", id, name, account.Margin)
			if missing := missingCredentials(account); missing != "" {
				fmt.Println(cli.FormatError(fmt.Sprintf("%s  missing %s", line, missing)))
			} else {
				fmt.Println(cli.FormatSuccess(line))
			}
		}
	}
	return nil
}

// missingCredentials names the auth fields a tariff record lacks for its
// carrier, or empty if the record is complete.
func missingCredentials(account model.TariffAccount) string {
	switch account.Carrier {
	case carrier.Estes:
		if account.Username == "" || account.Password == "" {
			return "username/password"
		}
	case carrier.Daylight:
		if account.APIKey == "" {
			return "api_key"
		}
	case carrier.Saia:
		if account.AccessCode == "" || account.CustomerNumber == "" {
			return "access_code/customer_number"
		}
	}
	return ""
}
