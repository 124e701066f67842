package cli

import (
	"fmt"
	"strings"

	"github.com/freightwise/rateshop/internal/pricing"
)

// RenderQuotes formats the result of a pricing run as a table of quotes
// followed by any skipped carriers.
func RenderQuotes(result pricing.Result) string {
	var b strings.Builder

	if len(result.Quotes) == 0 {
		b.WriteString(FormatWarning("No carriers returned a rate for this shipment"))
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("%-12s %-20s %12s %12s  %s",
			"CARRIER", "TARIFF", "COST", "PRICE", "BASIS")
		b.WriteString(TableHeaderStyle.Render(header))
		b.WriteString("\n")
		for _, q := range result.Quotes {
			row := fmt.Sprintf("%-12s %-20s %12s %12s  %s",
				q.Carrier,
				q.Tariff,
				"$"+q.Cost.StringFixed(2),
				"$"+q.Price.StringFixed(2),
				q.Rationale)
			b.WriteString(TableCellStyle.Render(row))
			b.WriteString("\n")
		}
	}

	for _, s := range result.Skipped {
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("  %s %s: %s", ErrorIcon, s.Carrier, s.Reason)))
		b.WriteString("\n")
	}

	return b.String()
}
