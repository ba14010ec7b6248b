package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/triply/internal/app/domain/itinerary"
)

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the itinerary provider configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(itinerary.StatusFor(a.cfg.AI))
		},
	}
}
