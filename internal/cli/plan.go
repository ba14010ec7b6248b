package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/itinerary"
	"github.com/FACorreiaa/triply/internal/app/models"
)

func (a *app) planCommand() *cobra.Command {
	var (
		trip    models.TripConfiguration
		timeout time.Duration
		quiet   bool
	)
	cmd := &cobra.Command{
		Use:   "plan <destination>",
		Short: "Generate an itinerary",
		Long: `Plan builds a trip from the flags, asks the model for an itinerary and
prints it as JSON on stdout. Progress goes to stderr. When the model fails or
answers with something unusable a local template itinerary is printed
instead, marked with "isFallback".`,
		Example: `  triply plan Lisbon --duration weekend --group couple --budget moderate --interests food,history
  triply plan "Kyoto, Japan" --duration custom --days 5 --pace relaxed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				trip.Destination = args[0]
			}
			trip.SubmittedAt = time.Now()

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			provider, err := a.newGenerator(ctx, a.cfg.AI, a.logger.Named("gemini"))
			if err != nil {
				return err
			}
			svc := itinerary.NewService(provider, a.logger.Named("itinerary"))

			errOut := cmd.ErrOrStderr()
			var sink itinerary.ProgressSink
			if !quiet {
				sink = func(s itinerary.GenerationState) {
					fmt.Fprintf(errOut, "> %s\n", s.Message)
				}
			}

			it, err := svc.Generate(ctx, trip, sink)
			if err != nil {
				return err
			}
			if it.Metadata.IsFallback {
				a.logger.Warn("Printing fallback itinerary", zap.String("reason", it.Metadata.FallbackReason))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(it)
		},
	}

	f := cmd.Flags()
	f.StringVar(&trip.Destination, "destination", "", "destination name (or pass it as the argument)")
	f.StringVar(&trip.Duration, "duration", models.DurationWeekend, "1day, weekend, week or custom")
	f.IntVar(&trip.CustomDays, "days", 0, "number of days when --duration=custom")
	f.StringVar(&trip.Group, "group", "solo", "travel group, e.g. solo, couple, family, friends")
	f.StringVar(&trip.Budget, "budget", "moderate", "budget, e.g. budget, moderate, luxury")
	f.StringSliceVar(&trip.Interests, "interests", nil, "comma separated interests")
	f.StringVar(&trip.Mood, "mood", "", "trip mood")
	f.StringVar(&trip.Pace, "pace", "", "travel pace")
	f.StringVar(&trip.Season, "season", "", "travel season")
	f.StringVar(&trip.Experience, "experience", "", "travel experience level")
	f.StringVar(&trip.Accommodation, "accommodation", "", "accommodation style")
	f.StringVar(&trip.Tech, "tech", "", "technology comfort level")
	f.StringSliceVar(&trip.Transport, "transport", nil, "preferred transport modes")
	f.StringSliceVar(&trip.Dietary, "dietary", nil, "dietary requirements")
	f.StringSliceVar(&trip.Accessibility, "accessibility", nil, "accessibility needs")
	f.StringSliceVar(&trip.AgeGroups, "age-groups", nil, "age groups travelling")
	f.DurationVar(&timeout, "timeout", 2*time.Minute, "give up on the model after this long and print the fallback")
	f.BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}
