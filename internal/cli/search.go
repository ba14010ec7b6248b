package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/triply/internal/app/domain/search"
)

const settlePoll = 10 * time.Millisecond

func (a *app) searchCommand() *cobra.Command {
	var (
		asJSON bool
		wait   time.Duration
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search destinations as you type",
		Long: `Search drives the autocomplete controller. With arguments it searches
once for the joined words. Without arguments every line read from stdin is
treated as a new keystroke state, so piping lines in quick succession shows
debouncing and superseded requests. Each published state is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = a.cfg.Search.MaxResults
			}
			ctrl := search.New(
				a.newGeocoder(a.cfg.Geocoding, a.logger.Named("geocoding")),
				a.logger.Named("search"),
				search.WithDebounceDelay(a.cfg.Search.DebounceDelay),
				search.WithMinQueryLength(a.cfg.Search.MinQueryLength),
				search.WithLimit(limit),
				search.WithBaseContext(cmd.Context()),
			)
			defer ctrl.Close()

			out := cmd.OutOrStdout()
			var (
				writeErr  error
				delivered atomic.Uint64
			)
			ctrl.Subscribe(func(s search.State) {
				defer delivered.Store(s.Version)
				if writeErr != nil {
					return
				}
				if asJSON {
					writeErr = json.NewEncoder(out).Encode(s)
					return
				}
				writeErr = printState(out, s)
			})

			if len(args) > 0 {
				ctrl.SetQuery(strings.Join(args, " "))
			} else {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					ctrl.SetQuery(scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read queries: %w", err)
				}
			}

			if err := awaitSettled(ctrl, &delivered, wait); err != nil {
				return err
			}
			// Close detaches the listener, so writeErr is stable from here.
			ctrl.Close()
			return writeErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print every state as a JSON line")
	cmd.Flags().DurationVar(&wait, "wait", 15*time.Second, "how long to wait for the last search to finish")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (defaults to SEARCH_MAX_RESULTS)")
	return cmd
}

// awaitSettled blocks until the controller is neither debouncing nor loading
// and the listener has seen the latest state.
func awaitSettled(ctrl *search.Controller, delivered *atomic.Uint64, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		st := ctrl.State()
		if !st.IsLoading && delivered.Load() >= st.Version {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("search did not finish within %s", wait)
		}
		time.Sleep(settlePoll)
	}
}

func printState(w io.Writer, s search.State) error {
	switch {
	case s.Status == search.StatusError:
		_, err := fmt.Fprintf(w, "[%s] %q %s\n", s.Status, s.Query, s.Error)
		return err
	case s.IsEmpty:
		_, err := fmt.Fprintf(w, "[%s] %q no locations found\n", s.Status, s.Query)
		return err
	case s.HasResults:
		if _, err := fmt.Fprintf(w, "[%s] %q %d results\n", s.Status, s.Query, len(s.Results)); err != nil {
			return err
		}
		for i, loc := range s.Results {
			if _, err := fmt.Fprintf(w, "  %d. %s (%s, %.4f, %.4f)\n",
				i+1, loc.DisplayName, loc.PlaceType, loc.Coordinates.Lat, loc.Coordinates.Lon); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(w, "[%s] %q\n", s.Status, s.Query)
		return err
	}
}
