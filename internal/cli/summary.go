package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"afi/internal/analytics"
)

// Summary is the national picture printed by the summary command.
type Summary struct {
	Records   int                      `json:"records"`
	National  analytics.NationalStats  `json:"national"`
	TopStates []analytics.StateSummary `json:"topStates"`
}

func newSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print national statistics and the highest-friction states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if top < 1 {
				return &ExitError{Code: ExitCommandError, Message: "--top must be at least 1"}
			}
			handle, err := rootOpts.openStore(cmd.Context(), rootOpts.Config.Database)
			if err != nil {
				return err
			}
			defer handle.close()

			records, err := handle.store.Query(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "query records", Err: err}
			}
			states := analytics.StateSummaries(records)
			if len(states) > top {
				states = states[:top]
			}
			return printSummary(cmd.OutOrStdout(), rootOpts.Format, Summary{
				Records:   len(records),
				National:  analytics.NationalStatistics(records),
				TopStates: states,
			})
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 10, "number of states to list")
	return cmd
}

func printSummary(w io.Writer, format string, s Summary) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(s)
	}
	n := s.National
	fmt.Fprintf(w, "records: %d  districts: %d  high friction: %d\n", s.Records, n.TotalDistricts, n.HighFrictionDistricts)
	fmt.Fprintf(w, "median: %.2f  p95: %.2f  p99: %.2f  min: %.2f  max: %.2f\n\n", n.Median, n.P95, n.P99, n.Min, n.Max)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tMEAN AFI\tRECORDS")
	for _, st := range s.TopStates {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\n", st.State, st.MeanAFI, st.DistrictCount)
	}
	return tw.Flush()
}
