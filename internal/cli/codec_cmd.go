package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/swimstats/internal/domain/timecodec"
	"github.com/spf13/cobra"
)

func newParseCmd(app *App) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "parse <time>",
		Short: "Convert an entered time (M:SS.ss or SS.ss) to seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []timecodec.Option
			if strict || app.settings().StrictSeconds {
				opts = append(opts, timecodec.WithStrictSeconds())
			}
			d, err := timecodec.New(opts...).Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(d, 'f', -1, 64))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Reject 60 or more seconds within a minute")

	return cmd
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <seconds>",
		Short: "Render seconds as a display time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := strconv.ParseFloat(args[0], 64)
			if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
				return fmt.Errorf("invalid seconds %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), timecodec.Format(d))
			return nil
		},
	}
}
