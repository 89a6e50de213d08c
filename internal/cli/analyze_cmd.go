package cli

import (
	"encoding/json"
	"fmt"

	service "github.com/okian/swimstats/internal/app"
	"github.com/okian/swimstats/internal/domain/stats"
	"github.com/okian/swimstats/internal/ingest"
	"github.com/spf13/cobra"
)

type analyzeOutput struct {
	Ingest service.IngestReport `json:"ingest"`
	Errors []string             `json:"errors,omitempty"`
	Report stats.SessionReport  `json:"report"`
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "analyze <file|->",
		Short: "Ingest a training sheet and print the session report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			doc, err := ingest.DecodeAttempts(in)
			if err != nil {
				return err
			}
			bulk, err := doc.Bulk()
			if err != nil {
				return err
			}

			svc := app.newService()
			circle, err := svc.ParseCircle(doc.Circle)
			if err != nil {
				return err
			}
			header := service.SessionHeader{
				ID:         doc.SessionID,
				Circle:     circle,
				Sets:       doc.Sets,
				RepsPerSet: doc.Reps,
			}
			if sessionID != "" {
				header.ID = sessionID
			}

			sess, report, err := svc.IngestAttempts(ctx, header, bulk)
			if err != nil {
				return fmt.Errorf("session: %w", err)
			}

			out := analyzeOutput{Ingest: report, Report: svc.AnalyzeSession(ctx, sess)}
			for _, e := range report.Errors {
				out.Errors = append(out.Errors, e.Error())
			}
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Override the session id from the sheet")

	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
