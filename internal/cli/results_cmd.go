package cli

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/swimstats/internal/adapters/mq/worker"
	"github.com/okian/swimstats/internal/adapters/repository"
	service "github.com/okian/swimstats/internal/app"
	"github.com/okian/swimstats/internal/ingest"
	"github.com/spf13/cobra"
)

const drainTimeout = 30 * time.Second

type outcomeView struct {
	worker.Outcome
	Error string `json:"error,omitempty"`
}

type rejection struct {
	Ref   string `json:"ref"`
	Error string `json:"error"`
}

type resultsOutput struct {
	Outcomes     []outcomeView                 `json:"outcomes"`
	Rejected     []rejection                   `json:"rejected,omitempty"`
	Leaderboards map[string][]repository.Entry `json:"leaderboards"`
}

// outcomeLog collects outcomes from worker goroutines.
type outcomeLog struct {
	mu   sync.Mutex
	list []worker.Outcome
}

func (l *outcomeLog) add(_ context.Context, o worker.Outcome) {
	l.mu.Lock()
	l.list = append(l.list, o)
	l.mu.Unlock()
}

func newResultsCmd(app *App) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "results <file|->",
		Short: "Record competition results and print outcomes and leaderboards as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			doc, err := ingest.DecodeResults(in)
			if err != nil {
				return err
			}

			outcomes := &outcomeLog{}
			svc := app.newService(service.WithOutcomeHandler(outcomes.add))
			if err := svc.Start(ctx); err != nil {
				return err
			}

			out := resultsOutput{Leaderboards: map[string][]repository.Entry{}}
			order := make(map[string]int, len(doc.Results))
			for i, rec := range doc.Results {
				sub, err := rec.Submission(svc.Codec())
				if err != nil {
					out.Rejected = append(out.Rejected, rejection{Ref: rec.Ref(i), Error: err.Error()})
					continue
				}
				id, err := svc.SubmitResult(ctx, sub)
				if err != nil {
					out.Rejected = append(out.Rejected, rejection{Ref: rec.Ref(i), Error: err.Error()})
					continue
				}
				order[id] = i
			}

			drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
			defer cancel()
			if err := svc.Drain(drainCtx); err != nil {
				return err
			}

			// Workers finish out of order; report in document order.
			sort.SliceStable(outcomes.list, func(i, j int) bool {
				return order[outcomes.list[i].ResultID] < order[outcomes.list[j].ResultID]
			})
			out.Outcomes = make([]outcomeView, 0, len(outcomes.list))
			for _, o := range outcomes.list {
				v := outcomeView{Outcome: o}
				if o.Err != nil {
					v.Error = o.Err.Error()
				}
				out.Outcomes = append(out.Outcomes, v)
			}

			for _, style := range svc.Styles(ctx) {
				rows, err := svc.TopN(ctx, style, top)
				if err != nil {
					return err
				}
				out.Leaderboards[style] = rows
			}
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Leaderboard rows per style")

	return cmd
}
