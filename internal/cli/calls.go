package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/D-ignite/webex-cdr/internal/calls"
	"github.com/D-ignite/webex-cdr/internal/render"
	"github.com/D-ignite/webex-cdr/internal/reporting"
	"github.com/D-ignite/webex-cdr/internal/viewer"

	"github.com/spf13/cobra"
)

type callsOutput struct {
	Filter   viewer.DirectionFilter `json:"filter"`
	Records  []calls.Record         `json:"records"`
	Stats    reporting.CallsSummary `json:"stats"`
	Failures []failureOutput        `json:"failures,omitempty"`
}

type failureOutput struct {
	UserID string `json:"userId"`
	User   string `json:"user"`
	Error  string `json:"error"`
}

func newCallsCmd(gateway func() viewer.Gateway, now func() time.Time) *cobra.Command {
	var (
		start    string
		end      string
		limit    int
		users    []string
		allUsers bool
		filter   string
		partial  bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Fetch, merge and filter call history for one or more users",
		Long:  "calls checks gateway health, loads the user roster, issues one call-history request per selected user in parallel, and prints the merged records newest first with aggregate statistics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := viewer.ParseDirectionFilter(filter)
			if err != nil {
				return err
			}

			policy := viewer.MergeAllOrNothing
			if partial {
				policy = viewer.MergePartial
			}
			app := viewer.NewApp(gateway(), viewer.WithMergePolicy(policy))

			h, err := app.CheckHealth(cmd.Context())
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), render.Health(h, err))
				return err
			}
			if err := app.LoadEntities(cmd.Context()); err != nil {
				return fmt.Errorf("load users: %w", err)
			}

			selected := users
			if allUsers {
				selected = selected[:0:0]
				for _, p := range app.Entities() {
					selected = append(selected, p.ID)
				}
			}

			today := now().UTC()
			if start == "" {
				start = today.AddDate(0, 0, -7).Format(time.DateOnly)
			}
			if end == "" {
				end = today.Format(time.DateOnly)
			}

			err = app.SubmitQuery(cmd.Context(), viewer.QueryInput{
				StartDate: start,
				EndDate:   end,
				Limit:     limit,
				EntityIDs: selected,
			})
			if err != nil {
				if errors.Is(err, viewer.ErrValidation) {
					return err
				}
				return fmt.Errorf("error fetching call data: %w", err)
			}
			if err := app.ApplyDirectionFilter(dir); err != nil {
				return err
			}

			if asJSON {
				out := callsOutput{Filter: app.Filter(), Records: app.Visible(), Stats: app.Stats()}
				for _, f := range app.Failures() {
					out.Failures = append(out.Failures, failureOutput{UserID: f.EntityID, User: f.EntityName, Error: f.Err.Error()})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			w := cmd.OutOrStdout()
			if msg := render.Failures(app.Failures()); msg != "" {
				if _, err := fmt.Fprintln(w, msg); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(w, render.Calls(app.Visible(), len(app.Records()), app.Filter(), app.Stats(), render.Options{}))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&start, "start", "", "start date YYYY-MM-DD (default: 7 days ago)")
	f.StringVar(&end, "end", "", "end date YYYY-MM-DD (default: today)")
	f.IntVar(&limit, "limit", viewer.DefaultLimit, fmt.Sprintf("records per user, 1..%d", viewer.MaxLimit))
	f.StringSliceVarP(&users, "user", "u", nil, "user id to include (repeatable)")
	f.BoolVar(&allUsers, "all-users", false, "include every user in the roster")
	f.StringVar(&filter, "filter", string(viewer.FilterAll), "direction filter: all, inbound, outbound, missed")
	f.BoolVar(&partial, "partial", false, "show results for users that succeeded when others fail")
	f.BoolVar(&asJSON, "json", false, "print records and stats as JSON")
	cmd.MarkFlagsMutuallyExclusive("user", "all-users")

	return cmd
}
