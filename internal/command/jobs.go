package command

import (
	"context"
	"fmt"
	"time"
)

func formatJobTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}

func handleListJobs(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	limit := intArg(args, "limit", 25)
	runs, err := client.ListJobRuns(ctx, limit)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		state := r.State.LifeCycleState
		if r.State.ResultState != "" {
			state = r.State.ResultState
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.RunID),
			r.RunName,
			state,
			formatJobTimestamp(r.StartTime),
		})
	}
	res := OK(map[string]any{
		"title":   "Job runs",
		"headers": []string{"Run ID", "Name", "State", "Started"},
		"rows":    rows,
		"count":   len(runs),
	}, fmt.Sprintf("Found %d recent job runs", len(runs)))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

func handleJobStatus(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	runID := int64(intArg(args, "run_id", 0))
	if runID == 0 {
		return Fail("run_id is required"), nil
	}
	run, err := client.GetJobRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	res := OK(map[string]any{
		"title":   fmt.Sprintf("Job run %d", run.RunID),
		"headers": []string{"Field", "Value"},
		"rows": [][]string{
			{"Run ID", fmt.Sprintf("%d", run.RunID)},
			{"Name", run.RunName},
			{"Lifecycle", run.State.LifeCycleState},
			{"Result", run.State.ResultState},
			{"Message", run.State.StateMessage},
			{"Started", formatJobTimestamp(run.StartTime)},
			{"Ended", formatJobTimestamp(run.EndTime)},
		},
		"run_id":          run.RunID,
		"lifecycle_state": run.State.LifeCycleState,
		"result_state":    run.State.ResultState,
	}, fmt.Sprintf("Run %d is %s %s", run.RunID, run.State.LifeCycleState, run.State.ResultState))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}
