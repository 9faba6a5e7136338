package main

import (
	"fmt"

	"github.com/fwojciec/granola"
	"github.com/fwojciec/granola/syncer"
)

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	progress := func(event syncer.ProgressEvent) {
		switch event.Type {
		case syncer.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  fail %s (%s): %s\n", event.ID, event.Title, granola.ErrorMessage(event.Err))
		case syncer.ProgressWritten:
			deps.logger().Debug("meeting written", "id", event.ID, "title", event.Title, "completed", event.Completed)
		}
	}

	report, err := deps.Syncer.Sync(deps.Ctx, syncer.Options{Full: c.Full}, progress)
	if err != nil {
		if report != nil {
			printReport(deps, report, nil)
		}
		return fail(deps, err)
	}

	var idx *granola.Index
	if !c.NoIndex {
		if idx, err = deps.Indexer.Rebuild(deps.Ctx); err != nil {
			printReport(deps, report, nil)
			return fail(deps, err)
		}
	}
	printReport(deps, report, idx)
	return nil
}

// printReport prints the sync report as one document. idx is the rebuilt
// index, nil when the index was not rebuilt.
func printReport(deps *Dependencies, report *syncer.Report, idx *granola.Index) {
	if deps.JSON {
		failures := make([]map[string]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			failures = append(failures, map[string]string{
				"id":    f.ID,
				"title": f.Title,
				"error": granola.ErrorMessage(f.Err),
			})
		}
		out := map[string]any{
			"fetched":     report.Fetched,
			"written":     report.Written,
			"skipped":     report.Skipped,
			"in_progress": report.InProgress,
			"failed":      report.Failed,
			"invalid":     report.Invalid,
			"failures":    failures,
			"cursor":      report.Cursor,
		}
		if idx != nil {
			out["indexed"] = len(idx.Meetings)
		}
		_ = writeJSON(deps.Stdout, out)
		return
	}

	fmt.Fprintf(deps.Stdout, "Synced %d meetings: %d written, %d up to date, %d in progress, %d failed\n",
		report.Fetched, report.Written, report.Skipped, report.InProgress, report.Failed)
	if report.Invalid > 0 {
		fmt.Fprintf(deps.Stdout, "Ignored %d invalid documents\n", report.Invalid)
	}
	if idx != nil {
		fmt.Fprintf(deps.Stdout, "Indexed %d meetings\n", len(idx.Meetings))
	}
}

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	return rebuildIndex(deps)
}

func rebuildIndex(deps *Dependencies) error {
	idx, err := deps.Indexer.Rebuild(deps.Ctx)
	if err != nil {
		return fail(deps, err)
	}
	if deps.JSON {
		return writeJSON(deps.Stdout, map[string]any{
			"meetings":     len(idx.Meetings),
			"generated_at": idx.GeneratedAt,
		})
	}
	fmt.Fprintf(deps.Stdout, "Indexed %d meetings\n", len(idx.Meetings))
	return nil
}
