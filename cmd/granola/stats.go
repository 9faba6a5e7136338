package main

import (
	"fmt"
	"time"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	idx, err := deps.Index.LoadIndex(deps.Ctx)
	if err != nil {
		return fail(deps, err)
	}
	stats := idx.Stats(deps.location())

	if deps.JSON {
		return writeJSON(deps.Stdout, stats)
	}

	fmt.Fprintf(deps.Stdout, "Meetings:        %d\n", stats.Total)
	fmt.Fprintf(deps.Stdout, "With transcript: %d\n", stats.WithTranscript)
	fmt.Fprintf(deps.Stdout, "With notes:      %d\n", stats.WithNotes)
	if stats.Undated > 0 {
		fmt.Fprintf(deps.Stdout, "Undated:         %d\n", stats.Undated)
	}
	if !stats.GeneratedAt.IsZero() {
		fmt.Fprintf(deps.Stdout, "Indexed:         %s\n", stats.GeneratedAt.In(deps.location()).Format(time.DateTime))
	}
	if len(stats.Months) > 0 {
		fmt.Fprintln(deps.Stdout, "\nBy month:")
		for _, mc := range stats.Months {
			fmt.Fprintf(deps.Stdout, "  %s  %d\n", mc.Month, mc.Count)
		}
	}
	return nil
}
