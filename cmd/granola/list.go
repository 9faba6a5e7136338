package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fwojciec/granola"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	return listMeetings(deps, granola.MeetingFilter{
		Date:      c.Date,
		Month:     c.Month,
		Since:     c.Since,
		Until:     c.Until,
		Last:      c.Last,
		Today:     c.Today,
		Yesterday: c.Yesterday,
		Attendee:  c.Attendee,
		Title:     c.Title,
	}, c.Limit)
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	return listMeetings(deps, granola.MeetingFilter{Query: c.Query}, c.Limit)
}

func listMeetings(deps *Dependencies, filter granola.MeetingFilter, limit int) error {
	if limit < 0 {
		return fail(deps, granola.Errorf(granola.EINVALID, "limit must not be negative"))
	}

	idx, err := deps.Index.LoadIndex(deps.Ctx)
	if err != nil {
		return fail(deps, err)
	}

	filter.Now = deps.now()
	filter.Location = deps.Location
	meetings, err := idx.List(filter, limit)
	if err != nil {
		return fail(deps, err)
	}

	if deps.JSON {
		return writeJSON(deps.Stdout, meetings)
	}

	if len(meetings) == 0 {
		fmt.Fprintln(deps.Stdout, "No meetings found.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range meetings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.ShortID, formatDate(m), formatDuration(m.DurationMin), fileFlags(m), displayTitle(m))
	}
	return w.Flush()
}

// formatDate returns the local start time of m.
func formatDate(m *granola.Meeting) string {
	if m.DateLocal == nil {
		return "----------------"
	}
	return m.DateLocal.Format("2006-01-02 15:04")
}

func formatDuration(minutes int) string {
	if minutes <= 0 {
		return "-"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

// fileFlags marks which bodies are cached: T for transcript, N for notes.
func fileFlags(m *granola.Meeting) string {
	flags := []byte("--")
	if m.HasTranscript {
		flags[0] = 'T'
	}
	if m.HasNotes {
		flags[1] = 'N'
	}
	return string(flags)
}

func displayTitle(m *granola.Meeting) string {
	if m.Title == "" {
		return "(untitled)"
	}
	return m.Title
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail prints err for the user and returns it.
func fail(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", granola.ErrorMessage(err))
	return err
}
