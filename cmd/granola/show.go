package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fwojciec/granola"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	m, err := resolve(deps, c.ID)
	if err != nil {
		return err
	}

	if deps.JSON {
		return writeJSON(deps.Stdout, m)
	}

	fmt.Fprintf(deps.Stdout, "%s\n\n", displayTitle(m))
	fmt.Fprintf(deps.Stdout, "ID:        %s\n", m.ID)
	fmt.Fprintf(deps.Stdout, "Date:      %s\n", formatDate(m))
	fmt.Fprintf(deps.Stdout, "Duration:  %s\n", formatDuration(m.DurationMin))
	if len(m.Attendees) > 0 {
		fmt.Fprintln(deps.Stdout, "Attendees:")
		for _, a := range m.Attendees {
			if a.Email != "" && a.Name != "" {
				fmt.Fprintf(deps.Stdout, "  %s <%s>\n", a.Name, a.Email)
			} else {
				fmt.Fprintf(deps.Stdout, "  %s\n", a.DisplayName())
			}
		}
	}
	fmt.Fprintf(deps.Stdout, "Folder:    %s\n", m.Path)
	if m.HasTranscript {
		fmt.Fprintf(deps.Stdout, "Transcript: %s\n", m.TranscriptPath)
	}
	if m.HasNotes {
		fmt.Fprintf(deps.Stdout, "Notes:     %s\n", m.NotesPath)
	}
	return nil
}

// Run executes the transcript command.
func (c *TranscriptCmd) Run(deps *Dependencies) error {
	m, err := resolve(deps, c.ID)
	if err != nil {
		return err
	}
	body, err := deps.Meetings.ReadTranscript(deps.Ctx, m.ID)
	if err != nil {
		return fail(deps, err)
	}
	return printMarkdown(deps, body, c.Render)
}

// Run executes the notes command.
func (c *NotesCmd) Run(deps *Dependencies) error {
	m, err := resolve(deps, c.ID)
	if err != nil {
		return err
	}
	body, err := deps.Meetings.ReadNotes(deps.Ctx, m.ID)
	if err != nil {
		return fail(deps, err)
	}
	return printMarkdown(deps, body, c.Render)
}

// resolve loads the index and finds the meeting identifier refers to.
// Errors are printed before being returned.
func resolve(deps *Dependencies, identifier string) (*granola.Meeting, error) {
	idx, err := deps.Index.LoadIndex(deps.Ctx)
	if err != nil {
		return nil, fail(deps, err)
	}
	m, err := idx.Resolve(identifier)
	if err != nil {
		return nil, fail(deps, err)
	}
	return m, nil
}

func printMarkdown(deps *Dependencies, md string, render bool) error {
	if render {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return fail(deps, err)
		}
		out, err := renderer.Render(md)
		if err != nil {
			return fail(deps, err)
		}
		md = out
	}
	if !strings.HasSuffix(md, "\n") {
		md += "\n"
	}
	_, err := fmt.Fprint(deps.Stdout, md)
	return err
}
