package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/granola"
	"github.com/fwojciec/granola/syncer"
)

// Syncer runs one sync of remote meetings into the local store.
type Syncer interface {
	Sync(ctx context.Context, opts syncer.Options, progress syncer.ProgressFunc) (*syncer.Report, error)
}

// Indexer rebuilds the local index.
type Indexer interface {
	Rebuild(ctx context.Context) (*granola.Index, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Location *time.Location
	Now      func() time.Time
	JSON     bool

	Meetings        granola.MeetingStore
	Index           granola.IndexStore
	Indexer         Indexer
	Syncer          Syncer
	Credentials     granola.CredentialStore
	CredentialsPath string
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Dependencies) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Home     string `help:"Data directory" env:"GRANOLA_HOME" default:"${default_home}" type:"path"`
	Timezone string `help:"Time zone for local dates (IANA name)" env:"GRANOLA_TIMEZONE"`
	JSON     bool   `name:"json" help:"Print structured JSON output"`
	Verbose  bool   `short:"v" help:"Enable debug logging"`

	List       ListCmd       `cmd:"" aliases:"ls" help:"List meetings from the index"`
	Search     SearchCmd     `cmd:"" aliases:"s" help:"Search meetings by title or attendee"`
	Show       ShowCmd       `cmd:"" help:"Show meeting details"`
	Transcript TranscriptCmd `cmd:"" aliases:"t" help:"Print a meeting transcript"`
	Notes      NotesCmd      `cmd:"" aliases:"n" help:"Print meeting notes"`
	Stats      StatsCmd      `cmd:"" help:"Show index statistics"`
	Sync       SyncCmd       `cmd:"" help:"Sync meetings from Granola"`
	Index      IndexCmd      `cmd:"" help:"Rebuild the local index"`
	Init       InitCmd       `cmd:"" help:"Store Granola credentials"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Date      string `short:"d" help:"Meetings on a day (YYYY-MM-DD)"`
	Month     string `short:"m" help:"Meetings in a month (YYYY-MM)"`
	Since     string `help:"Meetings on or after a day (YYYY-MM-DD)"`
	Until     string `help:"Meetings on or before a day (YYYY-MM-DD)"`
	Last      string `help:"Meetings in the trailing window, e.g. 7d"`
	Today     bool   `help:"Meetings today"`
	Yesterday bool   `help:"Meetings yesterday"`
	Attendee  string `short:"a" help:"Attendee name or email contains"`
	Title     string `short:"t" help:"Title contains every word"`
	Limit     int    `short:"n" default:"10" help:"Maximum meetings to list (0 for all)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Text to find in titles or attendees"`
	Limit int    `short:"n" default:"10" help:"Maximum meetings to list (0 for all)"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Meeting id, id prefix or title"`
}

// TranscriptCmd is the "transcript" subcommand.
type TranscriptCmd struct {
	ID     string `arg:"" help:"Meeting id, id prefix or title"`
	Render bool   `help:"Render Markdown for the terminal"`
}

// NotesCmd is the "notes" subcommand.
type NotesCmd struct {
	ID     string `arg:"" help:"Meeting id, id prefix or title"`
	Render bool   `help:"Render Markdown for the terminal"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// SyncCmd is the "sync" subcommand.
type SyncCmd struct {
	Full    bool `help:"Ignore the cursor and rewrite every meeting"`
	NoIndex bool `help:"Skip rebuilding the index after syncing"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct{}

// InitCmd is the "init" subcommand.
type InitCmd struct {
	RefreshToken  string `help:"Granola refresh token" env:"GRANOLA_REFRESH_TOKEN" required:""`
	ClientID      string `help:"Granola client id" env:"GRANOLA_CLIENT_ID" required:""`
	ClientVersion string `help:"Client version reported to the API"`
}
