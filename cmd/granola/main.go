package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/granola"
	"github.com/fwojciec/granola/auth"
	"github.com/fwojciec/granola/fs"
	"github.com/fwojciec/granola/htmltomarkdown"
	granolahttp "github.com/fwojciec/granola/http"
	"github.com/fwojciec/granola/index"
	"github.com/fwojciec/granola/prosemirror"
	granolaslog "github.com/fwojciec/granola/slog"
	"github.com/fwojciec/granola/sqlite"
	"github.com/fwojciec/granola/syncer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// Paths inside the data directory.
const (
	transcriptsDir  = "transcripts"
	indexPath       = "index/index.json"
	credentialsFile = "config.json"
	stateFile       = "state.db"
	syncLogFile     = "sync.log"
)

// Main represents the program.
type Main struct {
	// APIURL and AuthURL override the remote endpoints when set.
	APIURL  string
	AuthURL string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// SQLite database holding the sync state. Opened for sync only.
	DB *sqlite.DB

	logFile *os.File
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Now: time.Now}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.logFile != nil {
		_ = m.logFile.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Now:    m.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("granola"),
		kong.Description("Local cache and index for Granola meetings."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Vars{"default_home": defaultHome()},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'granola --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}
	command := strings.Fields(kongCtx.Command())[0]

	loc := time.Local
	if cli.Timezone != "" {
		if loc, err = time.LoadLocation(cli.Timezone); err != nil {
			return fail(deps, granola.Errorf(granola.EINVALID, "unknown time zone %q", cli.Timezone))
		}
	}
	deps.Location = loc
	deps.JSON = cli.JSON

	logOut := stderr
	if command == "sync" {
		if err := os.MkdirAll(cli.Home, 0700); err != nil {
			return fail(deps, err)
		}
		f, err := os.OpenFile(filepath.Join(cli.Home, syncLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fail(deps, fmt.Errorf("open sync log: %w", err))
		}
		m.logFile = f
		logOut = io.MultiWriter(stderr, f)
	}
	defer m.Close()

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	} else if command == "sync" {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	store := fs.NewMeetingStore(filepath.Join(cli.Home, transcriptsDir))
	indexFile := fs.NewIndexFile(filepath.Join(cli.Home, filepath.FromSlash(indexPath)))
	credentials := fs.NewCredentialStore(filepath.Join(cli.Home, credentialsFile))

	deps.Meetings = store
	deps.Index = indexFile
	deps.Credentials = credentials
	deps.CredentialsPath = credentials.Path()
	deps.Indexer = &index.Builder{
		Store:    store,
		Index:    indexFile,
		Location: loc,
		Logger:   logger,
		Now:      m.Now,
	}

	if command == "sync" {
		m.DB = sqlite.NewDB(filepath.Join(cli.Home, stateFile))
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set GRANOLA_HOME to use a different data directory\n")
			return fail(deps, fmt.Errorf("failed to open sync state: %w", err))
		}

		exchanger := granolahttp.NewTokenExchanger()
		if m.AuthURL != "" {
			exchanger.URL = m.AuthURL
		}
		tokens := auth.NewManager(credentials, granolaslog.NewLoggingTokenExchanger(exchanger, logger))

		opts := []granolahttp.Option{granolahttp.WithClientVersion(clientVersion(ctx, credentials))}
		if m.APIURL != "" {
			opts = append(opts, granolahttp.WithBaseURL(m.APIURL))
		}
		client := granolahttp.NewClient(tokens, opts...)

		deps.Syncer = &syncer.Engine{
			API:    granolaslog.NewLoggingAPI(client, logger),
			Store:  store,
			State:  sqlite.NewSyncStateService(m.DB),
			Notes:  prosemirror.NewRenderer(htmltomarkdown.NewConverter()),
			Logger: logger,
			Now:    m.Now,
		}
	}

	return kongCtx.Run(deps)
}

// clientVersion returns the configured client version, if any.
func clientVersion(ctx context.Context, store granola.CredentialStore) string {
	creds, err := store.LoadCredentials(ctx)
	if err != nil {
		return ""
	}
	return creds.ClientVersion
}

// defaultHome resolves the data directory: granola_home from the XDG
// config file, else ~/.granola.
func defaultHome() string {
	if path, err := xdg.SearchConfigFile("granola/config.json"); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			var cfg struct {
				Home string `json:"granola_home"`
			}
			if json.Unmarshal(data, &cfg) == nil && cfg.Home != "" {
				return expandHome(cfg.Home)
			}
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".granola"
	}
	return filepath.Join(home, ".granola")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
