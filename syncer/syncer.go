// Package syncer mirrors remote meetings into the local meeting store.
//
// A sync lists remote documents page by page, newest first, and writes one
// folder per finished meeting. Incremental runs start from the persisted
// cursor and skip documents whose content hash has not changed. The cursor
// only advances to dates whose folders were durably written, and never past
// a meeting that failed or is still in progress.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/granola"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is the number of meetings processed in parallel.
	DefaultConcurrency = 4

	// DefaultInProgressWindow bounds how old an in-progress meeting may be
	// and still hold back the cursor. Older ones are assumed abandoned.
	DefaultInProgressWindow = 24 * time.Hour
)

// Engine synchronizes remote meetings into a MeetingStore.
type Engine struct {
	API   granola.API
	Store granola.MeetingStore
	State granola.SyncStateService
	Notes granola.NotesRenderer

	// Logger receives warnings about skipped or degraded records.
	// Nil discards them.
	Logger *slog.Logger

	Concurrency      int
	PageSize         int
	InProgressWindow time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Options configures one sync run.
type Options struct {
	// Full ignores the cursor and stored document state and rewrites every
	// finished meeting. The cursor is replaced only when the run completes.
	Full bool
}

// Report summarizes a sync run.
type Report struct {
	Fetched    int
	Written    int
	Skipped    int
	InProgress int
	Failed     int
	Invalid    int
	Failures   []Failure

	// Cursor is the cursor after the run. Nil when none has been set.
	Cursor *time.Time
}

// Failure records one meeting that could not be synced.
type Failure struct {
	ID    string
	Title string
	Err   error
}

// ProgressEvent reports the outcome of one meeting.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	ID        string
	Title     string
	Err       error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressWritten ProgressType = iota
	ProgressSkipped
	ProgressInProgress
	ProgressFailed
)

// ProgressFunc is a callback for reporting sync progress.
type ProgressFunc func(event ProgressEvent)

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeSkipped
	outcomeInProgress
	outcomeFailed
)

// meetingResult holds the outcome of processing a single document.
type meetingResult struct {
	doc     *granola.Document
	outcome outcome
	err     error
}

// remoteContext holds best-effort workspace and folder lookups.
type remoteContext struct {
	workspaces map[string]string
	folders    map[string][]granola.FolderRef
}

// Sync runs one sync. Errors from individual meetings are collected in the
// report. An authentication or transient API failure aborts the run and is
// returned together with the partial report; the cursor is left unchanged.
func (e *Engine) Sync(ctx context.Context, opts Options, progress ProgressFunc) (*Report, error) {
	report := &Report{}

	cursor, err := e.State.FindCursor(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}
	report.Cursor = cursor.Since

	// A full run lists everything but keeps the stored cursor until it
	// completes.
	since := cursor.Since
	if opts.Full {
		since = nil
	}

	remote, err := e.loadRemoteContext(ctx)
	if err != nil {
		return report, err
	}

	var done []*granola.Document
	var pending []*granola.Document
	seen := make(map[string]bool)
	pageCursor := ""

	for {
		page, err := e.API.ListMeetings(ctx, granola.ListOptions{
			Since:  since,
			Cursor: pageCursor,
			Limit:  e.PageSize,
		})
		if err != nil {
			return report, err
		}

		for _, invalid := range page.Invalid {
			report.Invalid++
			e.logger().Warn("skipping invalid document", "err", invalid)
		}

		var docs []*granola.Document
		for _, doc := range page.Documents {
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			docs = append(docs, doc)
		}
		report.Fetched += len(docs)

		results, err := e.processPage(ctx, docs, opts.Full, remote)
		for _, r := range results {
			switch r.outcome {
			case outcomeWritten:
				report.Written++
				done = append(done, r.doc)
			case outcomeSkipped:
				report.Skipped++
				done = append(done, r.doc)
			case outcomeInProgress:
				report.InProgress++
				if e.withinWindow(r.doc) {
					pending = append(pending, r.doc)
				}
			case outcomeFailed:
				report.Failed++
				report.Failures = append(report.Failures, Failure{ID: r.doc.ID, Title: r.doc.Title, Err: r.err})
				pending = append(pending, r.doc)
			}
			if progress != nil {
				progress(e.progressEvent(r, report))
			}
		}
		if err != nil {
			return report, err
		}

		if page.NextCursor == "" || page.NextCursor == pageCursor {
			break
		}
		pageCursor = page.NextCursor
	}

	next := nextCursor(since, done, pending)
	switch {
	case next == nil && opts.Full:
		if err := e.State.ResetCursor(ctx); err != nil {
			return report, fmt.Errorf("reset cursor: %w", err)
		}
		report.Cursor = nil
	case next != nil && (opts.Full || since == nil || next.After(*since)):
		if err := e.State.SetCursor(ctx, *next); err != nil {
			return report, fmt.Errorf("save cursor: %w", err)
		}
		report.Cursor = next
	}

	return report, nil
}

// processPage syncs the documents of one page concurrently and returns the
// results in page order. The returned error is the first run-aborting
// failure.
func (e *Engine) processPage(ctx context.Context, docs []*granola.Document, full bool, remote *remoteContext) ([]meetingResult, error) {
	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]meetingResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			out, err := e.syncMeeting(gctx, doc, full, remote)
			if err != nil && aborts(gctx, err) {
				return err
			}
			if err != nil {
				err = granola.Errorf(granola.EWRITE, "%s: %v", doc.ID, err)
				e.logger().Warn("meeting failed", "id", doc.ID, "title", doc.Title, "err", err)
			}
			results[i] = meetingResult{doc: doc, outcome: out, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Only completed meetings are reported.
		var completed []meetingResult
		for _, r := range results {
			if r.doc != nil {
				completed = append(completed, r)
			}
		}
		return completed, err
	}
	return results, nil
}

// syncMeeting writes one meeting folder unless it can be skipped.
func (e *Engine) syncMeeting(ctx context.Context, doc *granola.Document, full bool, remote *remoteContext) (outcome, error) {
	if doc.InProgress() {
		return outcomeInProgress, nil
	}

	hash := ContentHash(doc.Raw)
	if !full {
		state, err := e.State.FindDocumentState(ctx, doc.ID)
		if err != nil && granola.ErrorCode(err) != granola.ENOTFOUND {
			return outcomeFailed, fmt.Errorf("load document state: %w", err)
		}
		if state != nil && state.ContentHash == hash {
			exists, err := e.Store.Exists(ctx, doc.ID)
			if err != nil {
				return outcomeFailed, err
			}
			if exists {
				return outcomeSkipped, nil
			}
		}
	}

	transcript, err := e.API.FetchTranscript(ctx, doc.ID)
	if err != nil {
		return outcomeFailed, err
	}

	var notes string
	if e.Notes != nil {
		notes, err = e.Notes.RenderNotes(doc)
		if err != nil {
			e.logger().Warn("notes not rendered", "id", doc.ID, "err", err)
			notes = ""
		}
	}

	files := &granola.MeetingFiles{
		ID:         doc.ID,
		Document:   doc.Raw,
		Metadata:   buildMetadata(doc, transcript, remote),
		Transcript: transcript,
		Notes:      notes,
	}
	if err := e.Store.WriteMeeting(ctx, files); err != nil {
		return outcomeFailed, err
	}

	if err := e.State.SaveDocumentState(ctx, &granola.DocumentState{
		ID:              doc.ID,
		ContentHash:     hash,
		RemoteUpdatedAt: doc.UpdatedAt,
	}); err != nil {
		return outcomeFailed, fmt.Errorf("save document state: %w", err)
	}
	return outcomeWritten, nil
}

// loadRemoteContext fetches workspace names and folder membership. Failures
// other than authentication are logged and ignored.
func (e *Engine) loadRemoteContext(ctx context.Context) (*remoteContext, error) {
	remote := &remoteContext{
		workspaces: make(map[string]string),
		folders:    make(map[string][]granola.FolderRef),
	}

	workspaces, err := e.API.ListWorkspaces(ctx)
	if err != nil {
		if granola.ErrorCode(err) == granola.EAUTH || ctx.Err() != nil {
			return nil, err
		}
		e.logger().Warn("workspaces unavailable", "err", err)
	}
	for _, w := range workspaces {
		remote.workspaces[w.ID] = w.Name
	}

	folders, err := e.API.ListFolders(ctx)
	if err != nil {
		if granola.ErrorCode(err) == granola.EAUTH || ctx.Err() != nil {
			return nil, err
		}
		e.logger().Warn("folders unavailable", "err", err)
	}
	for _, f := range folders {
		for _, id := range f.DocumentIDs {
			remote.folders[id] = append(remote.folders[id], granola.FolderRef{ID: f.ID, Name: f.Name})
		}
	}

	return remote, nil
}

func buildMetadata(doc *granola.Document, transcript *granola.Transcript, remote *remoteContext) *granola.Metadata {
	meta := &granola.Metadata{
		DocumentID:      doc.ID,
		Title:           doc.Title,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
		WorkspaceID:     doc.WorkspaceID,
		WorkspaceName:   remote.workspaces[doc.WorkspaceID],
		Folders:         []granola.FolderRef{},
		Sources:         []string{},
		MeetingEndCount: doc.MeetingEndCount,
	}
	if folders := remote.folders[doc.ID]; len(folders) > 0 {
		meta.Folders = append(meta.Folders, folders...)
	}
	if transcript != nil {
		if sources := transcript.Sources(); len(sources) > 0 {
			meta.Sources = sources
		}
		for _, u := range transcript.Utterances {
			if t, ok := granola.ParseTime(u.StartTimestamp); ok {
				meta.MeetingDate = t.Format(time.RFC3339)
				break
			}
		}
	}
	return meta
}

// nextCursor returns the latest date among done documents, capped at the
// earliest date among pending ones. Nil when no done document is dated.
func nextCursor(since *time.Time, done, pending []*granola.Document) *time.Time {
	var latest *time.Time
	for _, doc := range done {
		if d := doc.Date(); d != nil && (latest == nil || d.After(*latest)) {
			latest = d
		}
	}
	if latest == nil {
		return nil
	}
	for _, doc := range pending {
		if d := doc.Date(); d != nil && d.Before(*latest) {
			latest = d
		}
	}
	if since != nil && latest.Before(*since) {
		return since
	}
	return latest
}

// ContentHash returns the hash used to detect unchanged documents.
func ContentHash(raw []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(raw))
}

// aborts reports whether err must stop the whole run.
func aborts(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch granola.ErrorCode(err) {
	case granola.EAUTH, granola.ETRANSIENT:
		return true
	}
	return false
}

func (e *Engine) withinWindow(doc *granola.Document) bool {
	d := doc.Date()
	if d == nil {
		return false
	}
	window := e.InProgressWindow
	if window <= 0 {
		window = DefaultInProgressWindow
	}
	return e.now().Sub(*d) <= window
}

func (e *Engine) progressEvent(r meetingResult, report *Report) ProgressEvent {
	event := ProgressEvent{
		Completed: report.Written + report.Skipped + report.InProgress + report.Failed,
		ID:        r.doc.ID,
		Title:     r.doc.Title,
		Err:       r.err,
	}
	switch r.outcome {
	case outcomeWritten:
		event.Type = ProgressWritten
	case outcomeSkipped:
		event.Type = ProgressSkipped
	case outcomeInProgress:
		event.Type = ProgressInProgress
	case outcomeFailed:
		event.Type = ProgressFailed
	}
	return event
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
