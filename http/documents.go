package http

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fwojciec/granola"
)

// API paths.
const (
	documentsPath   = "/v2/get-documents"
	transcriptPath  = "/v1/get-document-transcript"
	workspacesPath  = "/v1/get-workspaces"
	folderListsPath = "/v2/get-document-lists"
	folderListsV1   = "/v1/get-document-lists"
)

// ListMeetings returns one page of documents. The cursor is the page
// offset. Documents dated before opts.Since are dropped, and a page whose
// documents are all older than opts.Since ends the listing.
func (c *Client) ListMeetings(ctx context.Context, opts granola.ListOptions) (*granola.MeetingPage, error) {
	offset := 0
	if opts.Cursor != "" {
		n, err := strconv.Atoi(opts.Cursor)
		if err != nil || n < 0 {
			return nil, granola.Errorf(granola.EINVALID, "invalid page cursor %q", opts.Cursor)
		}
		offset = n
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = c.pageSize
	}

	req := map[string]any{
		"limit":                     limit,
		"offset":                    offset,
		"include_last_viewed_panel": true,
	}
	var resp struct {
		Docs *[]json.RawMessage `json:"docs"`
	}
	if err := c.call(ctx, documentsPath, req, &resp); err != nil {
		return nil, err
	}
	if resp.Docs == nil {
		return nil, fmt.Errorf("%s: response has no docs", documentsPath)
	}
	docs := *resp.Docs

	page := &granola.MeetingPage{Documents: []*granola.Document{}}
	older := 0
	for _, raw := range docs {
		doc, err := granola.ParseDocument(raw)
		if err != nil {
			page.Invalid = append(page.Invalid, err)
			continue
		}
		if opts.Since != nil {
			if d := doc.Date(); d != nil && d.Before(*opts.Since) {
				older++
				continue
			}
		}
		page.Documents = append(page.Documents, doc)
	}

	exhausted := opts.Since != nil && older > 0 && older+len(page.Invalid) == len(docs)
	if len(docs) >= limit && !exhausted {
		page.NextCursor = strconv.Itoa(offset + len(docs))
	}
	return page, nil
}

// FetchTranscript returns the transcript of a document. A missing or empty
// transcript is returned as nil.
func (c *Client) FetchTranscript(ctx context.Context, id string) (*granola.Transcript, error) {
	var raw json.RawMessage
	err := c.call(ctx, transcriptPath, map[string]string{"document_id": id}, &raw)
	if granola.ErrorCode(err) == granola.ENOTFOUND {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return granola.ParseTranscript(raw), nil
}

type workspaceJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListWorkspaces returns the workspaces visible to the user.
func (c *Client) ListWorkspaces(ctx context.Context) ([]*granola.Workspace, error) {
	var raw json.RawMessage
	if err := c.call(ctx, workspacesPath, struct{}{}, &raw); err != nil {
		return nil, err
	}

	var items []workspaceJSON
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapped struct {
			Workspaces []workspaceJSON `json:"workspaces"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", workspacesPath, err)
		}
		items = wrapped.Workspaces
	}

	workspaces := make([]*granola.Workspace, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		workspaces = append(workspaces, &granola.Workspace{ID: item.ID, Name: item.Name})
	}
	return workspaces, nil
}

type folderJSON struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Documents   []json.RawMessage `json:"documents"`
	DocumentIDs []string          `json:"document_ids"`
}

// ListFolders returns the document lists of the user. The v2 endpoint is
// tried first, falling back to v1.
func (c *Client) ListFolders(ctx context.Context) ([]*granola.Folder, error) {
	var raw json.RawMessage
	err := c.call(ctx, folderListsPath, struct{}{}, &raw)
	if err != nil {
		switch granola.ErrorCode(err) {
		case granola.EAUTH, granola.ETRANSIENT:
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := c.call(ctx, folderListsV1, struct{}{}, &raw); err != nil {
			return nil, err
		}
	}

	items, err := decodeFolders(raw)
	if err != nil {
		return nil, err
	}

	folders := make([]*granola.Folder, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		f := &granola.Folder{ID: item.ID, Name: item.Name}
		if f.Name == "" {
			f.Name = item.Title
		}
		f.DocumentIDs = folderDocumentIDs(item)
		folders = append(folders, f)
	}
	return folders, nil
}

func decodeFolders(raw json.RawMessage) ([]folderJSON, error) {
	var items []folderJSON
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Lists         []folderJSON `json:"lists"`
		DocumentLists []folderJSON `json:"document_lists"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode document lists: %w", err)
	}
	if wrapped.Lists != nil {
		return wrapped.Lists, nil
	}
	return wrapped.DocumentLists, nil
}

// folderDocumentIDs accepts documents as plain ids or objects with an id.
func folderDocumentIDs(item folderJSON) []string {
	ids := []string{}
	for _, d := range item.Documents {
		var id string
		if err := json.Unmarshal(d, &id); err == nil {
			if id != "" {
				ids = append(ids, id)
			}
			continue
		}
		var obj struct {
			ID         string `json:"id"`
			DocumentID string `json:"document_id"`
		}
		if err := json.Unmarshal(d, &obj); err != nil {
			continue
		}
		switch {
		case obj.ID != "":
			ids = append(ids, obj.ID)
		case obj.DocumentID != "":
			ids = append(ids, obj.DocumentID)
		}
	}
	for _, id := range item.DocumentIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
