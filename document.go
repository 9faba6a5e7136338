package granola

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Document is a normalized remote meeting document. Unknown, missing or
// mistyped fields degrade to zero values; only a missing id is an error.
type Document struct {
	ID              string
	Title           string
	CreatedAt       string
	UpdatedAt       string
	WorkspaceID     string
	MeetingEndCount int
	NotesMarkdown   string
	Attendees       []Attendee
	CalendarStart   *time.Time
	CalendarEnd     *time.Time
	DurationMin     int
	Panel           *Panel

	// Raw is the payload as returned by the remote service.
	Raw json.RawMessage
}

// Panel is the last viewed notes panel of a document.
type Panel struct {
	Content json.RawMessage // ProseMirror document, nil when absent
	HTML    string
}

// Date returns the best start time known from the document alone.
func (d *Document) Date() *time.Time {
	if d.CalendarStart != nil {
		t := d.CalendarStart.UTC()
		return &t
	}
	for _, s := range []string{d.CreatedAt, d.UpdatedAt} {
		if t, ok := ParseTime(s); ok {
			return &t
		}
	}
	return nil
}

// InProgress reports whether the meeting has not ended yet.
func (d *Document) InProgress() bool {
	return d.MeetingEndCount == 0
}

// ParseDocument normalizes a raw document payload.
func ParseDocument(raw []byte) (*Document, error) {
	o := decodeObject(raw)
	if o == nil {
		return nil, Errorf(EINVALID, "document is not a JSON object")
	}

	doc := &Document{
		ID:              o.str("id"),
		Title:           o.str("title"),
		CreatedAt:       o.str("created_at"),
		UpdatedAt:       o.str("updated_at"),
		WorkspaceID:     o.str("workspace_id"),
		MeetingEndCount: o.integer("meeting_end_count"),
		NotesMarkdown:   o.str("notes_markdown"),
		Raw:             append(json.RawMessage(nil), raw...),
	}
	if doc.ID == "" {
		return nil, Errorf(EINVALID, "document has no id")
	}

	event := o.obj("google_calendar_event")
	if t, ok := ParseTime(event.obj("start").str("dateTime")); ok {
		doc.CalendarStart = &t
	}
	if t, ok := ParseTime(event.obj("end").str("dateTime")); ok {
		doc.CalendarEnd = &t
	}
	doc.DurationMin = parseDuration(doc.CalendarStart, doc.CalendarEnd, event)
	doc.Attendees = parseAttendees(o.obj("people"), event)

	if panel := o.obj("last_viewed_panel"); panel != nil {
		p := &Panel{HTML: panel.str("original_content")}
		if content := panel.obj("content"); content.str("type") == "doc" {
			p.Content = panel["content"]
		}
		if p.Content != nil || p.HTML != "" {
			doc.Panel = p
		}
	}

	return doc, nil
}

func parseAttendees(people, event object) []Attendee {
	var attendees []Attendee
	for _, raw := range people.list("attendees") {
		a := decodeObject(raw)
		name := a.str("name")
		if name == "" {
			name = a.obj("details").obj("person").obj("name").str("fullName")
		}
		if email := a.str("email"); name != "" || email != "" {
			attendees = append(attendees, Attendee{Name: name, Email: email})
		}
	}
	if len(attendees) > 0 {
		return attendees
	}

	for _, raw := range event.list("attendees") {
		a := decodeObject(raw)
		name, email := a.str("displayName"), a.str("email")
		if name != "" || email != "" {
			attendees = append(attendees, Attendee{Name: name, Email: email})
		}
	}
	return attendees
}

func parseDuration(start, end *time.Time, event object) int {
	if start != nil && end != nil {
		if d := int(end.Sub(*start).Minutes()); d > 0 {
			return d
		}
	}

	ext := event.obj("extendedProperties")
	for _, scope := range []string{"shared", "private"} {
		props := ext.obj(scope)
		for _, key := range []string{"meetingParams", "cron.zoomMeeting"} {
			params := props.obj(key)
			if params == nil {
				// Some clients store the parameters as a JSON string.
				params = decodeObject([]byte(props.str(key)))
			}
			if d, ok := params.number("duration"); ok {
				return int(d)
			}
		}
	}
	return 0
}

// Utterance is one transcript segment.
type Utterance struct {
	Source         string `json:"source"`
	Text           string `json:"text"`
	StartTimestamp string `json:"start_timestamp,omitempty"`
	EndTimestamp   string `json:"end_timestamp,omitempty"`
}

// Transcript holds the utterances of a meeting and the raw payload they
// were parsed from.
type Transcript struct {
	Utterances []Utterance
	Raw        json.RawMessage
}

// Sources returns the distinct utterance sources, sorted.
func (t *Transcript) Sources() []string {
	seen := make(map[string]bool)
	var sources []string
	for _, u := range t.Utterances {
		s := u.Source
		if s == "" {
			s = "unknown"
		}
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}
	sort.Strings(sources)
	return sources
}

// ParseTranscript normalizes a raw transcript payload, which is a JSON
// array of utterances. Anything else yields a nil transcript.
func ParseTranscript(raw []byte) *Transcript {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil
	}

	t := &Transcript{Raw: append(json.RawMessage(nil), raw...)}
	for _, item := range items {
		o := decodeObject(item)
		if o == nil {
			continue
		}
		t.Utterances = append(t.Utterances, Utterance{
			Source:         o.str("source"),
			Text:           o.str("text"),
			StartTimestamp: o.str("start_timestamp"),
			EndTimestamp:   o.str("end_timestamp"),
		})
	}
	if len(t.Utterances) == 0 {
		return nil
	}
	return t
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTime parses the timestamp formats used by the remote service.
// Timestamps without a zone are taken as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// object is a leniently decoded JSON object.
type object map[string]json.RawMessage

func decodeObject(raw []byte) object {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil
	}
	return o
}

func (o object) str(key string) string {
	var s string
	if err := json.Unmarshal(o[key], &s); err != nil {
		return ""
	}
	return s
}

func (o object) obj(key string) object {
	return decodeObject(o[key])
}

func (o object) list(key string) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(o[key], &items); err != nil {
		return nil
	}
	return items
}

func (o object) number(key string) (float64, bool) {
	var n *float64
	if err := json.Unmarshal(o[key], &n); err != nil || n == nil {
		return 0, false
	}
	return *n, true
}

func (o object) integer(key string) int {
	n, _ := o.number(key)
	return int(n)
}
