package granola

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultListLimit is the number of meetings listed when no limit is given.
const DefaultListLimit = 10

// MeetingFilter selects meetings from an index. All set fields must match.
// Date predicates are evaluated against the local meeting date.
type MeetingFilter struct {
	Date      string // YYYY-MM-DD
	Month     string // YYYY-MM
	Since     string // YYYY-MM-DD, inclusive
	Until     string // YYYY-MM-DD, inclusive
	Last      string // trailing window such as "7d"
	Today     bool
	Yesterday bool

	// Attendee matches any attendee whose name or email contains it.
	Attendee string

	// Title matches titles containing every whitespace separated token.
	Title string

	// Query matches titles or attendees containing it.
	Query string

	// Now is the reference time for relative predicates. Zero means now.
	Now time.Time

	// Location is the zone used for meetings without a local date.
	// Nil means the local zone.
	Location *time.Location
}

type predicate func(m *Meeting) bool

// compile validates the filter and returns its predicates.
func (f MeetingFilter) compile() ([]predicate, error) {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	var preds []predicate

	day := func(match func(day string, t time.Time) bool) predicate {
		return func(m *Meeting) bool {
			t, ok := localDate(m, loc)
			return ok && match(t.Format(time.DateOnly), t)
		}
	}

	if f.Date != "" {
		if err := validateLayout("date", f.Date, time.DateOnly); err != nil {
			return nil, err
		}
		preds = append(preds, day(func(d string, _ time.Time) bool { return d == f.Date }))
	}
	if f.Month != "" {
		if err := validateLayout("month", f.Month, "2006-01"); err != nil {
			return nil, err
		}
		preds = append(preds, day(func(d string, _ time.Time) bool { return strings.HasPrefix(d, f.Month+"-") }))
	}
	if f.Since != "" {
		if err := validateLayout("since", f.Since, time.DateOnly); err != nil {
			return nil, err
		}
		preds = append(preds, day(func(d string, _ time.Time) bool { return d >= f.Since }))
	}
	if f.Until != "" {
		if err := validateLayout("until", f.Until, time.DateOnly); err != nil {
			return nil, err
		}
		preds = append(preds, day(func(d string, _ time.Time) bool { return d <= f.Until }))
	}
	if f.Last != "" {
		days, err := ParseLastDays(f.Last)
		if err != nil {
			return nil, err
		}
		cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
		preds = append(preds, day(func(_ string, t time.Time) bool {
			return !t.Before(cutoff) && !t.After(now)
		}))
	}
	if f.Today {
		today := now.In(loc).Format(time.DateOnly)
		preds = append(preds, day(func(d string, _ time.Time) bool { return d == today }))
	}
	if f.Yesterday {
		yesterday := now.In(loc).AddDate(0, 0, -1).Format(time.DateOnly)
		preds = append(preds, day(func(d string, _ time.Time) bool { return d == yesterday }))
	}

	if q := strings.ToLower(strings.TrimSpace(f.Attendee)); q != "" {
		preds = append(preds, func(m *Meeting) bool { return attendeeContains(m, q) })
	}
	if tokens := strings.Fields(strings.ToLower(f.Title)); len(tokens) > 0 {
		preds = append(preds, func(m *Meeting) bool {
			title := strings.ToLower(m.Title)
			for _, tok := range tokens {
				if !strings.Contains(title, tok) {
					return false
				}
			}
			return true
		})
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		preds = append(preds, func(m *Meeting) bool {
			return strings.Contains(strings.ToLower(m.Title), q) || attendeeContains(m, q)
		})
	}

	return preds, nil
}

// Validate returns an error if any filter value is malformed.
func (f MeetingFilter) Validate() error {
	_, err := f.compile()
	return err
}

func validateLayout(name, value, layout string) error {
	if _, err := time.Parse(layout, value); err != nil {
		return Errorf(EINVALID, "invalid %s %q: expected %s", name, value, layout)
	}
	return nil
}

func attendeeContains(m *Meeting, q string) bool {
	for _, a := range m.Attendees {
		if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Email), q) {
			return true
		}
	}
	return false
}

// localDate returns the meeting date in its local zone, falling back to
// the UTC date rendered in loc.
func localDate(m *Meeting, loc *time.Location) (time.Time, bool) {
	if m.DateLocal != nil {
		return *m.DateLocal, true
	}
	if m.DateUTC != nil {
		return m.DateUTC.In(loc), true
	}
	return time.Time{}, false
}

// ParseLastDays parses a trailing window such as "7d" or "7".
func ParseLastDays(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "d"))
	if err != nil || n <= 0 {
		return 0, Errorf(EINVALID, "invalid window %q: expected a number of days such as 7d", s)
	}
	return n, nil
}

// List returns the meetings matching f in index order, truncated to limit.
// A limit of 0 means unlimited.
func (idx *Index) List(f MeetingFilter, limit int) ([]*Meeting, error) {
	preds, err := f.compile()
	if err != nil {
		return nil, err
	}

	out := []*Meeting{}
	for _, m := range idx.Meetings {
		if matchAll(preds, m) {
			out = append(out, m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func matchAll(preds []predicate, m *Meeting) bool {
	for _, p := range preds {
		if !p(m) {
			return false
		}
	}
	return true
}

// maxCandidates is the number of candidates named in an ambiguity error.
const maxCandidates = 5

// Resolve finds the meeting an identifier refers to. It tries, in order,
// an exact id, an id prefix and a case-insensitive title substring; the
// first strategy with any hit decides the outcome.
func (idx *Index) Resolve(identifier string) (*Meeting, error) {
	s := strings.TrimSpace(identifier)
	if s == "" {
		return nil, Errorf(EINVALID, "meeting identifier required")
	}

	for _, m := range idx.Meetings {
		if m.ID == s {
			return m, nil
		}
	}

	strategies := []func(m *Meeting) bool{
		func(m *Meeting) bool { return strings.HasPrefix(m.ID, s) },
		func(m *Meeting) bool { return strings.Contains(strings.ToLower(m.Title), strings.ToLower(s)) },
	}
	for _, match := range strategies {
		var hits []*Meeting
		for _, m := range idx.Meetings {
			if match(m) {
				hits = append(hits, m)
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return hits[0], nil
		default:
			return nil, ambiguous(s, hits)
		}
	}

	return nil, Errorf(ENOTFOUND, "no meeting matches %q", s)
}

func ambiguous(s string, hits []*Meeting) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%q matches %d meetings:", s, len(hits))
	for i, m := range hits {
		if i == maxCandidates {
			fmt.Fprintf(&b, "\n  ... and %d more", len(hits)-maxCandidates)
			break
		}
		title := m.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "\n  %s  %s", m.ShortID, title)
	}
	return Errorf(EAMBIGUOUS, "%s", b.String())
}
