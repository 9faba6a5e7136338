package granola

import (
	"context"
	"sort"
	"time"
)

// IndexSchemaVersion is the version of the persisted index format.
const IndexSchemaVersion = 1

// MinShortIDLength is the shortest short id handed out.
const MinShortIDLength = 7

// Index is the flat metadata snapshot of the local meeting store, ordered
// by date descending.
type Index struct {
	SchemaVersion int        `json:"schema_version"`
	GeneratedAt   time.Time  `json:"generated_at"`
	Root          string     `json:"root"`
	Meetings      []*Meeting `json:"meetings"`
}

// IndexStore persists the index.
type IndexStore interface {
	// LoadIndex returns ENOTFOUND when no index exists and ECORRUPT when
	// it cannot be parsed.
	LoadIndex(ctx context.Context) (*Index, error)

	// SaveIndex replaces the index atomically.
	SaveIndex(ctx context.Context, idx *Index) error
}

// AssignShortIDs sets the short id of every meeting to the shortest prefix
// of its id, at least MinShortIDLength long, that no other id shares.
func AssignShortIDs(meetings []*Meeting) {
	ids := make([]string, len(meetings))
	for i, m := range meetings {
		ids[i] = m.ID
	}
	sort.Strings(ids)

	// The longest prefix an id shares with any other id is the one it
	// shares with a sorted neighbour.
	lengths := make(map[string]int, len(ids))
	for i, id := range ids {
		n := MinShortIDLength
		if i > 0 {
			n = max(n, commonPrefixLen(id, ids[i-1])+1)
		}
		if i < len(ids)-1 {
			n = max(n, commonPrefixLen(id, ids[i+1])+1)
		}
		lengths[id] = min(n, len(id))
	}

	for _, m := range meetings {
		m.ShortID = m.ID[:lengths[m.ID]]
	}
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// SortMeetings orders meetings by date descending with undated meetings
// last. Ties are broken by id.
func SortMeetings(meetings []*Meeting) {
	sort.SliceStable(meetings, func(i, j int) bool {
		a, b := meetings[i], meetings[j]
		switch {
		case a.DateUTC == nil && b.DateUTC == nil:
			return a.ID < b.ID
		case a.DateUTC == nil:
			return false
		case b.DateUTC == nil:
			return true
		case !a.DateUTC.Equal(*b.DateUTC):
			return a.DateUTC.After(*b.DateUTC)
		default:
			return a.ID < b.ID
		}
	})
}

// IndexStats summarizes an index.
type IndexStats struct {
	Total          int          `json:"total"`
	WithTranscript int          `json:"with_transcript"`
	WithNotes      int          `json:"with_notes"`
	Undated        int          `json:"undated"`
	GeneratedAt    time.Time    `json:"generated_at"`
	Months         []MonthCount `json:"months"`
}

// MonthCount is the number of meetings in one local calendar month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// StatsMonths is the number of most recent months reported by Stats.
const StatsMonths = 12

// Stats returns totals and per-month counts for the latest StatsMonths
// months that have meetings. Meetings without a local date are bucketed in
// loc, as MeetingFilter does; nil means the local zone.
func (idx *Index) Stats(loc *time.Location) *IndexStats {
	if loc == nil {
		loc = time.Local
	}
	stats := &IndexStats{
		Total:       len(idx.Meetings),
		GeneratedAt: idx.GeneratedAt,
		Months:      []MonthCount{},
	}

	counts := make(map[string]int)
	for _, m := range idx.Meetings {
		if m.HasTranscript {
			stats.WithTranscript++
		}
		if m.HasNotes {
			stats.WithNotes++
		}
		t, ok := localDate(m, loc)
		if !ok {
			stats.Undated++
			continue
		}
		counts[t.Format("2006-01")]++
	}

	months := make([]string, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	if len(months) > StatsMonths {
		months = months[:StatsMonths]
	}
	for _, month := range months {
		stats.Months = append(stats.Months, MonthCount{Month: month, Count: counts[month]})
	}

	return stats
}
