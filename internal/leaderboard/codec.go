package leaderboard

import (
	"encoding/json"
	"fmt"
	"time"
)

// Storage keys shared with earlier saved state.
const (
	KeyEntries = "aiLeaderboardEntries"
	KeyTools   = "aiTools"
)

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z"

// entryRecord is the persisted shape of an Entry. ID and Date are pointers so
// records written by older versions, which lacked them, can be detected.
type entryRecord struct {
	ID       *string `json:"id,omitempty"`
	Date     *string `json:"date,omitempty"`
	Category string  `json:"category"`
	Leader   string  `json:"leader"`
	RunnerUp string  `json:"runnerUp"`
	Notes    string  `json:"notes"`
}

// snapshot is the export document: both persisted collections under their storage keys.
type snapshot struct {
	Entries []entryRecord `json:"aiLeaderboardEntries"`
	Tools   []string      `json:"aiTools"`
}

// importDoc is a snapshot whose members may be absent.
type importDoc struct {
	Entries *[]entryRecord `json:"aiLeaderboardEntries"`
	Tools   *[]string      `json:"aiTools"`
}

func formatDate(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func encodeEntries(entries []Entry) ([]byte, error) {
	return json.Marshal(toRecords(entries))
}

func toRecords(entries []Entry) []entryRecord {
	recs := make([]entryRecord, 0, len(entries))
	for _, e := range entries {
		id := e.ID
		date := formatDate(e.Date)
		recs = append(recs, entryRecord{
			ID:       &id,
			Date:     &date,
			Category: e.Category,
			Leader:   e.Leader,
			RunnerUp: e.RunnerUp,
			Notes:    e.Notes,
		})
	}
	return recs
}

func encodeTools(tools []string) ([]byte, error) {
	if tools == nil {
		tools = []string{}
	}
	return json.Marshal(tools)
}

// migration reports what decodeEntries had to fill in.
type migration struct {
	AssignedIDs   int
	AssignedDates int
}

func (m migration) changed() bool { return m.AssignedIDs > 0 || m.AssignedDates > 0 }

// decodeEntries parses persisted entries, giving every record an id and a date.
// A duplicated id is treated like a missing one.
func decodeEntries(data []byte, now time.Time, newID func() string) ([]Entry, migration, error) {
	var recs []entryRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, migration{}, fmt.Errorf("decode %s: %w", KeyEntries, err)
	}
	return fromRecords(recs, now, newID)
}

func fromRecords(recs []entryRecord, now time.Time, newID func() string) ([]Entry, migration, error) {
	var mig migration
	seen := make(map[string]struct{}, len(recs))
	out := make([]Entry, 0, len(recs))
	for i, r := range recs {
		e := Entry{
			Category: r.Category,
			Leader:   r.Leader,
			RunnerUp: r.RunnerUp,
			Notes:    r.Notes,
		}
		if r.ID != nil && *r.ID != "" {
			e.ID = *r.ID
		}
		if _, dup := seen[e.ID]; e.ID == "" || dup {
			e.ID = newID()
			mig.AssignedIDs++
		}
		seen[e.ID] = struct{}{}

		if r.Date == nil || *r.Date == "" {
			e.Date = now
			mig.AssignedDates++
		} else {
			t, err := ParseDate(*r.Date)
			if err != nil {
				return nil, migration{}, fmt.Errorf("decode %s[%d]: %w", KeyEntries, i, err)
			}
			e.Date = t
		}
		out = append(out, e)
	}
	return out, mig, nil
}

func decodeTools(data []byte) ([]string, error) {
	var tools []string
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyTools, err)
	}
	return tools, nil
}
