package nutrition

import "time"

// HistorySize is the number of calculations kept.
const HistorySize = 5

type HistoryEntry struct {
	Date     time.Time `json:"date"`
	Estimate Estimate  `json:"estimate"`
	Profile  Profile   `json:"profile"`
}

// History holds the most recent calculations, newest first, and the number of
// calculations ever recorded.
type History struct {
	Entries []HistoryEntry `json:"entries"`
	Count   int            `json:"count"`
}

// Record prepends an entry and drops anything beyond HistorySize.
func (h *History) Record(at time.Time, p Profile, e Estimate) {
	entries := make([]HistoryEntry, 0, HistorySize)
	entries = append(entries, HistoryEntry{Date: at, Estimate: e, Profile: p})
	for _, old := range h.Entries {
		if len(entries) == HistorySize {
			break
		}
		entries = append(entries, old)
	}
	h.Entries = entries
	h.Count++
}

func (h *History) Reset() {
	h.Entries = nil
	h.Count = 0
}
