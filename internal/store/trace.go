package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"
)

// TraceEntry is one bus event observed during a scripted run.
type TraceEntry struct {
	At     time.Duration `json:"at"`
	Topic  string        `json:"topic"`
	Detail string        `json:"detail,omitempty"`
}

type TraceExport struct {
	Scenario string       `json:"scenario"`
	Seed     int64        `json:"seed"`
	Steps    int          `json:"steps"`
	Duration string       `json:"duration"`
	Final    Snapshot     `json:"final"`
	Entries  []TraceEntry `json:"entries"`
}

func WriteJSON(w io.Writer, data TraceExport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes one row per entry with the offset in milliseconds.
func WriteCSV(w io.Writer, entries []TraceEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ms", "topic", "detail"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatFloat(float64(e.At)/float64(time.Millisecond), 'f', 1, 64),
			e.Topic,
			e.Detail,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
