package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
	"unicode"
)

// TimestampLayout is the fixed-width ISO-8601 layout of history keys.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// QuestionResult is the recorded outcome of one question.
type QuestionResult struct {
	QuestionID string          `json:"questionId" validate:"required"`
	UserAnswer json.RawMessage `json:"userAnswer,omitempty"`
	IsCorrect  bool            `json:"isCorrect"`
}

// PartResult is the recorded outcome of one exam part.
type PartResult struct {
	PartID    string           `json:"partId" validate:"required,part_id"`
	Questions []QuestionResult `json:"questions" validate:"dive"`
}

// Prefix returns the section prefix of the part id, e.g. "l1" for "l1-a3".
func (p PartResult) Prefix() string {
	prefix, _, _ := strings.Cut(p.PartID, "-")
	return prefix
}

// PartNumber extracts the part number from the prefix by stripping non-digit characters.
func (p PartResult) PartNumber() (int, bool) {
	n, found := 0, false
	for _, r := range p.Prefix() {
		if unicode.IsDigit(r) {
			n = n*10 + int(r-'0')
			found = true
		}
	}
	return n, found
}

// IsListening reports whether the part belongs to the listening section.
func (p PartResult) IsListening() bool {
	return strings.HasPrefix(strings.ToLower(p.Prefix()), ListeningMarker)
}

// ExamType returns the section the part id encodes.
func (p PartResult) ExamType() ExamType {
	if p.IsListening() {
		return ExamTypeListening
	}
	return ExamTypeReading
}

// PerformanceRecord is one stored exam attempt.
type PerformanceRecord struct {
	ExamType           ExamType     `json:"examType"`
	TotalScore         int          `json:"totalScore"`
	TotalQuestions     int          `json:"totalQuestions"`
	TimeTakenInSeconds *int         `json:"timeTakenInSeconds,omitempty"`
	Parts              []PartResult `json:"parts"`
}

// UserHistory maps timestamp to attempt for a single user.
type UserHistory map[string]PerformanceRecord

// TimestampedRecord pairs a record with its history key.
type TimestampedRecord struct {
	Timestamp string
	Record    PerformanceRecord
}

// Chronological returns the history sorted by timestamp ascending.
func (h UserHistory) Chronological() []TimestampedRecord {
	out := make([]TimestampedRecord, 0, len(h))
	for ts, rec := range h {
		out = append(out, TimestampedRecord{Timestamp: ts, Record: rec})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return TimestampLess(out[i].Timestamp, out[j].Timestamp)
	})
	return out
}

// ParseTimestamp parses a history key. Fractional seconds are optional.
func ParseTimestamp(ts string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", ts, time.Local)
}

// FormatTimestamp renders t as a history key.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// TimestampLess orders history keys chronologically. Keys that do not parse sort
// after every parseable key, lexically among themselves.
func TimestampLess(a, b string) bool {
	ta, errA := ParseTimestamp(a)
	tb, errB := ParseTimestamp(b)
	switch {
	case errA != nil && errB != nil:
		return a < b
	case errA != nil:
		return false
	case errB != nil:
		return true
	case ta.Equal(tb):
		return a < b
	}
	return ta.Before(tb)
}

// PerformanceDocument is the persisted form of all histories: userId -> timestamp -> record.
type PerformanceDocument map[string]UserHistory
